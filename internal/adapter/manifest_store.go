package adapter

import (
	"bytes"
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	m "storylist.dev/pkg/storylist/internal/model"
)

const manifestVersion = 1

// Manifest is the YAML document describing a generated registry.
type Manifest struct {
	Version int             `yaml:"version"`
	Module  string          `yaml:"module,omitempty"`
	Stories []m.StoryRecord `yaml:"stories"`
}

// ManifestStore persists story manifests next to the generated module.
type ManifestStore interface {
	SaveManifest(path m.Path, manifest Manifest) error
	LoadManifest(ctx context.Context, path m.Path) (Manifest, error)
}

// YAMLManifestStore stores manifests as YAML through a SourceFSAdapter.
type YAMLManifestStore struct {
	fs SourceFSAdapter
}

// NewYAMLManifestStore constructs a YAMLManifestStore.
func NewYAMLManifestStore(fs SourceFSAdapter) *YAMLManifestStore {
	return &YAMLManifestStore{fs: fs}
}

// SaveManifest encodes manifest and writes it to path.
func (s *YAMLManifestStore) SaveManifest(path m.Path, manifest Manifest) error {
	if manifest.Version == 0 {
		manifest.Version = manifestVersion
	}

	if manifest.Stories == nil {
		manifest.Stories = []m.StoryRecord{}
	}

	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(manifest); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	return s.fs.WriteFile(path, buf.Bytes(), 0o644)
}

// LoadManifest reads and decodes the manifest at path.
func (s *YAMLManifestStore) LoadManifest(ctx context.Context, path m.Path) (Manifest, error) {
	var manifest Manifest

	data, err := s.fs.ReadFile(ctx, path)
	if err != nil {
		return manifest, err
	}

	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return manifest, fmt.Errorf("decode manifest %s: %w", path, err)
	}

	if manifest.Version != manifestVersion {
		return manifest, fmt.Errorf("unsupported manifest version %d", manifest.Version)
	}

	return manifest, nil
}
