package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "storylist.dev/pkg/storylist/internal/model"
)

func TestYAMLManifestStore_SaveAndLoad(t *testing.T) {
	store := NewYAMLManifestStore(NewLocalSourceFSAdapter())
	path := filepath.Join(t.TempDir(), "stories.yaml")

	manifest := Manifest{
		Module: "src/generated-list.js",
		Stories: []m.StoryRecord{
			{
				StoryID:     "widgets-button--default",
				FileID:      "widgets-button",
				BindingName: "Default",
				Source:      "widgets/button.tsx",
				EncodedName: "widgets$button$$default",
				ImportPath:  "../widgets/button.tsx",
			},
		},
	}

	require.NoError(t, store.SaveManifest(m.Path(path), manifest))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "id: widgets-button--default")
	assert.Contains(t, string(raw), "component: widgets$button$$default")

	loaded, err := store.LoadManifest(context.Background(), m.Path(path))
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Version)
	assert.Equal(t, manifest.Module, loaded.Module)
	assert.Equal(t, manifest.Stories, loaded.Stories)
}

func TestYAMLManifestStore_EmptyStories(t *testing.T) {
	store := NewYAMLManifestStore(NewLocalSourceFSAdapter())
	path := filepath.Join(t.TempDir(), "stories.yaml")

	require.NoError(t, store.SaveManifest(m.Path(path), Manifest{}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "stories: []")
}

func TestYAMLManifestStore_LoadRejectsUnknownVersion(t *testing.T) {
	store := NewYAMLManifestStore(NewLocalSourceFSAdapter())
	path := filepath.Join(t.TempDir(), "stories.yaml")
	writeTestFile(t, path, "version: 7\nstories: []\n")

	_, err := store.LoadManifest(context.Background(), m.Path(path))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported manifest version")
}
