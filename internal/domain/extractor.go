// Package domain contains story discovery, registry generation and the
// workflows driving them.
package domain

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"storylist.dev/pkg/storylist/internal/adapter"
	m "storylist.dev/pkg/storylist/internal/model"
	"storylist.dev/pkg/storylist/internal/storyname"
)

// Extractor discovers the stories exported by a single module.
type Extractor interface {
	// Extract parses content and returns one record and one lazy-loader
	// declaration per story, in source order. A syntax error is returned as
	// *adapter.ParseError.
	Extract(ctx context.Context, entry m.SourceEntry, content []byte) (m.Extraction, error)
}

// ExtractorOptions configures naming and import paths.
type ExtractorOptions struct {
	// StorySuffix is stripped from file names before deriving the FileID.
	StorySuffix string
	// ImportBase is the working directory relative to the application source
	// root, slash separated. Entries are imported as ImportBase/entry.
	ImportBase string
}

type extractor struct {
	adapter.ScriptFileAdapter
	opts ExtractorOptions
}

// NewExtractor creates a new Extractor instance.
func NewExtractor(parser adapter.ScriptFileAdapter, opts ExtractorOptions) Extractor {
	return &extractor{
		ScriptFileAdapter: parser,
		opts:              opts,
	}
}

func (e *extractor) Extract(ctx context.Context, entry m.SourceEntry, content []byte) (m.Extraction, error) {
	var out m.Extraction

	if e.ScriptFileAdapter == nil {
		return out, fmt.Errorf("missing script file adapter")
	}

	module, err := e.Parse(ctx, entry, content)
	if err != nil {
		return out, err
	}
	defer module.Close()

	fileID := storyname.FileID(entry, e.opts.StorySuffix)
	importPath := ImportPath(e.opts.ImportBase, entry)
	root := module.Root()

	for i := 0; i < int(root.NamedChildCount()); i++ {
		bindingName, ok := storyBinding(module, root.NamedChild(i))
		if !ok {
			continue
		}

		record := newStoryRecord(entry, fileID, bindingName, importPath)
		out.Records = append(out.Records, record)
		out.Loaders = append(out.Loaders, renderLoader(record))
	}

	slog.Debug("extracted stories", "path", string(entry), "file_id", fileID, "stories", len(out.Records))

	return out, nil
}

// storyBinding matches `export const|let|var <identifier> = ...` with exactly
// one declarator. Any other statement shape is not a story.
func storyBinding(module *adapter.ScriptModule, stmt *sitter.Node) (string, bool) {
	if stmt == nil || stmt.Type() != "export_statement" || isDefaultExport(stmt) {
		return "", false
	}

	decl := stmt.ChildByFieldName("declaration")
	if decl == nil {
		return "", false
	}

	switch decl.Type() {
	case "lexical_declaration", "variable_declaration":
	default:
		return "", false
	}

	var declarator *sitter.Node

	for i := 0; i < int(decl.NamedChildCount()); i++ {
		child := decl.NamedChild(i)
		if child.Type() != "variable_declarator" {
			continue
		}

		if declarator != nil {
			return "", false
		}

		declarator = child
	}

	if declarator == nil {
		return "", false
	}

	name := declarator.ChildByFieldName("name")
	if name == nil || name.Type() != "identifier" {
		return "", false
	}

	return module.Text(name), true
}

func isDefaultExport(stmt *sitter.Node) bool {
	for i := 0; i < int(stmt.ChildCount()); i++ {
		if child := stmt.Child(i); !child.IsNamed() && child.Type() == "default" {
			return true
		}
	}

	return false
}

func newStoryRecord(entry m.SourceEntry, fileID, bindingName, importPath string) m.StoryRecord {
	fileKebab := storyname.KebabCase(fileID)
	bindingKebab := storyname.KebabCase(bindingName)

	return m.StoryRecord{
		StoryID:     storyname.StoryID(fileID, bindingName),
		FileID:      fileID,
		BindingName: bindingName,
		Source:      entry,
		EncodedName: storyname.EncodeStoryName(fileKebab, bindingKebab),
		ImportPath:  importPath,
	}
}

// ImportPath joins base and entry into a relative module specifier. Results
// that would read as a bare package name get a "./" prefix.
func ImportPath(base string, entry m.SourceEntry) string {
	p := path.Join(strings.ReplaceAll(base, "\\", "/"), entry.Slash())

	if p == ".." || strings.HasPrefix(p, "../") || strings.HasPrefix(p, "/") {
		return p
	}

	return "./" + p
}

func renderLoader(record m.StoryRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "const %s = lazy(() =>\n", record.EncodedName)
	fmt.Fprintf(&b, "  import(%s).then((module) => {\n", quoteJS(record.ImportPath))
	fmt.Fprintf(&b, "    return { default: module.%s };\n", record.BindingName)
	b.WriteString("  })\n);")

	return b.String()
}
