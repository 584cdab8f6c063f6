package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	m "storylist.dev/pkg/storylist/internal/model"
)

// ScriptFileAdapter encapsulates dialect handling and parsing of script
// modules so the domain layer only walks a syntax tree.
type ScriptFileAdapter interface {
	// Parse checks src against the dialect selected by the entry suffix and
	// builds its syntax tree. Syntax errors are reported as *ParseError. The
	// caller must Close the returned module.
	Parse(ctx context.Context, entry m.SourceEntry, src []byte) (*ScriptModule, error)
}

// ScriptModule is the concrete syntax tree of one module, kept together with
// the source text its nodes point into.
type ScriptModule struct {
	Entry  m.SourceEntry
	Source []byte

	tree *sitter.Tree
}

// Root returns the `program` node.
func (s *ScriptModule) Root() *sitter.Node {
	return s.tree.RootNode()
}

// Text returns the source text covered by n.
func (s *ScriptModule) Text(n *sitter.Node) string {
	return n.Content(s.Source)
}

// Close releases the tree.
func (s *ScriptModule) Close() {
	if s.tree != nil {
		s.tree.Close()
	}
}

// Diagnostic is a single syntax problem reported by the parser.
type Diagnostic struct {
	Line   int
	Column int
	Text   string
}

func (d Diagnostic) String() string {
	if d.Line == 0 {
		return d.Text
	}

	return fmt.Sprintf("%d:%d: %s", d.Line, d.Column, d.Text)
}

// ParseError reports source text that does not conform to the grammar of the
// dialect chosen for the entry.
type ParseError struct {
	Path        m.SourceEntry
	Dialect     m.Dialect
	Diagnostics []Diagnostic

	messages []api.Message
}

func (e *ParseError) Error() string {
	parts := make([]string, 0, len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		parts = append(parts, d.String())
	}

	return fmt.Sprintf("parse %s (%s): %s", e.Path, e.Dialect, strings.Join(parts, "; "))
}

// Report renders the diagnostics with source excerpts when they are
// available, falling back to Error otherwise.
func (e *ParseError) Report() string {
	if len(e.messages) == 0 {
		return e.Error()
	}

	formatted := api.FormatMessages(e.messages, api.FormatMessagesOptions{
		Kind: api.ErrorMessage,
	})

	return strings.Join(formatted, "")
}

// LocalScriptFileAdapter validates modules with esbuild, which gives
// positioned diagnostics with source excerpts, and builds the tree with
// tree-sitter over the original text.
type LocalScriptFileAdapter struct{}

// NewLocalScriptFileAdapter constructs a LocalScriptFileAdapter.
func NewLocalScriptFileAdapter() *LocalScriptFileAdapter {
	return &LocalScriptFileAdapter{}
}

// Parse validates and parses the entry.
func (a *LocalScriptFileAdapter) Parse(ctx context.Context, entry m.SourceEntry, src []byte) (*ScriptModule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := string(entry)
	dialect := m.DialectFor(name)

	result := api.Transform(string(src), api.TransformOptions{
		Loader:     loaderFor(name),
		Format:     api.FormatESModule,
		Target:     api.ESNext,
		Sourcefile: name,
		LogLevel:   api.LogLevelSilent,
	})

	for _, warning := range result.Warnings {
		slog.Debug("parser warning", "path", name, "text", warning.Text)
	}

	if len(result.Errors) > 0 {
		return nil, newParseError(entry, dialect, result.Errors)
	}

	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(languageFor(name))

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	module := &ScriptModule{Entry: entry, Source: src, tree: tree}

	if root := module.Root(); root.HasError() {
		module.Close()

		return nil, &ParseError{Path: entry, Dialect: dialect, Diagnostics: []Diagnostic{syntaxDiagnostic(root)}}
	}

	slog.Debug("parsed module", "path", name, "dialect", dialect.String(), "statements", module.Root().NamedChildCount())

	return module, nil
}

// loaderFor selects the esbuild loader. Untyped modules go through the TSX
// loader as well so they may carry type annotations and JSX.
func loaderFor(name string) api.Loader {
	if m.DialectFor(name) == m.DialectTyped && !m.HasTemplateVariant(name) {
		return api.LoaderTS
	}

	return api.LoaderTSX
}

// languageFor mirrors loaderFor: plain TypeScript keeps `<T>expr` casts, every
// other module uses the TSX grammar.
func languageFor(name string) *sitter.Language {
	if m.DialectFor(name) == m.DialectTyped && !m.HasTemplateVariant(name) {
		return typescript.GetLanguage()
	}

	return tsx.GetLanguage()
}

// syntaxDiagnostic locates the first ERROR or MISSING node below n.
func syntaxDiagnostic(n *sitter.Node) Diagnostic {
	if bad := firstSyntaxError(n); bad != nil {
		point := bad.StartPoint()
		text := "unexpected syntax"

		if bad.IsMissing() {
			text = fmt.Sprintf("missing %s", bad.Type())
		}

		return Diagnostic{Line: int(point.Row) + 1, Column: int(point.Column), Text: text}
	}

	return Diagnostic{Text: "unexpected syntax"}
}

func firstSyntaxError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}

		if bad := firstSyntaxError(child); bad != nil {
			return bad
		}
	}

	return nil
}

func newParseError(entry m.SourceEntry, dialect m.Dialect, messages []api.Message) *ParseError {
	diagnostics := make([]Diagnostic, 0, len(messages))

	for _, msg := range messages {
		d := Diagnostic{Text: msg.Text}
		if msg.Location != nil {
			d.Line = msg.Location.Line
			d.Column = msg.Location.Column
		}

		diagnostics = append(diagnostics, d)
	}

	return &ParseError{
		Path:        entry,
		Dialect:     dialect,
		Diagnostics: diagnostics,
		messages:    messages,
	}
}
