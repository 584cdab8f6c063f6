package domain

import (
	"fmt"
	"strings"

	m "storylist.dev/pkg/storylist/internal/model"
)

// lazyImport brings the deferred-loading utility into scope.
const lazyImport = `import { lazy } from "react";`

// EmitOptions selects the variant of the generated module.
type EmitOptions struct {
	// HotReload appends the hot-reload acceptance block.
	HotReload bool
}

// Emitter assembles the generated registry module.
type Emitter interface {
	Emit(extraction m.Extraction, opts EmitOptions) string
}

type emitter struct{}

// NewEmitter creates a new Emitter instance.
func NewEmitter() Emitter {
	return &emitter{}
}

// Emit renders the import line, every loader in discovery order and the
// mutable `stories` registry. The output depends only on the input order.
func (e *emitter) Emit(extraction m.Extraction, opts EmitOptions) string {
	var b strings.Builder

	b.WriteString(lazyImport)
	b.WriteString("\n")

	for _, loader := range extraction.Loaders {
		b.WriteString("\n")
		b.WriteString(loader)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderStories(extraction.Records))
	b.WriteString("\n")

	if opts.HotReload {
		b.WriteString("\n")
		b.WriteString(hotReloadBlock)
		b.WriteString("\n")
	}

	return b.String()
}

// renderStories declares `stories` with let so the hot-reload handler can
// reassign it. Duplicate story IDs are emitted as-is; the last key wins.
func renderStories(records []m.StoryRecord) string {
	if len(records) == 0 {
		return "export let stories = {};"
	}

	var b strings.Builder

	b.WriteString("export let stories = {\n")

	for i, record := range records {
		fmt.Fprintf(&b, "  %s: {\n", quoteJS(record.StoryID))
		fmt.Fprintf(&b, "    component: %s\n", record.EncodedName)
		b.WriteString("  }")

		if i < len(records)-1 {
			b.WriteString(",")
		}

		b.WriteString("\n")
	}

	b.WriteString("};")

	return b.String()
}

// quoteJS renders s as a double-quoted ECMAScript string literal.
func quoteJS(s string) string {
	var b strings.Builder

	b.Grow(len(s) + 2)
	b.WriteByte('"')

	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\u2028':
			b.WriteString(`\u2028`)
		case '\u2029':
			b.WriteString(`\u2029`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\x%02x`, r)
				continue
			}

			b.WriteRune(r)
		}
	}

	b.WriteByte('"')

	return b.String()
}
