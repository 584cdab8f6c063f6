// Package model defines the data structures shared by the story extractor,
// the registry emitter and the CLI.
package model

import (
	"path"
	"strings"
)

// Path represents a file system path.
type Path string

// SourceEntry is an input module path relative to the working directory.
type SourceEntry Path

// Slash returns the entry with forward slashes and without a leading "./".
func (e SourceEntry) Slash() string {
	p := strings.ReplaceAll(string(e), "\\", "/")
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}

	return path.Clean(p)
}

// Dialect selects the grammar used to parse a source entry.
type Dialect int

const (
	// DialectUntyped is plain ECMAScript (.js, .mjs, .cjs, .jsx).
	DialectUntyped Dialect = iota
	// DialectTyped is TypeScript (.ts, .mts, .cts, .tsx).
	DialectTyped
)

func (d Dialect) String() string {
	if d == DialectTyped {
		return "typed"
	}

	return "untyped"
}

var typedSuffixes = []string{".ts", ".tsx", ".mts", ".cts"}

var moduleSuffixes = []string{".tsx", ".jsx", ".ts", ".mts", ".cts", ".js", ".mjs", ".cjs"}

// DialectFor picks the dialect for a file name by its suffix.
func DialectFor(name string) Dialect {
	for _, suffix := range typedSuffixes {
		if strings.HasSuffix(name, suffix) {
			return DialectTyped
		}
	}

	return DialectUntyped
}

// HasTemplateVariant reports whether the file uses the UI-template (JSX)
// variant suffix.
func HasTemplateVariant(name string) bool {
	return strings.HasSuffix(name, ".tsx") || strings.HasSuffix(name, ".jsx")
}

// ModuleSuffix returns the recognized module suffix of name, or "" when the
// file is not a module source.
func ModuleSuffix(name string) string {
	for _, suffix := range moduleSuffixes {
		if strings.HasSuffix(name, suffix) {
			return suffix
		}
	}

	return ""
}
