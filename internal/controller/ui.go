// Package controller provides output adapters for displaying discovered
// stories and generation results.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "storylist.dev/pkg/storylist/internal/model"
)

// UI defines the interface for displaying workflow results.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	// DisplayStories shows the discovered stories.
	DisplayStories(ctx context.Context, records []m.StoryRecord) error
	// DisplayModule writes a generated module verbatim.
	DisplayModule(ctx context.Context, module string) error
	// DisplayGenerated reports that a module was written to target.
	DisplayGenerated(ctx context.Context, target m.Path, stories int)
	// DisplayCheck reports whether target is up to date; diff is empty when it is.
	DisplayCheck(ctx context.Context, target m.Path, diff string)
	// DisplayReload reports how a live session would take a regeneration.
	DisplayReload(ctx context.Context, report m.ReloadReport)
	// DisplayError reports a non-fatal error, e.g. a failed regeneration in
	// watch mode.
	DisplayError(ctx context.Context, err error)
}

// NewUI picks the interactive UI for terminals and the simple one otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd)
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}
