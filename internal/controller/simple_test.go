package controller

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "storylist.dev/pkg/storylist/internal/model"
)

func testRecords() []m.StoryRecord {
	return []m.StoryRecord{
		{StoryID: "widgets-button--default", FileID: "widgets-button", BindingName: "Default", Source: "widgets/button.tsx"},
		{StoryID: "widgets-button--disabled", FileID: "widgets-button", BindingName: "Disabled", Source: "widgets/button.tsx"},
		{StoryID: "widgets-card--basic", FileID: "widgets-card", BindingName: "Basic", Source: "widgets/card.jsx"},
	}
}

func newTestCommand() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer

	cmd := &cobra.Command{}
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	return cmd, &stdout, &stderr
}

func TestSimpleUI_DisplayStories(t *testing.T) {
	tests := []struct {
		name         string
		records      []m.StoryRecord
		wantContains []string
	}{
		{
			name:         "no stories",
			records:      nil,
			wantContains: []string{"0 STORIES", "TOTAL FILES 0"},
		},
		{
			name:    "stories across files",
			records: testRecords(),
			wantContains: []string{
				"widgets/button.tsx", "Disabled", "widgets-card--basic",
				"3 STORIES", "TOTAL FILES 2",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, stdout, _ := newTestCommand()

			err := NewSimpleUI(cmd).DisplayStories(context.Background(), tt.records)
			require.NoError(t, err)

			for _, want := range tt.wantContains {
				assert.Contains(t, stdout.String(), want)
			}
		})
	}
}

func TestSimpleUI_DisplayModule_IsVerbatim(t *testing.T) {
	cmd, stdout, stderr := newTestCommand()

	module := "import { lazy } from \"react\";\n\nexport let stories = {};\n"

	require.NoError(t, NewSimpleUI(cmd).DisplayModule(context.Background(), module))
	assert.Equal(t, module, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestSimpleUI_StatusGoesToStderr(t *testing.T) {
	cmd, stdout, stderr := newTestCommand()
	ui := NewSimpleUI(cmd)
	ctx := context.Background()

	ui.DisplayGenerated(ctx, "src/generated-list.js", 3)
	ui.DisplayReload(ctx, m.ReloadReport{
		Decision: m.ReloadInvalidate,
		Stories:  4,
		Added:    []m.StoryRecord{{StoryID: "button--new", Source: "widgets/button.tsx"}},
		Removed:  []string{"button--old"},
	})
	ui.DisplayError(ctx, errors.New("boom"))
	ui.DisplayError(ctx, nil)

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Generated src/generated-list.js with 3 stories")
	assert.Contains(t, stderr.String(), "Regenerated 4 stories (full reload)")
	assert.Contains(t, stderr.String(), "  + button--new (widgets/button.tsx)")
	assert.Contains(t, stderr.String(), "  - button--old")
	assert.Contains(t, stderr.String(), "error: boom")
}

func TestSimpleUI_DisplayCheck(t *testing.T) {
	cmd, stdout, _ := newTestCommand()
	ui := NewSimpleUI(cmd)

	ui.DisplayCheck(context.Background(), "out.js", "")
	assert.Contains(t, stdout.String(), "out.js is up to date")

	stdout.Reset()

	ui.DisplayCheck(context.Background(), "out.js", "-old\n+new\n")
	assert.Contains(t, stdout.String(), "out.js is stale")
	assert.Contains(t, stdout.String(), "+new")
}

func TestSimpleUI_CanceledContext(t *testing.T) {
	cmd, stdout, stderr := newTestCommand()
	ui := NewSimpleUI(cmd)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, ui.DisplayStories(ctx, testRecords()), context.Canceled)
	require.ErrorIs(t, ui.DisplayModule(ctx, "x"), context.Canceled)
	ui.DisplayGenerated(ctx, "out.js", 1)

	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestNewUI(t *testing.T) {
	cmd := &cobra.Command{}

	assert.IsType(t, &TUI{}, NewUI(cmd, true))
	assert.IsType(t, &SimpleUI{}, NewUI(cmd, false))
	assert.False(t, IsTTY(&bytes.Buffer{}))
}
