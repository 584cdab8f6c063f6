package controller

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "storylist.dev/pkg/storylist/internal/model"
)

func TestTUI_DisplayStories_PrintsWithoutTerminal(t *testing.T) {
	cmd, stdout, _ := newTestCommand()

	require.NoError(t, NewTUI(cmd).DisplayStories(context.Background(), testRecords()))

	out := stdout.String()
	assert.Contains(t, out, "Stories")
	assert.Equal(t, 1, strings.Count(out, "widgets/button.tsx"))
	assert.Contains(t, out, "widgets-button--disabled")
	assert.Contains(t, out, "Total: 3 stories across 2 file(s)")
}

func TestTUI_DisplayStories_Empty(t *testing.T) {
	cmd, stdout, _ := newTestCommand()

	require.NoError(t, NewTUI(cmd).DisplayStories(context.Background(), nil))
	assert.Contains(t, stdout.String(), "No stories found")
}

func TestTUI_DisplayModule_IsVerbatim(t *testing.T) {
	cmd, stdout, _ := newTestCommand()

	require.NoError(t, NewTUI(cmd).DisplayModule(context.Background(), "export let stories = {};\n"))
	assert.Equal(t, "export let stories = {};\n", stdout.String())
}

func TestTUI_Status(t *testing.T) {
	cmd, stdout, stderr := newTestCommand()
	ui := NewTUI(cmd)
	ctx := context.Background()

	ui.DisplayGenerated(ctx, "out.js", 2)
	ui.DisplayReload(ctx, m.ReloadReport{Decision: m.ReloadSwap, Stories: 2, Removed: []string{"button--old"}})
	ui.DisplayError(ctx, errors.New("bad syntax"))

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Generated out.js with 2 stories")
	assert.Contains(t, stderr.String(), "hot swap")
	assert.Contains(t, stderr.String(), "button--old")
	assert.Contains(t, stderr.String(), "bad syntax")
}

func TestTUI_DisplayCheck(t *testing.T) {
	cmd, stdout, _ := newTestCommand()
	ui := NewTUI(cmd)

	ui.DisplayCheck(context.Background(), "out.js", "--- out.js\n+++ out.js (generated)\n-a\n+b\n")

	out := stdout.String()
	assert.Contains(t, out, "out.js is stale")
	assert.Contains(t, out, "+b")
	assert.Contains(t, out, "-a")
}

func TestColorDiff_KeepsLines(t *testing.T) {
	diff := "--- a\n+++ b\n@@ -1 +1 @@\n-old\n+new\n context"

	colored := colorDiff(diff)

	assert.Equal(t, strings.Count(diff, "\n"), strings.Count(colored, "\n"))
	assert.Contains(t, colored, "@@ -1 +1 @@")
	assert.Contains(t, colored, "context")
}

func TestStoryPagerModel(t *testing.T) {
	content := strings.Repeat("line\n", 50)
	model := newStoryPagerModel(content, 80, 10)

	assert.Equal(t, 7, model.viewport.Height)
	assert.Nil(t, model.Init())

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 100, Height: 2})
	pager := updated.(storyPagerModel)
	assert.Equal(t, 100, pager.viewport.Width)
	assert.Equal(t, 1, pager.viewport.Height)

	updated, _ = pager.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})
	pager = updated.(storyPagerModel)
	assert.True(t, pager.viewport.AtBottom())
	assert.Contains(t, pager.View(), "q: quit")

	updated, cmd := pager.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	pager = updated.(storyPagerModel)
	require.NotNil(t, cmd)
	assert.True(t, pager.quitting)
	assert.Empty(t, pager.View())
}
