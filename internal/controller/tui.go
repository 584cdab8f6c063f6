package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "storylist.dev/pkg/storylist/internal/model"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	fileStyle    = lipgloss.NewStyle().Bold(true)
	idStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle    = lipgloss.NewStyle().Faint(true)
)

// TUI implements UI with lipgloss styling and a Bubble Tea pager for long
// story lists.
type TUI struct {
	cmd *cobra.Command
}

// NewTUI creates a new TUI.
func NewTUI(cmd *cobra.Command) *TUI {
	return &TUI{cmd: cmd}
}

// DisplayStories renders the stories grouped by source file. Lists taller
// than the terminal open in a scrollable pager.
func (p *TUI) DisplayStories(ctx context.Context, records []m.StoryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	content := renderStoryList(records)
	out := p.cmd.OutOrStdout()

	width, height, ok := terminalSize(out)
	if !ok || lineCount(content) <= height-reservedLines {
		_, err := fmt.Fprint(out, content)
		return err
	}

	model := newStoryPagerModel(content, width, height)

	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

func renderStoryList(records []m.StoryRecord) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Stories"))
	b.WriteString("\n\n")

	if len(records) == 0 {
		b.WriteString("  No stories found\n")
		return b.String()
	}

	files := 0

	var current m.SourceEntry

	for i, record := range records {
		if i == 0 || record.Source != current {
			current = record.Source
			files++

			fmt.Fprintf(&b, "  %s\n", fileStyle.Render(string(record.Source)))
		}

		fmt.Fprintf(&b, "    %s  %s\n", record.BindingName, idStyle.Render(record.StoryID))
	}

	fmt.Fprintf(&b, "\n  Total: %d stories across %d file(s)\n", len(records), files)

	return b.String()
}

// DisplayModule writes the generated module unstyled.
func (p *TUI) DisplayModule(ctx context.Context, module string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := fmt.Fprint(p.cmd.OutOrStdout(), module)

	return err
}

// DisplayGenerated reports the written module.
func (p *TUI) DisplayGenerated(ctx context.Context, target m.Path, stories int) {
	if err := ctx.Err(); err != nil {
		return
	}

	p.status(okStyle.Render("✓") + fmt.Sprintf(" Generated %s with %d stories", target, stories))
}

// DisplayCheck reports the freshness of target with a colored diff.
func (p *TUI) DisplayCheck(ctx context.Context, target m.Path, diff string) {
	if err := ctx.Err(); err != nil {
		return
	}

	out := p.cmd.OutOrStdout()

	if diff == "" {
		_, _ = fmt.Fprintf(out, "%s %s is up to date\n", okStyle.Render("✓"), target)
		return
	}

	_, _ = fmt.Fprintf(out, "%s %s is stale\n", warnStyle.Render("!"), target)
	_, _ = fmt.Fprint(out, colorDiff(diff))
}

func colorDiff(diff string) string {
	lines := strings.SplitAfter(diff, "\n")

	var b strings.Builder

	for _, line := range lines {
		trimmed := strings.TrimSuffix(line, "\n")

		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			b.WriteString(fileStyle.Render(trimmed))
		case strings.HasPrefix(line, "+"):
			b.WriteString(addedStyle.Render(trimmed))
		case strings.HasPrefix(line, "-"):
			b.WriteString(removedStyle.Render(trimmed))
		default:
			b.WriteString(trimmed)
		}

		if strings.HasSuffix(line, "\n") {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// DisplayReload reports the hot-reload outcome of a regeneration.
func (p *TUI) DisplayReload(ctx context.Context, report m.ReloadReport) {
	if err := ctx.Err(); err != nil {
		return
	}

	style := okStyle
	if report.Decision == m.ReloadInvalidate {
		style = warnStyle
	}

	p.status(fmt.Sprintf("↻ %d stories, %s", report.Stories, style.Render(report.Decision.String())))

	for _, record := range report.Added {
		p.status(okStyle.Render("+") + " " + record.StoryID)
	}

	for _, id := range report.Removed {
		p.status(warnStyle.Render("-") + " " + id)
	}
}

// DisplayError reports a non-fatal error.
func (p *TUI) DisplayError(ctx context.Context, err error) {
	if ctx.Err() != nil || err == nil {
		return
	}

	p.status(errorStyle.Render("✗") + " " + err.Error())
}

func (p *TUI) status(line string) {
	_, _ = fmt.Fprintln(p.cmd.ErrOrStderr(), line)
}

// reservedLines is kept free below the pager content for the help footer.
const reservedLines = 3

func terminalSize(w io.Writer) (int, int, bool) {
	f, ok := w.(*os.File)
	if !ok {
		return 0, 0, false
	}

	width, height, err := term.GetSize(int(f.Fd()))
	if err != nil || height <= 0 {
		return 0, 0, false
	}

	return width, height, true
}

func lineCount(s string) int {
	return strings.Count(s, "\n")
}

// storyPagerModel is the Bubble Tea model scrolling a rendered story list.
type storyPagerModel struct {
	viewport viewport.Model
	quitting bool
}

func newStoryPagerModel(content string, width, height int) storyPagerModel {
	vp := viewport.New(width, pagerHeight(height))
	vp.SetContent(content)

	return storyPagerModel{viewport: vp}
}

func pagerHeight(height int) int {
	if height-reservedLines < 1 {
		return 1
	}

	return height - reservedLines
}

func (sp storyPagerModel) Init() tea.Cmd {
	return nil
}

func (sp storyPagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		sp.viewport.Width = msg.Width
		sp.viewport.Height = pagerHeight(msg.Height)

		return sp, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			sp.quitting = true
			return sp, tea.Quit
		case "g", "home":
			sp.viewport.GotoTop()
			return sp, nil
		case "G", "end":
			sp.viewport.GotoBottom()
			return sp, nil
		}
	}

	var cmd tea.Cmd

	sp.viewport, cmd = sp.viewport.Update(msg)

	return sp, cmd
}

func (sp storyPagerModel) View() string {
	if sp.quitting {
		return ""
	}

	footer := fmt.Sprintf("  %3.f%% | ↑/k: up | ↓/j: down | g: top | G: bottom | q: quit", sp.viewport.ScrollPercent()*100)

	return sp.viewport.View() + "\n\n" + helpStyle.Render(footer)
}
