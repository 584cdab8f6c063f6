package controller

import (
	"bytes"
	"context"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "storylist.dev/pkg/storylist/internal/model"
)

// SimpleUI implements UI using the cobra command's output streams.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplayStories prints the stories as a table.
func (s *SimpleUI) DisplayStories(ctx context.Context, records []m.StoryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderStoryTable(records))

	return nil
}

func renderStoryTable(records []m.StoryRecord) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Source", "Binding", "Story ID"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	files := make(map[m.SourceEntry]struct{})

	for _, record := range records {
		table.Append([]string{string(record.Source), record.BindingName, record.StoryID})
		files[record.Source] = struct{}{}
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(files)),
		"",
		fmt.Sprintf("%d stories", len(records)),
	})

	table.Render()

	return tableBuffer.String()
}

// DisplayModule prints the generated module to standard output.
func (s *SimpleUI) DisplayModule(ctx context.Context, module string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := fmt.Fprint(s.cmd.OutOrStdout(), module)

	return err
}

// DisplayGenerated reports the written module.
func (s *SimpleUI) DisplayGenerated(ctx context.Context, target m.Path, stories int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.errorf("Generated %s with %d stories\n", target, stories)
}

// DisplayCheck reports the freshness of target.
func (s *SimpleUI) DisplayCheck(ctx context.Context, target m.Path, diff string) {
	if err := ctx.Err(); err != nil {
		return
	}

	if diff == "" {
		s.printf("%s is up to date\n", target)
		return
	}

	s.printf("%s is stale:\n%s", target, diff)
}

// DisplayReload reports the hot-reload outcome of a regeneration.
func (s *SimpleUI) DisplayReload(ctx context.Context, report m.ReloadReport) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.errorf("Regenerated %d stories (%s)\n", report.Stories, report.Decision)

	for _, record := range report.Added {
		s.errorf("  + %s (%s)\n", record.StoryID, record.Source.Slash())
	}

	for _, id := range report.Removed {
		s.errorf("  - %s\n", id)
	}
}

// DisplayError prints err to the error stream.
func (s *SimpleUI) DisplayError(ctx context.Context, err error) {
	if ctx.Err() != nil || err == nil {
		return
	}

	s.errorf("error: %v\n", err)
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

// errorf writes status lines to stderr so stdout can carry the module.
func (s *SimpleUI) errorf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.ErrOrStderr(), format, args...)
}
