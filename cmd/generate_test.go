package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storylist.dev/pkg/storylist/internal/domain"
	domainmocks "storylist.dev/pkg/storylist/internal/domain/mocks"
	m "storylist.dev/pkg/storylist/internal/model"
)

// withMockWorkflow swaps the package workflow for a mock for the test.
func withMockWorkflow(t *testing.T) *domainmocks.MockWorkflow {
	t.Helper()

	mockWorkflow := domainmocks.NewMockWorkflow(t)

	originalWorkflow := workflow
	workflow = mockWorkflow
	t.Cleanup(func() { workflow = originalWorkflow })

	return mockWorkflow
}

func TestGenerateCmd_Defaults(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newGenerateCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	mockWorkflow.On("Generate", mock.Anything, mock.MatchedBy(func(args domain.GenerateArgs) bool {
		return len(args.Paths) == 1 &&
			args.Paths[0] == m.Path("widgets/button.tsx") &&
			args.Output == "" &&
			args.StorySuffix == ".stories" &&
			args.AppSrcDir == m.Path(".") &&
			!args.HotReload &&
			!args.Strict &&
			args.Manifest == ""
	})).Return(nil)

	cmd.SetArgs([]string{"generate", "widgets/button.tsx"})
	err := cmd.Execute()
	require.NoError(t, err)
}

func TestGenerateCmd_FlagsArePassedThrough(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newGenerateCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	mockWorkflow.On("Generate", mock.Anything, mock.MatchedBy(func(args domain.GenerateArgs) bool {
		return args.Output == m.Path("src/generated-list.js") &&
			args.AppSrcDir == m.Path("src") &&
			args.Manifest == m.Path("stories.yaml") &&
			args.StorySuffix == ".story" &&
			args.HotReload &&
			args.Strict
	})).Return(nil)

	cmd.SetArgs([]string{
		"generate",
		"-o", "src/generated-list.js",
		"--app-src-dir", "src",
		"--manifest", "stories.yaml",
		"--story-suffix", ".story",
		"--hmr",
		"--strict",
		"widgets",
	})
	err := cmd.Execute()
	require.NoError(t, err)
}

func TestGenerateCmd_WithExcludePatterns(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newGenerateCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	mockWorkflow.On("Generate", mock.Anything, mock.MatchedBy(func(args domain.GenerateArgs) bool {
		return len(args.Exclude) == 2 &&
			args.Exclude[0] == "^vendor/" &&
			args.Exclude[1] == `\.test\.tsx$`
	})).Return(nil)

	cmd.SetArgs([]string{"generate", "-x", "^vendor/", "-x", `\.test\.tsx$`})
	err := cmd.Execute()
	require.NoError(t, err)
}

func TestGenerateCmd_ReturnsWorkflowError(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newGenerateCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	failure := errors.New("parse failed")
	mockWorkflow.On("Generate", mock.Anything, mock.Anything).Return(failure)

	cmd.SetArgs([]string{"generate"})
	err := cmd.Execute()
	require.ErrorIs(t, err, failure)
}

func TestNewGenerateCmd(t *testing.T) {
	cmd := newGenerateCmd()

	assert.Equal(t, "generate [paths...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Equal(t, generateLongDescription, cmd.Long)
}
