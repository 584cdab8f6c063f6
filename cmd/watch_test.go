package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storylist.dev/pkg/storylist/internal/domain"
	m "storylist.dev/pkg/storylist/internal/model"
)

func TestWatchCmd_DefaultDebounce(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newWatchCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	mockWorkflow.On("Watch", mock.Anything, mock.MatchedBy(func(args domain.WatchArgs) bool {
		return args.Debounce == defaultDebounce &&
			args.Output == m.Path("generated.js")
	})).Return(nil)

	cmd.SetArgs([]string{"watch", "-o", "generated.js"})
	err := cmd.Execute()
	require.NoError(t, err)
}

func TestWatchCmd_DebounceFlag(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newWatchCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	mockWorkflow.On("Watch", mock.Anything, mock.MatchedBy(func(args domain.WatchArgs) bool {
		return args.Debounce == 250*time.Millisecond && args.HotReload
	})).Return(nil)

	cmd.SetArgs([]string{"watch", "--debounce", "250ms", "--hmr", "-o", "generated.js", "src"})
	err := cmd.Execute()
	require.NoError(t, err)
}

func TestNewWatchCmd(t *testing.T) {
	cmd := newWatchCmd()

	assert.Equal(t, "watch [paths...]", cmd.Use)
	assert.Equal(t, watchLongDescription, cmd.Long)
	assert.NotNil(t, cmd.Flags().Lookup(debounceFlagName))
}
