package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storylist.dev/pkg/storylist/internal/domain"
	m "storylist.dev/pkg/storylist/internal/model"
)

func TestListCmd_PassesScanArgs(t *testing.T) {
	mockWorkflow := withMockWorkflow(t)

	cmd := newRootCmd()
	cmd.AddCommand(newListCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	mockWorkflow.On("List", mock.Anything, mock.MatchedBy(func(args domain.ScanArgs) bool {
		return len(args.Paths) == 2 &&
			args.Paths[0] == m.Path("src") &&
			args.Paths[1] == m.Path("pages") &&
			args.StorySuffix == ".stories" &&
			len(args.Exclude) == 1 &&
			args.Exclude[0] == "fixtures"
	})).Return(nil)

	cmd.SetArgs([]string{"list", "-x", "fixtures", "src", "pages"})
	err := cmd.Execute()
	require.NoError(t, err)
}

func TestNewListCmd(t *testing.T) {
	cmd := newListCmd()

	assert.Equal(t, "list [paths...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Equal(t, listLongDescription, cmd.Long)
}
