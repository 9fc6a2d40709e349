package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supportdesk/internal/store"
	"supportdesk/internal/testutil"
)

const sample = `
solutions:
  - problem: "  Cannot log in  "
    solution: Verify your email address first.
    category: account
  - problem: Printer offline
    solution: |
      Power-cycle the printer.
    category: hardware
`

func TestLoadSolutions(t *testing.T) {
	got, err := LoadSolutions(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Cannot log in", got[0].Problem)
	assert.Equal(t, "account", got[0].Category)
	assert.Equal(t, "Power-cycle the printer.", got[1].Solution)
	assert.Zero(t, got[1].ID)
}

func TestLoadSolutionsEmpty(t *testing.T) {
	got, err := LoadSolutions(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadSolutionsRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"missing solution": "solutions:\n  - problem: x\n",
		"unknown field":    "solutions:\n  - problem: x\n    solution: y\n    owner: z\n",
		"not a list":       "solutions: nope\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadSolutions(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestSeededSolutionsAreListed(t *testing.T) {
	st := store.New(testutil.NewDB(t))
	solutions, err := LoadSolutions(strings.NewReader(sample))
	require.NoError(t, err)
	require.NoError(t, st.CreateSolutions(context.Background(), solutions))

	listed, err := st.ListSolutions(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "Cannot log in", listed[0].Problem)
	assert.Equal(t, "Printer offline", listed[1].Problem)
}
