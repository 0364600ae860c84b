package refs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepvault/stepvault/packages/refs"
	"github.com/stepvault/stepvault/packages/store"
)

func TestRecordAndList(t *testing.T) {
	tracker := refs.NewTracker("exec-1", store.NewMemory())

	resolved := "Zhang"
	require.NoError(t, tracker.Record(&refs.Reference{
		StepIndex:          1,
		VariableName:       "user",
		Path:               "name",
		OriginalExpression: "${user.name}",
		ResolvedValue:      &resolved,
		Status:             refs.StatusSuccess,
	}))
	require.NoError(t, tracker.Record(&refs.Reference{
		StepIndex:          2,
		VariableName:       "missing",
		OriginalExpression: "${missing}",
		Status:             refs.StatusFailed,
		ErrorMessage:       `undefined variable "missing"`,
	}))

	refs1, err := tracker.List()
	require.NoError(t, err)
	require.Len(t, refs1, 2)
	assert.Equal(t, "exec-1", refs1[0].ExecutionID)
	assert.False(t, refs1[0].CreatedAt.IsZero())
	assert.Nil(t, refs1[1].ResolvedValue)
}

func TestDuplicatesAppend(t *testing.T) {
	tracker := refs.NewTracker("exec-1", store.NewMemory())

	ref := refs.Reference{
		StepIndex:          1,
		VariableName:       "x",
		OriginalExpression: "${x}",
		Status:             refs.StatusFailed,
	}
	require.NoError(t, tracker.Record(&ref))
	dup := ref
	require.NoError(t, tracker.Record(&dup), "duplicates never error")

	listed, err := tracker.List()
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestClear(t *testing.T) {
	backend := store.NewMemory()
	tracker := refs.NewTracker("exec-1", backend)
	other := refs.NewTracker("exec-2", backend)

	require.NoError(t, tracker.Record(&refs.Reference{OriginalExpression: "${a}", Status: refs.StatusFailed}))
	require.NoError(t, other.Record(&refs.Reference{OriginalExpression: "${b}", Status: refs.StatusFailed}))

	require.NoError(t, tracker.Clear())
	listed, err := tracker.List()
	require.NoError(t, err)
	assert.Empty(t, listed)

	kept, err := other.List()
	require.NoError(t, err)
	assert.Len(t, kept, 1, "clearing one execution leaves others alone")
}
