package guard_test

import (
	"errors"
	"sync"
	"testing"

	"radiology/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	t.Run("properly_constructed_guard_returns_nil", func(t *testing.T) {
		g := guard.NewConstructorGuard()

		require.NoError(t, g.Validate(errors.New("not constructed")))
		require.NoError(t, g.Validate(nil))
	})

	t.Run("zero_value_guard_returns_custom_error", func(t *testing.T) {
		var g guard.ConstructorGuard
		expected := errors.New("command not constructed")

		err := g.Validate(expected)

		require.Error(t, err)
		assert.Equal(t, expected, err)
	})

	t.Run("zero_value_guard_returns_default_error_when_nil", func(t *testing.T) {
		var g guard.ConstructorGuard

		err := g.Validate(nil)

		assert.Equal(t, guard.ErrDefaultConstructorGuard, err)
	})
}

func TestConstructorGuard_EmbeddedInCommand(t *testing.T) {
	type claimCommand struct {
		studyID string
		guard   guard.ConstructorGuard
	}
	errNotConstructed := errors.New("claimCommand must be created via newClaimCommand")

	newClaimCommand := func(studyID string) (claimCommand, error) {
		if studyID == "" {
			return claimCommand{}, errors.New("study id is required")
		}
		return claimCommand{studyID: studyID, guard: guard.NewConstructorGuard()}, nil
	}
	validate := func(c claimCommand) error { return c.guard.Validate(errNotConstructed) }

	t.Run("constructed_command_validates", func(t *testing.T) {
		cmd, err := newClaimCommand("study-1")
		require.NoError(t, err)
		require.NoError(t, validate(cmd))
	})

	t.Run("failed_constructor_returns_zero_value_that_fails_validation", func(t *testing.T) {
		cmd, err := newClaimCommand("")
		require.Error(t, err)
		assert.Equal(t, errNotConstructed, validate(cmd))
	})
}

func TestConstructorGuard_Concurrency(t *testing.T) {
	g := guard.NewConstructorGuard()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, g.Validate(nil))
		}()
	}
	wg.Wait()
}
