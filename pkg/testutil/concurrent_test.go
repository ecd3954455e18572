package testutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "ria/pkg/domain-errors"
	"ria/pkg/platform/sentinel"
)

func TestRunConcurrentBucketsErrors(t *testing.T) {
	result := RunConcurrent(6, func(idx int) error {
		switch idx {
		case 0, 1:
			return nil
		case 2:
			return fmt.Errorf("claim settlement: %w", sentinel.ErrConflict)
		case 3:
			return dErrors.NotFound("iou not found")
		case 4:
			return dErrors.InvalidState("iou is not open")
		default:
			return errors.New("boom")
		}
	})

	assert.Equal(t, int32(2), result.Successes)
	assert.Equal(t, int32(1), result.Conflicts)
	assert.Equal(t, int32(1), result.NotFounds)
	assert.Equal(t, int32(1), result.InvalidStates)
	assert.Equal(t, int32(1), result.Errors)
	assert.Equal(t, int32(6), result.Total())
}

func TestRunConcurrentZero(t *testing.T) {
	assert.Zero(t, RunConcurrent(0, func(int) error { return nil }).Total())
}
