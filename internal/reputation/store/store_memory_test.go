package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ria/internal/reputation/models"
	id "ria/pkg/domain"
	"ria/pkg/platform/sentinel"
	"ria/pkg/testutil"
)

func TestInMemoryStoreOperations(t *testing.T) {
	store := New()
	ctx := context.Background()
	p := models.NewParticipant(id.NewParticipantID(), "Ada", time.Now())

	require.NoError(t, store.Create(ctx, p))
	require.ErrorIs(t, store.Create(ctx, p), sentinel.ErrConflict)

	fetched, err := store.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", fetched.DisplayName)

	// Returned copies do not alias stored state
	fetched.Vector.Punctuality = 1
	again, err := store.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NeutralScore, again.Vector.Punctuality)

	_, err = store.FindByID(ctx, id.NewParticipantID())
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStoreExecute(t *testing.T) {
	store := New()
	ctx := context.Background()
	p := models.NewParticipant(id.NewParticipantID(), "Ada", time.Now())
	require.NoError(t, store.Create(ctx, p))

	t.Run("validation failure writes nothing", func(t *testing.T) {
		errRejected := errors.New("rejected")
		_, err := store.Execute(ctx, p.ID, func(*models.Participant) error { return errRejected }, func(p *models.Participant) {
			p.DisplayName = "changed"
		})
		require.ErrorIs(t, err, errRejected)

		fetched, err := store.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ada", fetched.DisplayName)
	})

	t.Run("unknown participant", func(t *testing.T) {
		_, err := store.Execute(ctx, id.NewParticipantID(), nil, func(*models.Participant) {})
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("concurrent mutations serialize", func(t *testing.T) {
		result := testutil.RunConcurrent(100, func(int) error {
			_, err := store.Execute(ctx, p.ID, nil, func(p *models.Participant) {
				p.Balance++
			})
			return err
		})
		assert.Equal(t, int32(100), result.Successes)

		fetched, err := store.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(100), fetched.Balance)
		assert.Zero(t, store.locks.Held(), "key locks are released")
	})
}

func TestInMemoryLedger(t *testing.T) {
	ledger := NewInMemoryLedger()
	ctx := context.Background()
	pid := id.NewParticipantID()

	result := testutil.RunConcurrent(20, func(int) error {
		claimed, err := ledger.Claim(ctx, "iou-1:fulfilled", pid)
		if err != nil {
			return err
		}
		if !claimed {
			return sentinel.ErrConflict
		}
		return nil
	})
	assert.Equal(t, int32(1), result.Successes, "exactly one claim wins")
	assert.Equal(t, int32(19), result.Conflicts)

	require.NoError(t, ledger.Release(ctx, "iou-1:fulfilled"))
	claimed, err := ledger.Claim(ctx, "iou-1:fulfilled", pid)
	require.NoError(t, err)
	assert.True(t, claimed, "released keys can be claimed again")
}
