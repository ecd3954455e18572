package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ria/internal/iou/models"
	id "ria/pkg/domain"
	"ria/pkg/platform/sentinel"
	"ria/pkg/testutil"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newIOU(issuer id.ParticipantID, description string, created time.Time) *models.IOU {
	return testutil.NewIOUBuilder(created).WithIssuer(issuer).WithDescription(description).Build()
}

func TestInMemoryStoreCreateAndFind(t *testing.T) {
	store := New()
	ctx := context.Background()
	iou := newIOU(id.NewParticipantID(), "Bike repair", baseTime)

	require.NoError(t, store.Create(ctx, iou))
	require.ErrorIs(t, store.Create(ctx, iou), sentinel.ErrConflict)

	fetched, err := store.FindByID(ctx, iou.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bike repair", fetched.Description)

	*fetched.RiskScore = 1
	again, err := store.FindByID(ctx, iou.ID)
	require.NoError(t, err)
	assert.Equal(t, 80, *again.RiskScore, "returned copies do not alias stored state")

	_, err = store.FindByID(ctx, id.NewIOUID())
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStoreListing(t *testing.T) {
	store := New()
	ctx := context.Background()
	alice, bob := id.NewParticipantID(), id.NewParticipantID()

	older := newIOU(alice, "Garden weeding", baseTime)
	newer := newIOU(alice, "Bike repair", baseTime.Add(time.Hour))
	bound := newIOU(bob, "Bike lights", baseTime.Add(2*time.Hour))
	bound.RecipientID = &alice
	for _, i := range []*models.IOU{older, newer, bound} {
		require.NoError(t, store.Create(ctx, i))
	}

	t.Run("filter by issuer newest first", func(t *testing.T) {
		got, err := store.List(ctx, models.Filter{IssuerID: &alice})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, newer.ID, got[0].ID)
		assert.Equal(t, older.ID, got[1].ID)
	})

	t.Run("filter by recipient", func(t *testing.T) {
		got, err := store.List(ctx, models.Filter{RecipientID: &alice})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, bound.ID, got[0].ID)
	})

	t.Run("available excludes bound postings", func(t *testing.T) {
		got, err := store.ListAvailable(ctx, "BIKE", 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, newer.ID, got[0].ID)

		all, err := store.ListAvailable(ctx, "", 1)
		require.NoError(t, err)
		assert.Len(t, all, 1, "limit applies")
	})

	t.Run("due lists non-terminal overdue oldest first", func(t *testing.T) {
		now := baseTime.Add(30 * 24 * time.Hour)
		_, err := store.Execute(ctx, older.ID, nil, func(i *models.IOU) {
			_ = i.Transition(models.StatusFulfilled, now)
		})
		require.NoError(t, err)

		got, err := store.ListDue(ctx, now, 0)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, newer.ID, got[0].ID)
		assert.Equal(t, bound.ID, got[1].ID)

		none, err := store.ListDue(ctx, baseTime, 0)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("unsettled lists terminal ious until marked", func(t *testing.T) {
		got, err := store.ListUnsettled(ctx, 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, older.ID, got[0].ID)

		settledAt := baseTime.Add(31 * 24 * time.Hour)
		_, err = store.Execute(ctx, older.ID, nil, func(i *models.IOU) { i.SettledAt = &settledAt })
		require.NoError(t, err)

		got, err = store.ListUnsettled(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestInMemoryStoreExecute(t *testing.T) {
	store := New()
	ctx := context.Background()
	iou := newIOU(id.NewParticipantID(), "Bike repair", baseTime)
	require.NoError(t, store.Create(ctx, iou))

	t.Run("validation failure writes nothing", func(t *testing.T) {
		errRejected := errors.New("rejected")
		_, err := store.Execute(ctx, iou.ID, func(*models.IOU) error { return errRejected }, func(i *models.IOU) {
			i.Status = models.StatusExpired
		})
		require.ErrorIs(t, err, errRejected)

		fetched, err := store.FindByID(ctx, iou.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusOutstanding, fetched.Status)
	})

	t.Run("unknown iou", func(t *testing.T) {
		_, err := store.Execute(ctx, id.NewIOUID(), nil, func(*models.IOU) {})
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("only one concurrent acceptance wins", func(t *testing.T) {
		errTaken := errors.New("taken")
		result := testutil.RunConcurrent(50, func(int) error {
			recipient := id.NewParticipantID()
			_, err := store.Execute(ctx, iou.ID, func(i *models.IOU) error {
				if !i.IsOpenPosting() {
					return errTaken
				}
				return nil
			}, func(i *models.IOU) {
				i.RecipientID = &recipient
				_ = i.Transition(models.StatusAccepted, baseTime)
			})
			return err
		})
		assert.Equal(t, int32(1), result.Successes)
		assert.Equal(t, int32(49), result.Errors)
		assert.Zero(t, store.locks.Held())

		fetched, err := store.FindByID(ctx, iou.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusAccepted, fetched.Status)
		assert.Equal(t, int64(2), fetched.Version)
	})
}
