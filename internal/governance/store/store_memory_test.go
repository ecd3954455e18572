package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ria/internal/governance/models"
	id "ria/pkg/domain"
	"ria/pkg/platform/sentinel"
	"ria/pkg/testutil"
)

var created = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func newProposal(title string, createdAt time.Time) *models.Proposal {
	return testutil.NewProposalBuilder(createdAt).WithTitle(title).Build()
}

func vote(p *models.Proposal, voter id.ParticipantID, d models.Direction) models.Vote {
	return models.Vote{ProposalID: p.ID, VoterID: voter, Direction: d, CastAt: created}
}

func TestInMemoryStoreCreateFindList(t *testing.T) {
	store := New()
	ctx := context.Background()
	older := newProposal("Community garden", created)
	newer := newProposal("Tool library", created.Add(time.Hour))
	require.NoError(t, store.Create(ctx, older))
	require.NoError(t, store.Create(ctx, newer))
	require.ErrorIs(t, store.Create(ctx, older), sentinel.ErrConflict)

	_, err := store.FindByID(ctx, id.NewProposalID())
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	all, err := store.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID)

	passed := models.StatusPassed
	none, err := store.List(ctx, &passed)
	require.NoError(t, err)
	assert.Empty(t, none)

	due, err := store.ListDue(ctx, older.EndDate, 0)
	require.NoError(t, err)
	require.Len(t, due, 1, "end date is inclusive")
	assert.Equal(t, older.ID, due[0].ID)
}

func TestInMemoryStoreRecordVote(t *testing.T) {
	store := New()
	ctx := context.Background()
	p := newProposal("Community garden", created)
	require.NoError(t, store.Create(ctx, p))
	voter := id.NewParticipantID()

	got, change, err := store.RecordVote(ctx, vote(p, voter, models.DirectionFor), nil)
	require.NoError(t, err)
	assert.Equal(t, models.VoteNew, change)
	assert.Equal(t, int64(1), got.VotesFor)

	got, change, err = store.RecordVote(ctx, vote(p, voter, models.DirectionFor), nil)
	require.NoError(t, err)
	assert.Equal(t, models.VoteUnchanged, change)
	assert.Equal(t, int64(1), got.VotesFor)

	got, change, err = store.RecordVote(ctx, vote(p, voter, models.DirectionAgainst), nil)
	require.NoError(t, err)
	assert.Equal(t, models.VoteChanged, change)
	assert.Equal(t, int64(0), got.VotesFor)
	assert.Equal(t, int64(1), got.VotesAgainst)

	recorded, err := store.FindVote(ctx, p.ID, voter)
	require.NoError(t, err)
	assert.Equal(t, models.DirectionAgainst, recorded.Direction)

	errClosed := errors.New("closed")
	_, _, err = store.RecordVote(ctx, vote(p, id.NewParticipantID(), models.DirectionFor), func(*models.Proposal) error { return errClosed })
	require.ErrorIs(t, err, errClosed)
	fetched, err := store.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), fetched.VotesFor, "rejected vote leaves tally alone")

	_, _, err = store.RecordVote(ctx, models.Vote{ProposalID: id.NewProposalID(), VoterID: voter, Direction: models.DirectionFor}, nil)
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStoreConcurrentVotes(t *testing.T) {
	store := New()
	ctx := context.Background()
	p := newProposal("Tool library", created)
	require.NoError(t, store.Create(ctx, p))

	result := testutil.RunConcurrent(180, func(i int) error {
		d := models.DirectionFor
		if i >= 142 {
			d = models.DirectionAgainst
		}
		_, _, err := store.RecordVote(ctx, vote(p, id.NewParticipantID(), d), nil)
		return err
	})
	assert.Equal(t, int32(180), result.Successes)

	fetched, err := store.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(142), fetched.VotesFor)
	assert.Equal(t, int64(38), fetched.VotesAgainst)
	assert.Zero(t, store.locks.Held())
}
