//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ria/internal/governance/models"
	"ria/internal/governance/store"
	id "ria/pkg/domain"
	"ria/pkg/platform/sentinel"
	"ria/pkg/testutil"
	"ria/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateModuleTables(context.Background()))
}

func (s *PostgresStoreSuite) newProposal() *models.Proposal {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Proposal{
		ID:         id.NewProposalID(),
		Title:      "Community garden",
		Status:     models.StatusActive,
		EndDate:    now.Add(time.Hour),
		ProposerID: id.NewParticipantID(),
		CreatedAt:  now,
	}
}

func (s *PostgresStoreSuite) TestCreateFindAndConflict() {
	ctx := context.Background()
	p := s.newProposal()
	s.Require().NoError(s.store.Create(ctx, p))
	s.ErrorIs(s.store.Create(ctx, p), sentinel.ErrConflict)

	fetched, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("Community garden", fetched.Title)
	s.Nil(fetched.ClosedAt)

	_, err = s.store.FindByID(ctx, id.NewProposalID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestVoteReplacementAndClose() {
	ctx := context.Background()
	p := s.newProposal()
	s.Require().NoError(s.store.Create(ctx, p))
	voter := id.NewParticipantID()

	_, change, err := s.store.RecordVote(ctx, models.Vote{ProposalID: p.ID, VoterID: voter, Direction: models.DirectionFor, CastAt: p.CreatedAt}, nil)
	s.Require().NoError(err)
	s.Equal(models.VoteNew, change)

	got, change, err := s.store.RecordVote(ctx, models.Vote{ProposalID: p.ID, VoterID: voter, Direction: models.DirectionAgainst, CastAt: p.CreatedAt}, nil)
	s.Require().NoError(err)
	s.Equal(models.VoteChanged, change)
	s.Equal(int64(0), got.VotesFor)
	s.Equal(int64(1), got.VotesAgainst)

	closedAt := p.EndDate
	closed, err := s.store.Execute(ctx, p.ID, nil, func(p *models.Proposal) { p.Close(0, closedAt) })
	s.Require().NoError(err)
	s.Equal(models.StatusFailed, closed.Status)

	fetched, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Require().NotNil(fetched.ClosedAt)
	s.True(closedAt.Equal(*fetched.ClosedAt))
}

func (s *PostgresStoreSuite) TestConcurrentVotesTally() {
	ctx := context.Background()
	p := s.newProposal()
	s.Require().NoError(s.store.Create(ctx, p))

	result := testutil.RunConcurrent(20, func(i int) error {
		d := models.DirectionFor
		if i%4 == 0 {
			d = models.DirectionAgainst
		}
		_, _, err := s.store.RecordVote(ctx, models.Vote{ProposalID: p.ID, VoterID: id.NewParticipantID(), Direction: d, CastAt: p.CreatedAt}, nil)
		return err
	})
	s.Equal(int32(20), result.Successes)

	fetched, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(int64(15), fetched.VotesFor)
	s.Equal(int64(5), fetched.VotesAgainst)
}
