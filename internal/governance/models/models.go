package models

import (
	"strings"
	"time"

	id "ria/pkg/domain"
)

// Status is the proposal lifecycle state. Active is the only non-terminal
// state.
type Status string

const (
	StatusActive Status = "active"
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
)

func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	return st, st.IsValid()
}

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusPassed, StatusFailed:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusPassed || s == StatusFailed
}

// Direction is which way a vote is cast.
type Direction string

const (
	DirectionFor     Direction = "for"
	DirectionAgainst Direction = "against"
)

func ParseDirection(s string) (Direction, bool) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	return d, d.IsValid()
}

func (d Direction) IsValid() bool {
	return d == DirectionFor || d == DirectionAgainst
}

// VoteChange describes what recording a vote did to the tally.
type VoteChange string

const (
	VoteNew       VoteChange = "new"
	VoteChanged   VoteChange = "changed"
	VoteUnchanged VoteChange = "unchanged"
)

// Proposal is a community decision. Tallies only move while it is active.
type Proposal struct {
	ID           id.ProposalID
	Title        string
	Description  string
	Status       Status
	VotesFor     int64
	VotesAgainst int64
	EndDate      time.Time
	ProposerID   id.ParticipantID
	CreatedAt    time.Time
	ClosedAt     *time.Time
}

// AcceptsVotesAt reports whether a vote cast at now may be counted.
func (p *Proposal) AcceptsVotesAt(now time.Time) bool {
	return p.Status == StatusActive && now.Before(p.EndDate)
}

// ClosableAt reports whether voting has ended at now.
func (p *Proposal) ClosableAt(now time.Time) bool {
	return !now.Before(p.EndDate)
}

// ApplyVote moves the tally from a voter's prior direction (nil when the
// voter has not voted) to next.
func (p *Proposal) ApplyVote(prior *Direction, next Direction) VoteChange {
	if prior != nil && *prior == next {
		return VoteUnchanged
	}
	change := VoteNew
	if prior != nil {
		change = VoteChanged
		p.adjust(*prior, -1)
	}
	p.adjust(next, 1)
	return change
}

func (p *Proposal) adjust(d Direction, n int64) {
	switch d {
	case DirectionFor:
		p.VotesFor = max(0, p.VotesFor+n)
	case DirectionAgainst:
		p.VotesAgainst = max(0, p.VotesAgainst+n)
	}
}

// Outcome is the terminal status the current tally produces. A proposal
// passes only with strictly more votes for than against and, when quorum is
// positive, at least quorum votes in total.
func (p *Proposal) Outcome(quorum int64) Status {
	if quorum > 0 && p.VotesFor+p.VotesAgainst < quorum {
		return StatusFailed
	}
	if p.VotesFor > p.VotesAgainst {
		return StatusPassed
	}
	return StatusFailed
}

// Close records the outcome. It has no effect on a terminal proposal.
func (p *Proposal) Close(quorum int64, now time.Time) {
	if p.Status.IsTerminal() {
		return
	}
	p.Status = p.Outcome(quorum)
	closedAt := now
	p.ClosedAt = &closedAt
}

func (p *Proposal) Clone() *Proposal {
	c := *p
	if p.ClosedAt != nil {
		t := *p.ClosedAt
		c.ClosedAt = &t
	}
	return &c
}

// Vote is one participant's current position on a proposal.
type Vote struct {
	ProposalID id.ProposalID
	VoterID    id.ParticipantID
	Direction  Direction
	CastAt     time.Time
}

// Draft carries the caller-supplied fields of a new proposal.
type Draft struct {
	Title       string
	Description string
	EndDate     time.Time
}
