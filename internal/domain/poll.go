package domain

import "time"

// Poll is a time-boxed vote over a set of candidates.
type Poll struct {
	ID          string
	Title       string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
	CreatedBy   string
	CreatedAt   time.Time
}

// CheckVotingWindow reports whether votes are accepted at now. The window is
// [StartsAt, EndsAt).
func (p *Poll) CheckVotingWindow(now time.Time) error {
	if now.Before(p.StartsAt) {
		return ErrVotingNotStarted
	}
	if !now.Before(p.EndsAt) {
		return ErrVotingEnded
	}
	return nil
}

// Candidate is a choice within a poll.
type Candidate struct {
	ID        string
	PollID    string
	Name      string
	Votes     int64
	CreatedAt time.Time
}

// VoteReceipt records that a voter cast a vote in a poll.
type VoteReceipt struct {
	PollID      string
	Voter       Address
	CandidateID string
	CastAt      time.Time
}
