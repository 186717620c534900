package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-registry/internal/domain"
	"github.com/spec-kit/identity-registry/internal/events"
	"github.com/spec-kit/identity-registry/internal/observability"
	"github.com/spec-kit/identity-registry/internal/repository"
)

// PollService runs the poll ledger. Only holders of an active identity may vote.
type PollService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// PollDependencies bundles collaborators for the poll service.
type PollDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	// Now overrides the clock; defaults to time.Now.
	Now func() time.Time
}

// PollCreateInput describes a new poll.
type PollCreateInput struct {
	Title       string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
	Candidates  []string
}

// PollView is a poll with its candidates.
type PollView struct {
	Poll       domain.Poll
	Candidates []domain.Candidate
}

// NewPollService constructs the service.
func NewPollService(deps PollDependencies) *PollService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &PollService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     nopIfNil(deps.Logger),
		now:        now,
	}
}

// CreatePoll creates a poll and its initial candidates.
func (s *PollService) CreatePoll(ctx context.Context, actor Actor, input PollCreateInput) (*PollView, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: creating polls requires admin", domain.ErrForbidden)
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title required", domain.ErrInvalidInput)
	}
	if input.StartsAt.IsZero() || input.EndsAt.IsZero() {
		return nil, fmt.Errorf("%w: starts_at and ends_at required", domain.ErrInvalidInput)
	}
	if !input.EndsAt.After(input.StartsAt) {
		return nil, fmt.Errorf("%w: ends_at must be after starts_at", domain.ErrInvalidInput)
	}
	for _, name := range input.Candidates {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: candidate name required", domain.ErrInvalidInput)
		}
	}

	view := &PollView{Poll: domain.Poll{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		StartsAt:    input.StartsAt.UTC(),
		EndsAt:      input.EndsAt.UTC(),
		CreatedBy:   actor.AccountID,
	}}
	err := s.store.RunInTx(ctx, func(repos repository.Repositories) error {
		if err := repos.Polls().CreatePoll(ctx, &view.Poll); err != nil {
			return err
		}
		for _, name := range input.Candidates {
			candidate := domain.Candidate{ID: uuid.NewString(), PollID: view.Poll.ID, Name: strings.TrimSpace(name)}
			if err := repos.Polls().AddCandidate(ctx, &candidate); err != nil {
				return err
			}
			view.Candidates = append(view.Candidates, candidate)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// AddCandidate adds a candidate to a poll that has not ended.
func (s *PollService) AddCandidate(ctx context.Context, actor Actor, pollID, name string) (*domain.Candidate, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: adding candidates requires admin", domain.ErrForbidden)
	}
	if err := validateID("poll id", pollID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: candidate name required", domain.ErrInvalidInput)
	}

	candidate := &domain.Candidate{ID: uuid.NewString(), PollID: pollID, Name: name}
	err := s.store.RunInTx(ctx, func(repos repository.Repositories) error {
		poll, err := repos.Polls().GetPoll(ctx, pollID)
		if err != nil {
			return err
		}
		if err := poll.CheckVotingWindow(s.now()); errors.Is(err, domain.ErrVotingEnded) {
			return err
		}
		return repos.Polls().AddCandidate(ctx, candidate)
	})
	if err != nil {
		return nil, err
	}
	return candidate, nil
}

// GetPoll returns a poll with its candidates.
func (s *PollService) GetPoll(ctx context.Context, pollID string) (*PollView, error) {
	if err := validateID("poll id", pollID); err != nil {
		return nil, err
	}
	polls := s.store.Polls()
	poll, err := polls.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	candidates, err := polls.ListCandidates(ctx, pollID)
	if err != nil {
		return nil, err
	}
	return &PollView{Poll: *poll, Candidates: candidates}, nil
}

// ListPolls pages through polls, most recent start first.
func (s *PollService) ListPolls(ctx context.Context, limit, offset int) ([]domain.Poll, error) {
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.Polls().ListPolls(ctx, limit, offset)
}

// Vote records the actor's single vote in a poll.
func (s *PollService) Vote(ctx context.Context, actor Actor, pollID, candidateID string) (*domain.VoteReceipt, error) {
	if err := validateID("poll id", pollID); err != nil {
		return nil, err
	}
	if err := validateID("candidate id", candidateID); err != nil {
		return nil, err
	}

	receipt := &domain.VoteReceipt{PollID: pollID, Voter: actor.Wallet, CandidateID: candidateID}
	err := s.store.RunInTx(ctx, func(repos repository.Repositories) error {
		poll, err := repos.Polls().GetPoll(ctx, pollID)
		if err != nil {
			return err
		}
		if err := poll.CheckVotingWindow(s.now()); err != nil {
			return err
		}

		record, err := repos.Identities().Get(ctx, domain.RecordAddress(actor.Wallet))
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return domain.ErrIdentityRequired
		case err != nil:
			return err
		case !record.IsActive:
			return fmt.Errorf("%w: identity is inactive", domain.ErrIdentityRequired)
		}

		candidate, err := repos.Polls().GetCandidate(ctx, candidateID)
		if err != nil {
			return err
		}
		if candidate.PollID != poll.ID {
			return fmt.Errorf("%w: candidate is not part of poll", domain.ErrInvalidInput)
		}

		if err := repos.Polls().RecordVote(ctx, receipt); err != nil {
			return err
		}
		return repos.Polls().IncrementVotes(ctx, candidateID)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordVote()
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventVoteCast,
		Subject: pollID,
		Actor:   actor.event(),
		Payload: events.VoteCastPayload{CandidateID: candidateID},
	})
	return receipt, nil
}

func validateID(label, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: invalid %s", domain.ErrInvalidInput, label)
	}
	return nil
}
