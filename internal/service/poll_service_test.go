package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/spec-kit/identity-registry/internal/domain"
	"github.com/spec-kit/identity-registry/internal/events"
	"github.com/spec-kit/identity-registry/internal/repository/sqlite"
	"github.com/spec-kit/identity-registry/internal/service"
	"github.com/spec-kit/identity-registry/internal/testutil"
	"github.com/spec-kit/identity-registry/internal/token"
)

type PollServiceSuite struct {
	suite.Suite

	ctx      context.Context
	store    *sqlite.Store
	recorder *eventRecorder
	polls    *service.PollService
	identity *service.IdentityService
	clock    time.Time

	admin  service.Actor
	holder service.Actor
}

func TestPollServiceSuite(t *testing.T) {
	suite.Run(t, new(PollServiceSuite))
}

func (s *PollServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutil.NewSQLiteStore(s.T())
	s.clock = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	dispatcher := events.NewInMemoryDispatcher()
	s.recorder = recordEvents(dispatcher)
	s.polls = service.NewPollService(service.PollDependencies{
		Store:      s.store,
		Dispatcher: dispatcher,
		Now:        func() time.Time { return s.clock },
	})
	s.identity = service.NewIdentityService(service.IdentityDependencies{
		Store:     s.store,
		Tokens:    token.NewMemoryLedger(),
		Authority: token.NewAuthority(),
		Metadata:  tokenConfig,
	})

	s.admin = actorFor(testutil.CreateAccount(s.T(), s.store, domain.RoleAdmin))
	s.holder = actorFor(testutil.CreateAccount(s.T(), s.store, domain.RoleHolder))

	_, _, err := service.NewRegistryService(s.store, nil, nil).Initialize(s.ctx, s.admin)
	s.Require().NoError(err)
}

func (s *PollServiceSuite) createPoll(candidates ...string) *service.PollView {
	view, err := s.polls.CreatePoll(s.ctx, s.admin, service.PollCreateInput{
		Title:      "  Council seat  ",
		StartsAt:   s.clock.Add(time.Hour),
		EndsAt:     s.clock.Add(2 * time.Hour),
		Candidates: candidates,
	})
	s.Require().NoError(err)
	return view
}

func (s *PollServiceSuite) withIdentity(actor service.Actor) *domain.IdentityRecord {
	record, err := s.identity.Initiate(s.ctx, actor, actor.AccountID, "2000-01-01", "F")
	s.Require().NoError(err)
	return record
}

func (s *PollServiceSuite) TestCreatePollValidation() {
	_, err := s.polls.CreatePoll(s.ctx, s.holder, service.PollCreateInput{Title: "x"})
	s.ErrorIs(err, domain.ErrForbidden)

	cases := []service.PollCreateInput{
		{Title: " ", StartsAt: s.clock, EndsAt: s.clock.Add(time.Hour)},
		{Title: "missing window"},
		{Title: "inverted", StartsAt: s.clock, EndsAt: s.clock},
		{Title: "blank candidate", StartsAt: s.clock, EndsAt: s.clock.Add(time.Hour), Candidates: []string{"ok", " "}},
	}
	for _, input := range cases {
		_, err := s.polls.CreatePoll(s.ctx, s.admin, input)
		s.ErrorIs(err, domain.ErrInvalidInput, input.Title)
	}
}

func (s *PollServiceSuite) TestCreateAndGetPoll() {
	view := s.createPoll("first", "second")
	s.Equal("Council seat", view.Poll.Title)
	s.Equal(s.admin.AccountID, view.Poll.CreatedBy)
	s.Len(view.Candidates, 2)

	got, err := s.polls.GetPoll(s.ctx, view.Poll.ID)
	s.Require().NoError(err)
	s.Equal(view.Poll.ID, got.Poll.ID)
	s.Len(got.Candidates, 2)

	listed, err := s.polls.ListPolls(s.ctx, 0, 0)
	s.Require().NoError(err)
	s.Len(listed, 1)

	_, err = s.polls.GetPoll(s.ctx, "not-a-uuid")
	s.ErrorIs(err, domain.ErrInvalidInput)
	_, err = s.polls.GetPoll(s.ctx, uuid.NewString())
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *PollServiceSuite) TestVotingWindow() {
	view := s.createPoll("first")
	s.withIdentity(s.holder)
	candidate := view.Candidates[0].ID

	_, err := s.polls.Vote(s.ctx, s.holder, view.Poll.ID, candidate)
	s.ErrorIs(err, domain.ErrVotingNotStarted)

	s.clock = view.Poll.EndsAt
	_, err = s.polls.Vote(s.ctx, s.holder, view.Poll.ID, candidate)
	s.ErrorIs(err, domain.ErrVotingEnded)

	s.clock = view.Poll.StartsAt
	receipt, err := s.polls.Vote(s.ctx, s.holder, view.Poll.ID, candidate)
	s.Require().NoError(err)
	s.Equal(s.holder.Wallet, receipt.Voter)
}

func (s *PollServiceSuite) TestOneVotePerVoter() {
	view := s.createPoll("first", "second")
	s.withIdentity(s.holder)
	s.clock = view.Poll.StartsAt

	_, err := s.polls.Vote(s.ctx, s.holder, view.Poll.ID, view.Candidates[0].ID)
	s.Require().NoError(err)

	_, err = s.polls.Vote(s.ctx, s.holder, view.Poll.ID, view.Candidates[1].ID)
	s.ErrorIs(err, domain.ErrAlreadyVoted)

	got, err := s.polls.GetPoll(s.ctx, view.Poll.ID)
	s.Require().NoError(err)
	votes := map[string]int64{}
	for _, c := range got.Candidates {
		votes[c.Name] = c.Votes
	}
	s.Equal(map[string]int64{"first": 1, "second": 0}, votes)

	s.Equal(events.EventVoteCast, s.recorder.last().Type)
}

func (s *PollServiceSuite) TestVoteRequiresActiveIdentity() {
	view := s.createPoll("first")
	s.clock = view.Poll.StartsAt
	candidate := view.Candidates[0].ID

	_, err := s.polls.Vote(s.ctx, s.holder, view.Poll.ID, candidate)
	s.ErrorIs(err, domain.ErrIdentityRequired)

	record := s.withIdentity(s.holder)
	_, err = s.identity.Expire(s.ctx, s.admin, record.Address)
	s.Require().NoError(err)

	_, err = s.polls.Vote(s.ctx, s.holder, view.Poll.ID, candidate)
	s.ErrorIs(err, domain.ErrIdentityRequired)
}

func (s *PollServiceSuite) TestVoteRejectsForeignCandidate() {
	view := s.createPoll("first")
	other := s.createPoll("elsewhere")
	s.withIdentity(s.holder)
	s.clock = view.Poll.StartsAt

	_, err := s.polls.Vote(s.ctx, s.holder, view.Poll.ID, other.Candidates[0].ID)
	s.ErrorIs(err, domain.ErrInvalidInput)

	_, err = s.polls.Vote(s.ctx, s.holder, view.Poll.ID, "bogus")
	s.ErrorIs(err, domain.ErrInvalidInput)
}

func (s *PollServiceSuite) TestAddCandidateUntilPollEnds() {
	view := s.createPoll()

	_, err := s.polls.AddCandidate(s.ctx, s.holder, view.Poll.ID, "late")
	s.ErrorIs(err, domain.ErrForbidden)

	s.clock = view.Poll.StartsAt.Add(time.Minute)
	candidate, err := s.polls.AddCandidate(s.ctx, s.admin, view.Poll.ID, " late ")
	s.Require().NoError(err)
	s.Equal("late", candidate.Name)

	s.clock = view.Poll.EndsAt
	_, err = s.polls.AddCandidate(s.ctx, s.admin, view.Poll.ID, "too late")
	s.ErrorIs(err, domain.ErrVotingEnded)

	_, err = s.polls.AddCandidate(s.ctx, s.admin, uuid.NewString(), "nowhere")
	s.ErrorIs(err, domain.ErrNotFound)
}
