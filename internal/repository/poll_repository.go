package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/identity-registry/internal/domain"
)

// PollRepository encapsulates poll, candidate and vote persistence.
type PollRepository interface {
	CreatePoll(ctx context.Context, poll *domain.Poll) error
	GetPoll(ctx context.Context, id string) (*domain.Poll, error)
	ListPolls(ctx context.Context, limit, offset int) ([]domain.Poll, error)
	AddCandidate(ctx context.Context, candidate *domain.Candidate) error
	GetCandidate(ctx context.Context, id string) (*domain.Candidate, error)
	ListCandidates(ctx context.Context, pollID string) ([]domain.Candidate, error)
	// RecordVote stores the receipt, failing with ErrAlreadyVoted when the
	// voter already voted in the poll.
	RecordVote(ctx context.Context, receipt *domain.VoteReceipt) error
	IncrementVotes(ctx context.Context, candidateID string) error
}

type pollRepository struct {
	db DBTX
}

// NewPollRepository instantiates repository.
func NewPollRepository(db DBTX) PollRepository {
	return &pollRepository{db: db}
}

func (r *pollRepository) CreatePoll(ctx context.Context, poll *domain.Poll) error {
	const query = `
        INSERT INTO polls (id, title, description, starts_at, ends_at, created_by)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at`
	return r.db.QueryRow(ctx, query,
		poll.ID,
		poll.Title,
		poll.Description,
		poll.StartsAt,
		poll.EndsAt,
		poll.CreatedBy,
	).Scan(&poll.CreatedAt)
}

func (r *pollRepository) GetPoll(ctx context.Context, id string) (*domain.Poll, error) {
	const query = `
        SELECT id, title, description, starts_at, ends_at, created_by, created_at
        FROM polls WHERE id=$1`
	var poll domain.Poll
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&poll.ID,
		&poll.Title,
		&poll.Description,
		&poll.StartsAt,
		&poll.EndsAt,
		&poll.CreatedBy,
		&poll.CreatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &poll, nil
}

func (r *pollRepository) ListPolls(ctx context.Context, limit, offset int) ([]domain.Poll, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
        SELECT id, title, description, starts_at, ends_at, created_by, created_at
        FROM polls ORDER BY starts_at DESC, id LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var polls []domain.Poll
	for rows.Next() {
		var poll domain.Poll
		if err := rows.Scan(
			&poll.ID,
			&poll.Title,
			&poll.Description,
			&poll.StartsAt,
			&poll.EndsAt,
			&poll.CreatedBy,
			&poll.CreatedAt,
		); err != nil {
			return nil, err
		}
		polls = append(polls, poll)
	}
	return polls, rows.Err()
}

func (r *pollRepository) AddCandidate(ctx context.Context, candidate *domain.Candidate) error {
	const query = `
        INSERT INTO candidates (id, poll_id, name) VALUES ($1,$2,$3)
        RETURNING votes, created_at`
	return r.db.QueryRow(ctx, query, candidate.ID, candidate.PollID, candidate.Name).
		Scan(&candidate.Votes, &candidate.CreatedAt)
}

func (r *pollRepository) GetCandidate(ctx context.Context, id string) (*domain.Candidate, error) {
	const query = `SELECT id, poll_id, name, votes, created_at FROM candidates WHERE id=$1`
	var c domain.Candidate
	if err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.PollID, &c.Name, &c.Votes, &c.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *pollRepository) ListCandidates(ctx context.Context, pollID string) ([]domain.Candidate, error) {
	const query = `
        SELECT id, poll_id, name, votes, created_at
        FROM candidates WHERE poll_id=$1 ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query, pollID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Candidate, error) {
		var c domain.Candidate
		err := row.Scan(&c.ID, &c.PollID, &c.Name, &c.Votes, &c.CreatedAt)
		return c, err
	})
}

func (r *pollRepository) RecordVote(ctx context.Context, receipt *domain.VoteReceipt) error {
	const query = `
        INSERT INTO vote_receipts (poll_id, voter, candidate_id)
        VALUES ($1,$2,$3)
        ON CONFLICT (poll_id, voter) DO NOTHING
        RETURNING cast_at`
	err := r.db.QueryRow(ctx, query, receipt.PollID, bytesArg(receipt.Voter), receipt.CandidateID).Scan(&receipt.CastAt)
	return alreadyVoted(err)
}

func (r *pollRepository) IncrementVotes(ctx context.Context, candidateID string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE candidates SET votes = votes + 1 WHERE id=$1`, candidateID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func alreadyVoted(err error) error {
	if err == pgx.ErrNoRows {
		return domain.ErrAlreadyVoted
	}
	return err
}
