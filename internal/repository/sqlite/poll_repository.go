package sqlite

import (
	"context"
	"database/sql"

	"github.com/spec-kit/identity-registry/internal/domain"
)

type pollRepository struct {
	db dbtx
}

const pollColumns = `id, title, description, starts_at, ends_at, created_by, created_at`

func (r *pollRepository) CreatePoll(ctx context.Context, poll *domain.Poll) error {
	ts := now()
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO polls (`+pollColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		poll.ID,
		poll.Title,
		poll.Description,
		poll.StartsAt.UTC(),
		poll.EndsAt.UTC(),
		poll.CreatedBy,
		ts,
	)
	if err != nil {
		return err
	}
	poll.CreatedAt = ts
	return nil
}

func (r *pollRepository) GetPoll(ctx context.Context, id string) (*domain.Poll, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+pollColumns+` FROM polls WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	polls, err := collectPolls(rows)
	if err != nil {
		return nil, err
	}
	if len(polls) == 0 {
		return nil, domain.ErrNotFound
	}
	return &polls[0], nil
}

func (r *pollRepository) ListPolls(ctx context.Context, limit, offset int) ([]domain.Poll, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+pollColumns+` FROM polls ORDER BY starts_at DESC, id LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	return collectPolls(rows)
}

func (r *pollRepository) AddCandidate(ctx context.Context, candidate *domain.Candidate) error {
	ts := now()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO candidates (id, poll_id, name, votes, created_at) VALUES (?, ?, ?, 0, ?)`,
		candidate.ID, candidate.PollID, candidate.Name, ts)
	if err != nil {
		return err
	}
	candidate.Votes, candidate.CreatedAt = 0, ts
	return nil
}

func (r *pollRepository) GetCandidate(ctx context.Context, id string) (*domain.Candidate, error) {
	var c domain.Candidate
	err := r.db.QueryRowContext(ctx,
		`SELECT id, poll_id, name, votes, created_at FROM candidates WHERE id = ?`, id,
	).Scan(&c.ID, &c.PollID, &c.Name, &c.Votes, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *pollRepository) ListCandidates(ctx context.Context, pollID string) ([]domain.Candidate, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, poll_id, name, votes, created_at
        FROM candidates WHERE poll_id = ? ORDER BY created_at, id`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		if err := rows.Scan(&c.ID, &c.PollID, &c.Name, &c.Votes, &c.CreatedAt); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func (r *pollRepository) RecordVote(ctx context.Context, receipt *domain.VoteReceipt) error {
	ts := now()
	res, err := r.db.ExecContext(ctx, `
        INSERT INTO vote_receipts (poll_id, voter, candidate_id, cast_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT (poll_id, voter) DO NOTHING`,
		receipt.PollID, receipt.Voter, receipt.CandidateID, ts)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAlreadyVoted
	}
	receipt.CastAt = ts
	return nil
}

func (r *pollRepository) IncrementVotes(ctx context.Context, candidateID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE candidates SET votes = votes + 1 WHERE id = ?`, candidateID)
	return affectedOrNotFound(res, err)
}

func collectPolls(rows *sql.Rows) ([]domain.Poll, error) {
	defer rows.Close()

	var polls []domain.Poll
	for rows.Next() {
		var p domain.Poll
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.StartsAt, &p.EndsAt, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		polls = append(polls, p)
	}
	return polls, rows.Err()
}
