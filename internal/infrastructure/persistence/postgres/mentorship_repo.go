// Package postgres implements PostgreSQL persistence layer for CyberMatch Hub.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cybermatch/cybermatch-hub/internal/domain/mentorship"
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MENTORSHIP REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// MentorshipRepository implements mentorship.Repository for PostgreSQL.
type MentorshipRepository struct {
	conn *Connection
}

// NewMentorshipRepository creates a new MentorshipRepository.
func NewMentorshipRepository(conn *Connection) *MentorshipRepository {
	return &MentorshipRepository{conn: conn}
}

const requestColumns = `id, seeker_id, candidate_id, status, created_at, responded_at`

// Create creates a new mentorship request.
// The partial unique index on open pairs turns a concurrent duplicate
// into shared.ErrDuplicateRequest.
func (r *MentorshipRepository) Create(ctx context.Context, request *mentorship.Request) error {
	query := `
		INSERT INTO mentorship_requests (id, seeker_id, candidate_id, status, created_at, responded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.conn.Exec(ctx, query,
		request.ID,
		request.SeekerID.String(),
		request.CandidateID.String(),
		string(request.Status),
		request.CreatedAt,
		request.RespondedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrDuplicateRequest
		}
		return fmt.Errorf("failed to create request: %w", err)
	}

	return nil
}

// GetByID returns a request by ID.
func (r *MentorshipRepository) GetByID(ctx context.Context, id string) (*mentorship.Request, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM mentorship_requests
		WHERE id = $1
	`, requestColumns)

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanRequest(row)
}

// Update persists the status transition of a request.
// The row is locked and re-checked inside a transaction so that two
// concurrent answers resolve to one winner: a terminal row never
// reverts or flips to the other terminal status.
func (r *MentorshipRepository) Update(ctx context.Context, request *mentorship.Request) error {
	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		var current string
		err := tx.QueryRow(ctx,
			`SELECT status FROM mentorship_requests WHERE id = $1 FOR UPDATE`,
			request.ID,
		).Scan(&current)
		if err != nil {
			if IsNoRows(err) {
				return shared.ErrRequestNotFound
			}
			return fmt.Errorf("failed to lock request: %w", err)
		}

		if mentorship.Status(current).IsTerminal() && current != string(request.Status) {
			return shared.ErrInvalidTransition
		}

		_, err = tx.Exec(ctx, `
			UPDATE mentorship_requests SET
				status = $1,
				responded_at = $2
			WHERE id = $3
		`,
			string(request.Status),
			request.RespondedAt,
			request.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}

		return nil
	})
}

// FindPendingByPair returns the open request of the pair, if any.
func (r *MentorshipRepository) FindPendingByPair(ctx context.Context, seekerID, candidateID shared.PartyID) (*mentorship.Request, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM mentorship_requests
		WHERE seeker_id = $1 AND candidate_id = $2 AND status = 'pending'
	`, requestColumns)

	row := r.conn.QueryRow(ctx, query, seekerID.String(), candidateID.String())
	return r.scanRequest(row)
}

// ListForParty returns the requests of a party in the given role, newest first.
func (r *MentorshipRepository) ListForParty(ctx context.Context, partyID shared.PartyID, role mentorship.Role, opts mentorship.ListOptions) ([]*mentorship.Request, error) {
	column := "seeker_id"
	if role == mentorship.RoleCandidate {
		column = "candidate_id"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM mentorship_requests
		WHERE %s = $1
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, requestColumns, column)

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.conn.Query(ctx, query, partyID.String(), string(opts.Status), limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*mentorship.Request, 0)
	for rows.Next() {
		request, err := r.scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}

	return requests, rows.Err()
}

// CountPendingForCandidate returns the number of open incoming requests.
func (r *MentorshipRepository) CountPendingForCandidate(ctx context.Context, candidateID shared.PartyID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM mentorship_requests
		WHERE candidate_id = $1 AND status = 'pending'
	`

	var count int
	if err := r.conn.QueryRow(ctx, query, candidateID.String()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending requests: %w", err)
	}

	return count, nil
}

func (r *MentorshipRepository) scanRequest(row pgx.Row) (*mentorship.Request, error) {
	var request mentorship.Request
	var seekerID, candidateID, status string

	err := row.Scan(
		&request.ID,
		&seekerID,
		&candidateID,
		&status,
		&request.CreatedAt,
		&request.RespondedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to scan request: %w", err)
	}

	request.SeekerID = shared.PartyID(seekerID)
	request.CandidateID = shared.PartyID(candidateID)
	request.Status = mentorship.Status(status)
	return &request, nil
}
