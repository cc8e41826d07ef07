// Package postgres implements PostgreSQL persistence layer for CyberMatch Hub.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cybermatch/cybermatch-hub/internal/domain/profile"
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE STORE IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ProfileRepository implements profile.Store for PostgreSQL.
type ProfileRepository struct {
	conn *Connection
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(conn *Connection) *ProfileRepository {
	return &ProfileRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Seekers
// ─────────────────────────────────────────────────────────────────────────────

// GetSeeker returns a seeker profile by ID.
func (r *ProfileRepository) GetSeeker(ctx context.Context, id shared.PartyID) (*profile.Seeker, error) {
	query := `
		SELECT id, display_name, desired_skills, target_roles, experience_level,
			   location, learning_goal, created_at, updated_at
		FROM seekers
		WHERE id = $1
	`

	row := r.conn.QueryRow(ctx, query, id.String())
	return r.scanSeeker(row)
}

// UpsertSeeker creates or replaces a seeker profile.
func (r *ProfileRepository) UpsertSeeker(ctx context.Context, s *profile.Seeker) error {
	query := `
		INSERT INTO seekers (
			id, display_name, desired_skills, target_roles, experience_level,
			location, learning_goal, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			desired_skills = EXCLUDED.desired_skills,
			target_roles = EXCLUDED.target_roles,
			experience_level = EXCLUDED.experience_level,
			location = EXCLUDED.location,
			learning_goal = EXCLUDED.learning_goal
	`

	_, err := r.conn.Exec(ctx, query,
		s.ID.String(),
		s.DisplayName,
		s.DesiredSkills,
		s.TargetRoles,
		int(s.Experience),
		s.Location,
		s.LearningGoal,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert seeker: %w", err)
	}

	return nil
}

func (r *ProfileRepository) scanSeeker(row pgx.Row) (*profile.Seeker, error) {
	var s profile.Seeker
	var id string
	var experience int

	err := row.Scan(
		&id,
		&s.DisplayName,
		&s.DesiredSkills,
		&s.TargetRoles,
		&experience,
		&s.Location,
		&s.LearningGoal,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrSeekerNotFound
		}
		return nil, fmt.Errorf("failed to scan seeker: %w", err)
	}

	s.ID = shared.PartyID(id)
	s.Experience = profile.ExperienceLevel(experience)
	return &s, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Candidates
// ─────────────────────────────────────────────────────────────────────────────

const candidateColumns = `id, display_name, skills, roles, experience_level,
	   location, hourly_rate, weekly_hours, verified, active, created_at, updated_at`

// GetCandidate returns a candidate profile by ID.
func (r *ProfileRepository) GetCandidate(ctx context.Context, id shared.PartyID) (*profile.Candidate, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM candidates
		WHERE id = $1
	`, candidateColumns)

	row := r.conn.QueryRow(ctx, query, id.String())
	return r.scanCandidate(row)
}

// UpsertCandidate creates or replaces a candidate profile.
func (r *ProfileRepository) UpsertCandidate(ctx context.Context, c *profile.Candidate) error {
	query := `
		INSERT INTO candidates (
			id, display_name, skills, roles, experience_level,
			location, hourly_rate, weekly_hours, verified, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			skills = EXCLUDED.skills,
			roles = EXCLUDED.roles,
			experience_level = EXCLUDED.experience_level,
			location = EXCLUDED.location,
			hourly_rate = EXCLUDED.hourly_rate,
			weekly_hours = EXCLUDED.weekly_hours,
			verified = EXCLUDED.verified,
			active = EXCLUDED.active
	`

	_, err := r.conn.Exec(ctx, query,
		c.ID.String(),
		c.DisplayName,
		c.Skills,
		c.Roles,
		int(c.Experience),
		c.Location,
		c.HourlyRate,
		c.WeeklyHours,
		c.Verified,
		c.Active,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert candidate: %w", err)
	}

	return nil
}

// ListEligibleCandidates returns verified, active candidates matching the filter.
func (r *ProfileRepository) ListEligibleCandidates(ctx context.Context, filter profile.CandidateFilter) ([]*profile.Candidate, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM candidates
		WHERE verified AND active
		  AND ($1 = '' OR location = $1)
		  AND ($2 = '' OR LOWER(display_name) LIKE '%%' || LOWER($2) || '%%')
		ORDER BY created_at
	`, candidateColumns)

	args := []interface{}{filter.Location, filter.NameQuery}
	if filter.Limit > 0 {
		query += " LIMIT $3"
		args = append(args, filter.Limit)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	candidates := make([]*profile.Candidate, 0)
	for rows.Next() {
		c, err := r.scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}

	return candidates, rows.Err()
}

func (r *ProfileRepository) scanCandidate(row pgx.Row) (*profile.Candidate, error) {
	var c profile.Candidate
	var id string
	var experience int

	err := row.Scan(
		&id,
		&c.DisplayName,
		&c.Skills,
		&c.Roles,
		&experience,
		&c.Location,
		&c.HourlyRate,
		&c.WeeklyHours,
		&c.Verified,
		&c.Active,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrCandidateNotFound
		}
		return nil, fmt.Errorf("failed to scan candidate: %w", err)
	}

	c.ID = shared.PartyID(id)
	c.Experience = profile.ExperienceLevel(experience)
	return &c, nil
}
