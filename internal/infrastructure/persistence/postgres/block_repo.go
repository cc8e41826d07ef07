// Package postgres implements PostgreSQL persistence layer for CyberMatch Hub.
package postgres

import (
	"context"
	"fmt"

	"github.com/cybermatch/cybermatch-hub/internal/domain/block"
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// BLOCK REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// BlockRepository implements block.Repository for PostgreSQL.
// Rows are directed (blocker → blocked); symmetric reads probe both
// directions in one query.
type BlockRepository struct {
	conn *Connection
}

// NewBlockRepository creates a new BlockRepository.
func NewBlockRepository(conn *Connection) *BlockRepository {
	return &BlockRepository{conn: conn}
}

// Insert stores a block relation. Re-inserting an existing one is a no-op.
func (r *BlockRepository) Insert(ctx context.Context, relation *block.Relation) error {
	query := `
		INSERT INTO blocks (blocker_id, blocked_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (blocker_id, blocked_id) DO NOTHING
	`

	_, err := r.conn.Exec(ctx, query,
		relation.BlockerID.String(),
		relation.BlockedID.String(),
		relation.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert block: %w", err)
	}

	return nil
}

// Delete removes the directed relation. Deleting a missing one is a no-op.
func (r *BlockRepository) Delete(ctx context.Context, blockerID, blockedID shared.PartyID) error {
	query := `DELETE FROM blocks WHERE blocker_id = $1 AND blocked_id = $2`

	if _, err := r.conn.Exec(ctx, query, blockerID.String(), blockedID.String()); err != nil {
		return fmt.Errorf("failed to delete block: %w", err)
	}

	return nil
}

// ExistsBetween reports whether either party blocked the other.
func (r *BlockRepository) ExistsBetween(ctx context.Context, a, b shared.PartyID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM blocks
			WHERE (blocker_id = $1 AND blocked_id = $2)
			   OR (blocker_id = $2 AND blocked_id = $1)
		)
	`

	var exists bool
	if err := r.conn.QueryRow(ctx, query, a.String(), b.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check block: %w", err)
	}

	return exists, nil
}

// ListInvolving returns all relations a party participates in.
func (r *BlockRepository) ListInvolving(ctx context.Context, partyID shared.PartyID) ([]*block.Relation, error) {
	query := `
		SELECT blocker_id, blocked_id, created_at
		FROM blocks
		WHERE blocker_id = $1 OR blocked_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.conn.Query(ctx, query, partyID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query blocks: %w", err)
	}
	defer rows.Close()

	relations := make([]*block.Relation, 0)
	for rows.Next() {
		var relation block.Relation
		var blockerID, blockedID string

		if err := rows.Scan(&blockerID, &blockedID, &relation.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan block: %w", err)
		}

		relation.BlockerID = shared.PartyID(blockerID)
		relation.BlockedID = shared.PartyID(blockedID)
		relations = append(relations, &relation)
	}

	return relations, rows.Err()
}
