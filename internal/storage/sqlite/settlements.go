package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"splitledger/internal/models"
	"splitledger/internal/storage"
)

const settlementColumns = `id, group_id, from_member_id, to_member_id, amount, status, created_by, COALESCE(note, ''), created_at, COALESCE(resolved_at, 0)`

// CreateSettlement inserts a new PENDING settlement request. The partial
// unique index translates a concurrent duplicate into ErrDuplicatePending
// instead of a second record.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, req *models.SettlementRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.CreatedAt == 0 {
		req.CreatedAt = time.Now().Unix()
	}
	if req.Status == "" {
		req.Status = models.StatusPending
	}

	var note any
	if req.Note != "" {
		note = req.Note
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlements (id, group_id, from_member_id, to_member_id, amount, status, created_by, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.GroupID, req.FromMemberID, req.ToMemberID, req.Amount, string(req.Status), req.CreatedBy, note, req.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return storage.ErrDuplicatePending
		}
		return fmt.Errorf("failed to insert settlement: %w", err)
	}
	return nil
}

// GetSettlement retrieves a settlement by id.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.SettlementRequest, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE id = ?",
		settlementID,
	)
	req, err := scanSettlement(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return req, nil
}

// FindPendingSettlement returns the PENDING request matching the exact
// (from, to, amount) triple, or ErrNotFound.
func (s *SQLiteStore) FindPendingSettlement(ctx context.Context, groupID, fromID, toID string, amount int64) (*models.SettlementRequest, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+settlementColumns+` FROM settlements
		 WHERE group_id = ? AND from_member_id = ? AND to_member_id = ? AND amount = ? AND status = 'PENDING'`,
		groupID, fromID, toID, amount,
	)
	req, err := scanSettlement(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pending settlement: %w", err)
	}
	return req, nil
}

// ListSettlementsByGroup returns the group's settlements with any of the
// given statuses, newest first.
func (s *SQLiteStore) ListSettlementsByGroup(ctx context.Context, groupID string, statuses ...models.SettlementStatus) ([]*models.SettlementRequest, error) {
	query := "SELECT " + settlementColumns + " FROM settlements WHERE group_id = ?"
	args := []any{groupID}
	if len(statuses) > 0 {
		query += " AND status IN (?" + strings.Repeat(", ?", len(statuses)-1) + ")"
		for _, st := range statuses {
			args = append(args, string(st))
		}
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var out []*models.SettlementRequest
	for rows.Next() {
		req, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return out, nil
}

// TransitionSettlement performs the compare-and-swap out of PENDING.
// The WHERE clause on the current status makes the update atomic: of two
// racing transitions exactly one matches a row, the other sees zero rows
// affected and reports false.
func (s *SQLiteStore) TransitionSettlement(ctx context.Context, settlementID string, to models.SettlementStatus, resolvedAt int64) (bool, error) {
	if !to.Terminal() {
		return false, fmt.Errorf("invalid target status: %s", to)
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE settlements SET status = ?, resolved_at = ? WHERE id = ? AND status = 'PENDING'",
		string(to), resolvedAt, settlementID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to transition settlement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check transition result: %w", err)
	}
	return n == 1, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSettlement(row scanner) (*models.SettlementRequest, error) {
	req := &models.SettlementRequest{}
	var status string
	err := row.Scan(&req.ID, &req.GroupID, &req.FromMemberID, &req.ToMemberID,
		&req.Amount, &status, &req.CreatedBy, &req.Note, &req.CreatedAt, &req.ResolvedAt)
	if err != nil {
		return nil, err
	}
	req.Status = models.SettlementStatus(status)
	return req, nil
}
