package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"splitledger/internal/models"
	"splitledger/internal/storage"
)

// CreateTransaction persists a shared transaction and its shares.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var note any
	if t.Note != "" {
		note = t.Note
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO transactions (id, group_id, payer_id, amount, note, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		t.ID, t.GroupID, t.PayerID, t.Amount, note, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	for _, p := range t.Participants {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO transaction_shares (transaction_id, member_id, share) VALUES (?, ?, ?)",
			t.ID, p.MemberID, p.Share,
		)
		if err != nil {
			return fmt.Errorf("failed to insert share: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListTransactionsByGroup returns all transactions of a group with their
// shares, oldest first, shares ordered by member id.
func (s *SQLiteStore) ListTransactionsByGroup(ctx context.Context, groupID string) ([]*models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, payer_id, amount, COALESCE(note, ''), created_at
		 FROM transactions WHERE group_id = ? ORDER BY created_at, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*models.Transaction
	for rows.Next() {
		t := &models.Transaction{}
		if err := rows.Scan(&t.ID, &t.GroupID, &t.PayerID, &t.Amount, &t.Note, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	for _, t := range txs {
		shareRows, err := s.db.QueryContext(ctx,
			"SELECT member_id, share FROM transaction_shares WHERE transaction_id = ? ORDER BY member_id",
			t.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to get shares: %w", err)
		}
		for shareRows.Next() {
			var p models.Participant
			if err := shareRows.Scan(&p.MemberID, &p.Share); err != nil {
				shareRows.Close()
				return nil, fmt.Errorf("failed to scan share: %w", err)
			}
			t.Participants = append(t.Participants, p)
		}
		shareRows.Close()
		if err := shareRows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate shares: %w", err)
		}
	}
	return txs, nil
}

// DeleteTransaction removes a transaction belonging to the given group.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, groupID, txID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE id = ? AND group_id = ?",
		txID, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
