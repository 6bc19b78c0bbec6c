// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"splitledger/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("storage: not found")

// ErrDuplicatePending is returned when inserting a settlement would violate
// the one-pending-per-(from, to, amount) invariant. Callers treat it as a
// signal to return the already existing pending request.
var ErrDuplicatePending = errors.New("storage: pending settlement already exists for this pair and amount")

// Store defines persistence for the ledger core and its collaborators.
// The abstraction allows swapping the backing database (SQLite, PostgreSQL)
// without touching the service layer.
type Store interface {
	// CreateUser persists a new account.
	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByEmail returns the user with the given email, or ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID returns the user with the given id, or ErrNotFound.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// CreateGroup persists a group together with its initial roster.
	// The group ID is generated if unset.
	CreateGroup(ctx context.Context, group *models.Group, members []models.Member) error
	// GetGroup returns a group by id, or ErrNotFound.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	// ListMembers returns the full roster of a group, active and former,
	// ordered by member id.
	ListMembers(ctx context.Context, groupID string) ([]models.Member, error)

	// CreateTransaction persists a shared transaction with its shares.
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	// ListTransactionsByGroup returns all transactions of a group, oldest first.
	ListTransactionsByGroup(ctx context.Context, groupID string) ([]*models.Transaction, error)
	// DeleteTransaction removes a transaction, or returns ErrNotFound.
	DeleteTransaction(ctx context.Context, groupID, txID string) error

	// CreateSettlement inserts a new PENDING settlement request. Returns
	// ErrDuplicatePending when an equal pending request already exists.
	CreateSettlement(ctx context.Context, s *models.SettlementRequest) error
	// GetSettlement returns a settlement by id, or ErrNotFound.
	GetSettlement(ctx context.Context, settlementID string) (*models.SettlementRequest, error)
	// FindPendingSettlement returns the pending request matching the exact
	// (from, to, amount) triple, or ErrNotFound.
	FindPendingSettlement(ctx context.Context, groupID, fromID, toID string, amount int64) (*models.SettlementRequest, error)
	// ListSettlementsByGroup returns the group's settlements with any of the
	// given statuses (all statuses when none given), newest first.
	ListSettlementsByGroup(ctx context.Context, groupID string, statuses ...models.SettlementStatus) ([]*models.SettlementRequest, error)
	// TransitionSettlement atomically moves a settlement out of PENDING.
	// It reports false when the settlement was not PENDING anymore — the
	// compare-and-swap that keeps concurrent confirms from double-applying.
	TransitionSettlement(ctx context.Context, settlementID string, to models.SettlementStatus, resolvedAt int64) (bool, error)

	// Close releases any resources held by the store.
	Close() error
}
