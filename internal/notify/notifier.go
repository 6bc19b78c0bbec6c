// Package notify is the change-notification side of the settlement core.
//
// Delivery is best effort: clients poll for state anyway, and the store's
// compare-and-swap transitions are what guarantee correctness. A lost event
// only delays a refresh, so no implementation is allowed to surface its
// failures to the caller.
package notify

import (
	"context"
	"log/slog"
	"time"
)

// Kind labels what happened to a settlement.
type Kind string

const (
	KindCreated   Kind = "created"
	KindConfirmed Kind = "confirmed"
	KindRejected  Kind = "rejected"
)

// Event announces that a group's settlement state changed. Consumers react
// by re-querying the ledger view, never by applying the event itself.
type Event struct {
	GroupID      string    `json:"group_id"`
	SettlementID string    `json:"settlement_id"`
	Kind         Kind      `json:"kind"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Notifier fans out settlement change events. Implementations must not
// block on slow consumers and must not return delivery errors upstream.
type Notifier interface {
	SettlementChanged(ctx context.Context, e Event)
}

// LogNotifier is the fallback implementation: it only logs the event.
// Polling clients still converge, just without the early nudge.
type LogNotifier struct{}

// SettlementChanged logs the event at debug level.
func (LogNotifier) SettlementChanged(_ context.Context, e Event) {
	slog.Debug("settlement state changed",
		"group_id", e.GroupID,
		"settlement_id", e.SettlementID,
		"kind", string(e.Kind),
	)
}
