package models

// SettlementStatus is the lifecycle state of a settlement request.
// PENDING is the only non-terminal state: a request exits it exactly once,
// into CONFIRMED or REJECTED, and terminal records are immutable.
type SettlementStatus string

const (
	StatusPending   SettlementStatus = "PENDING"
	StatusConfirmed SettlementStatus = "CONFIRMED"
	StatusRejected  SettlementStatus = "REJECTED"
)

// Terminal reports whether the status admits no further transitions.
func (s SettlementStatus) Terminal() bool {
	return s == StatusConfirmed || s == StatusRejected
}

// SettlementRequest records a real-world payment proposed to reduce an
// outstanding debt. Either party may create one; only the creditor
// (ToMemberID) may confirm or reject it. A confirmed settlement becomes a
// permanent input to balance aggregation; a rejected one changes nothing
// and the same debt may be re-proposed later.
type SettlementRequest struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string `json:"id"`

	// GroupID is the group this settlement belongs to.
	GroupID string `json:"group_id"`

	// FromMemberID is the debtor: the member who paid (or claims to have).
	FromMemberID string `json:"from_member_id"`

	// ToMemberID is the creditor: the member who received the payment.
	// Only this side may confirm or reject the request.
	ToMemberID string `json:"to_member_id"`

	// Amount is the settled amount in minor units. Always positive, and at
	// creation time never more than the pair's outstanding netted debt.
	Amount int64 `json:"amount_cents"`

	// Status is PENDING until the creditor resolves the request.
	Status SettlementStatus `json:"status"`

	// CreatedBy is the member who proposed the settlement.
	CreatedBy string `json:"created_by"`

	// Note is an optional description ("paid cash at dinner").
	Note string `json:"note,omitempty"`

	// CreatedAt is the Unix timestamp when the request was created.
	CreatedAt int64 `json:"created_at"`

	// ResolvedAt is the Unix timestamp of the confirm/reject, 0 while pending.
	ResolvedAt int64 `json:"resolved_at,omitempty"`
}
