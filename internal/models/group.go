package models

// Group is a roster of members who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Name is the display name of the group.
	Name string `json:"name"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"created_at"`
}

// Member is one entry in a group's roster. Membership is owned by the
// roster collaborator; the ledger only needs the id, a display name and
// whether the member is still active. A member who left still owns their
// historical share of prior transactions, so former members are never
// filtered out of balance computations, only labeled.
type Member struct {
	// MemberID identifies the member (the user id of the account holder).
	MemberID string `json:"member_id"`

	// DisplayName is the name shown next to balances.
	DisplayName string `json:"display_name"`

	// JoinedAt is the Unix timestamp when the member joined the group.
	JoinedAt int64 `json:"joined_at"`

	// LeftAt is the Unix timestamp when the member left, or 0 while active.
	LeftAt int64 `json:"left_at,omitempty"`
}

// Active reports whether the member is still part of the group roster.
func (m Member) Active() bool {
	return m.LeftAt == 0
}
