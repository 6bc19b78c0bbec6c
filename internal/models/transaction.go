package models

// Participant is one member's share of a shared transaction.
type Participant struct {
	// MemberID identifies the member who owes this share.
	MemberID string `json:"member_id"`

	// Share is this member's portion of the transaction amount, in minor
	// units. Shares of a valid transaction sum exactly to the amount.
	Share int64 `json:"share_cents"`
}

// Transaction is a shared expense (or income, with the payer being the
// recipient) recorded against a group. Transactions are created and edited
// by the transaction CRUD collaborator; the settlement core consumes them
// read-only.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string `json:"id"`

	// GroupID is the group this transaction belongs to.
	GroupID string `json:"group_id"`

	// PayerID is the member who paid the full amount.
	PayerID string `json:"payer_id"`

	// Amount is the full transaction amount in minor units. Always positive.
	Amount int64 `json:"amount_cents"`

	// Participants lists who owes which share of the amount.
	Participants []Participant `json:"participants"`

	// Note is an optional free-form description.
	Note string `json:"note,omitempty"`

	// CreatedAt is the Unix timestamp when the transaction was recorded.
	CreatedAt int64 `json:"created_at"`
}
