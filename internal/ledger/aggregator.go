// Package ledger implements the pure computation core: balance aggregation
// over shared transactions plus confirmed settlements, and greedy debt
// netting. Everything here is stateless and deterministic — any number of
// callers may run these functions concurrently over the same snapshot.
package ledger

import (
	"log/slog"
	"sort"
)

// TransactionInput carries the minimal transaction data needed for balance
// aggregation.
type TransactionInput struct {
	ID      string
	PayerID string
	Amount  int64 // minor units, must be positive
	Shares  []Share
}

// Share is one participant's portion of a transaction amount.
type Share struct {
	MemberID string
	Amount   int64
}

// SettlementInput is a confirmed settlement applied as a transfer that
// cancels part of the existing imbalance.
type SettlementInput struct {
	FromMemberID string
	ToMemberID   string
	Amount       int64
}

// Balance is one member's net position. Positive means the member is owed
// money, negative means the member owes money.
type Balance struct {
	MemberID string
	Net      int64
}

// BalanceSheet is the aggregation result. Entries are sorted by member id
// so repeated runs over the same input are bit-identical. Partial is set
// when malformed transactions had to be skipped; the balances then cover
// only the valid remainder and the UI should flag them as incomplete.
type BalanceSheet struct {
	Balances []Balance
	Skipped  int
	Partial  bool
}

// Sum returns the total of all net balances. For a closed ledger this is
// exactly zero.
func (s BalanceSheet) Sum() int64 {
	var total int64
	for _, b := range s.Balances {
		total += b.Net
	}
	return total
}

// Aggregate computes the net balance vector for a group from its shared
// transactions and confirmed settlements.
//
// Each transaction credits the payer by the full amount and debits every
// participant by their share. Each confirmed settlement credits the debtor
// and debits the creditor by the settled amount, canceling part of the
// imbalance. A malformed transaction (non-positive amount, unknown member,
// shares not summing to the amount) is skipped with a logged warning rather
// than aborting the computation; the result is marked partial.
func Aggregate(memberIDs []string, txs []TransactionInput, settled []SettlementInput) BalanceSheet {
	known := make(map[string]bool, len(memberIDs))
	net := make(map[string]int64, len(memberIDs))
	for _, id := range memberIDs {
		known[id] = true
		net[id] = 0
	}

	sheet := BalanceSheet{}
	for _, tx := range txs {
		if reason := validate(tx, known); reason != "" {
			slog.Warn("skipping malformed transaction", "transaction_id", tx.ID, "reason", reason)
			sheet.Skipped++
			continue
		}
		net[tx.PayerID] += tx.Amount
		for _, sh := range tx.Shares {
			net[sh.MemberID] -= sh.Amount
		}
	}

	for _, s := range settled {
		// A settled debtor paid real money, so their computed debt shrinks;
		// the creditor was paid, so what they are owed shrinks by the same.
		net[s.FromMemberID] += s.Amount
		net[s.ToMemberID] -= s.Amount
	}

	sheet.Partial = sheet.Skipped > 0

	sheet.Balances = make([]Balance, 0, len(net))
	for id, n := range net {
		sheet.Balances = append(sheet.Balances, Balance{MemberID: id, Net: n})
	}
	sort.Slice(sheet.Balances, func(i, j int) bool {
		return sheet.Balances[i].MemberID < sheet.Balances[j].MemberID
	})
	return sheet
}

// validate returns an empty string for a well-formed transaction, or a
// short reason for the log when it must be skipped.
func validate(tx TransactionInput, known map[string]bool) string {
	if tx.Amount <= 0 {
		return "non-positive amount"
	}
	if !known[tx.PayerID] {
		return "unknown payer"
	}
	if len(tx.Shares) == 0 {
		return "no participants"
	}
	var sum int64
	for _, sh := range tx.Shares {
		if sh.Amount < 0 {
			return "negative share"
		}
		if !known[sh.MemberID] {
			return "unknown participant"
		}
		sum += sh.Amount
	}
	if sum != tx.Amount {
		return "shares do not sum to amount"
	}
	return ""
}
