package ledger

import "errors"

// ErrUnbalanced signals that the balance vector does not sum to zero.
// Under the closed-ledger invariant this cannot happen for valid input and
// indicates an aggregator bug, so it is an internal error, never shown to
// users as their own mistake.
var ErrUnbalanced = errors.New("ledger: balances do not sum to zero")

// Transfer is one suggested payment that reduces the group's debt web.
type Transfer struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int64  `json:"amount_cents"`
}

// Net reduces a balance vector to a minimal list of directed transfers
// using greedy debt simplification: repeatedly match the creditor with the
// largest positive balance against the debtor with the largest debt,
// transfer the smaller of the two magnitudes, and drop whichever side
// reaches zero. Ties are broken by ascending member id, which makes the
// output deterministic, and every transfer retires at least one member, so
// at most N-1 transfers are produced for N non-zero balances.
func Net(balances []Balance) ([]Transfer, error) {
	var creditors, debtors []Balance
	var sum int64
	for _, b := range balances {
		sum += b.Net
		switch {
		case b.Net > 0:
			creditors = append(creditors, b)
		case b.Net < 0:
			debtors = append(debtors, b)
		}
	}
	if sum != 0 {
		return nil, ErrUnbalanced
	}

	var transfers []Transfer
	for len(creditors) > 0 && len(debtors) > 0 {
		ci := largestCreditor(creditors)
		di := largestDebtor(debtors)

		amount := creditors[ci].Net
		if owed := -debtors[di].Net; owed < amount {
			amount = owed
		}

		transfers = append(transfers, Transfer{
			From:   debtors[di].MemberID,
			To:     creditors[ci].MemberID,
			Amount: amount,
		})

		creditors[ci].Net -= amount
		debtors[di].Net += amount
		if creditors[ci].Net == 0 {
			creditors = append(creditors[:ci], creditors[ci+1:]...)
		}
		if debtors[di].Net == 0 {
			debtors = append(debtors[:di], debtors[di+1:]...)
		}
	}
	return transfers, nil
}

// largestCreditor returns the index of the creditor with the largest
// positive balance, ties broken by ascending member id.
func largestCreditor(creditors []Balance) int {
	best := 0
	for i := 1; i < len(creditors); i++ {
		if creditors[i].Net > creditors[best].Net ||
			(creditors[i].Net == creditors[best].Net && creditors[i].MemberID < creditors[best].MemberID) {
			best = i
		}
	}
	return best
}

// largestDebtor returns the index of the debtor owing the most, ties
// broken by ascending member id.
func largestDebtor(debtors []Balance) int {
	best := 0
	for i := 1; i < len(debtors); i++ {
		if debtors[i].Net < debtors[best].Net ||
			(debtors[i].Net == debtors[best].Net && debtors[i].MemberID < debtors[best].MemberID) {
			best = i
		}
	}
	return best
}

// OutstandingBetween returns the netted debt from one member to another,
// or zero if the current transfer suggestions contain no edge between
// them. Settlement creation validates its amount against this value.
func OutstandingBetween(transfers []Transfer, from, to string) int64 {
	for _, t := range transfers {
		if t.From == from && t.To == to {
			return t.Amount
		}
	}
	return 0
}
