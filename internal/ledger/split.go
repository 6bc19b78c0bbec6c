package ledger

// SplitEvenly divides a total across the given members in insertion order.
// Division may leave remainder cents; the leftover is assigned to the
// payer's own share so the shares still sum to the total exactly. When the
// payer is not among the participants the leftover goes to the participant
// with the lowest member id instead (first occurrence wins on duplicates),
// keeping the split deterministic.
func SplitEvenly(total int64, payerID string, memberIDs []string) []Share {
	n := int64(len(memberIDs))
	if n == 0 {
		return nil
	}
	base := total / n
	remainder := total - base*n

	shares := make([]Share, len(memberIDs))
	extra := -1
	lowest := -1
	for i, id := range memberIDs {
		shares[i] = Share{MemberID: id, Amount: base}
		if id == payerID && extra == -1 {
			extra = i
		}
		if lowest == -1 || id < memberIDs[lowest] {
			lowest = i
		}
	}
	if extra == -1 {
		extra = lowest
	}
	shares[extra].Amount += remainder
	return shares
}
