package ledger

import (
	"reflect"
	"testing"
)

func TestNet(t *testing.T) {
	tests := []struct {
		name     string
		balances []Balance
		want     []Transfer
		wantErr  error
	}{
		{
			name: "single creditor, two debtors",
			balances: []Balance{
				{"A", 20000}, {"B", -10000}, {"C", -10000},
			},
			want: []Transfer{
				{From: "B", To: "A", Amount: 10000},
				{From: "C", To: "A", Amount: 10000},
			},
		},
		{
			name: "chain collapses to direct transfers",
			// A owes B, B owes C; greedy pairing routes A straight to C.
			balances: []Balance{
				{"A", -500}, {"B", 0}, {"C", 500},
			},
			want: []Transfer{
				{From: "A", To: "C", Amount: 500},
			},
		},
		{
			name: "largest creditor paired with largest debtor first",
			balances: []Balance{
				{"A", 700}, {"B", 300}, {"C", -600}, {"D", -400},
			},
			want: []Transfer{
				{From: "C", To: "A", Amount: 600},
				{From: "D", To: "B", Amount: 300},
				{From: "D", To: "A", Amount: 100},
			},
		},
		{
			name: "equal balances break ties by ascending member id",
			balances: []Balance{
				{"D", -100}, {"B", 100}, {"C", -100}, {"A", 100},
			},
			want: []Transfer{
				{From: "C", To: "A", Amount: 100},
				{From: "D", To: "B", Amount: 100},
			},
		},
		{
			name:     "all settled yields no transfers",
			balances: []Balance{{"A", 0}, {"B", 0}},
			want:     nil,
		},
		{
			name:     "empty group",
			balances: nil,
			want:     nil,
		},
		{
			name:     "unbalanced input is rejected",
			balances: []Balance{{"A", 100}, {"B", -50}},
			wantErr:  ErrUnbalanced,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Net(tt.balances)
			if err != tt.wantErr {
				t.Fatalf("Net() error = %v, want %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Net() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNetMinimality(t *testing.T) {
	balances := []Balance{
		{"A", 1250}, {"B", -300}, {"C", -950}, {"D", 700}, {"E", -700},
	}
	transfers, err := Net(balances)
	if err != nil {
		t.Fatalf("Net() error = %v", err)
	}
	nonZero := 0
	for _, b := range balances {
		if b.Net != 0 {
			nonZero++
		}
	}
	if len(transfers) > nonZero-1 {
		t.Errorf("Net() produced %d transfers for %d non-zero balances, want at most %d",
			len(transfers), nonZero, nonZero-1)
	}

	// Applying the suggested transfers must zero every balance.
	remaining := make(map[string]int64, len(balances))
	for _, b := range balances {
		remaining[b.MemberID] = b.Net
	}
	for _, tr := range transfers {
		if tr.Amount <= 0 {
			t.Errorf("transfer %v has non-positive amount", tr)
		}
		remaining[tr.From] += tr.Amount
		remaining[tr.To] -= tr.Amount
	}
	for id, net := range remaining {
		if net != 0 {
			t.Errorf("member %s left with balance %d after applying transfers", id, net)
		}
	}
}

func TestNetDeterministic(t *testing.T) {
	balances := []Balance{
		{"A", 400}, {"B", -150}, {"C", 350}, {"D", -600}, {"E", 0},
	}
	first, err := Net(balances)
	if err != nil {
		t.Fatalf("Net() error = %v", err)
	}
	// Net mutates local copies only; a second run over the same input must
	// produce an identical sequence.
	second, err := Net(balances)
	if err != nil {
		t.Fatalf("Net() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated netting differs:\n%v\n%v", first, second)
	}
}

func TestOutstandingBetween(t *testing.T) {
	transfers := []Transfer{
		{From: "B", To: "A", Amount: 10000},
		{From: "C", To: "A", Amount: 2500},
	}

	if got := OutstandingBetween(transfers, "B", "A"); got != 10000 {
		t.Errorf("OutstandingBetween(B, A) = %d, want 10000", got)
	}
	if got := OutstandingBetween(transfers, "A", "B"); got != 0 {
		t.Errorf("OutstandingBetween(A, B) = %d, want 0 for reversed direction", got)
	}
	if got := OutstandingBetween(transfers, "B", "C"); got != 0 {
		t.Errorf("OutstandingBetween(B, C) = %d, want 0 for missing edge", got)
	}
}
