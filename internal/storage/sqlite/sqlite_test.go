package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"splitledger/internal/models"
	"splitledger/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedGroup(t *testing.T, store *SQLiteStore, memberIDs ...string) *models.Group {
	t.Helper()
	group := &models.Group{Name: "trip"}
	members := make([]models.Member, 0, len(memberIDs))
	for _, id := range memberIDs {
		members = append(members, models.Member{MemberID: id, DisplayName: "member " + id})
	}
	if err := store.CreateGroup(context.Background(), group, members); err != nil {
		t.Fatalf("failed to seed group: %v", err)
	}
	return group
}

func TestUserRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("alice@example.com", "Alice", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if byEmail.ID != user.ID || byEmail.DisplayName != "Alice" {
		t.Errorf("GetUserByEmail() = %+v, want id %s", byEmail, user.ID)
	}

	byID, err := store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if byID.Email != user.Email {
		t.Errorf("GetUserByID() email = %s, want %s", byID.Email, user.Email)
	}

	if _, err := store.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetUserByEmail(missing) error = %v, want ErrNotFound", err)
	}
}

func TestGroupAndMembers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := &models.Group{Name: "flat"}
	members := []models.Member{
		{MemberID: "u2", DisplayName: "Bob"},
		{MemberID: "u1", DisplayName: "Alice"},
		{MemberID: "u3", DisplayName: "Carol", LeftAt: 1700000000},
	}
	if err := store.CreateGroup(ctx, group, members); err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	if group.ID == "" || group.CreatedAt == 0 {
		t.Fatalf("CreateGroup() did not fill id/created_at: %+v", group)
	}

	got, err := store.GetGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetGroup() error = %v", err)
	}
	if got.Name != "flat" {
		t.Errorf("GetGroup() name = %s, want flat", got.Name)
	}

	roster, err := store.ListMembers(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListMembers() error = %v", err)
	}
	if len(roster) != 3 {
		t.Fatalf("ListMembers() returned %d members, want 3", len(roster))
	}
	// Ordered by member id regardless of insertion order.
	for i, want := range []string{"u1", "u2", "u3"} {
		if roster[i].MemberID != want {
			t.Errorf("roster[%d] = %s, want %s", i, roster[i].MemberID, want)
		}
	}
	if !roster[0].Active() || roster[2].Active() {
		t.Errorf("active flags wrong: u1 active=%v, u3 active=%v", roster[0].Active(), roster[2].Active())
	}

	if _, err := store.GetGroup(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetGroup(missing) error = %v, want ErrNotFound", err)
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := seedGroup(t, store, "u1", "u2", "u3")

	tx := &models.Transaction{
		GroupID: group.ID,
		PayerID: "u1",
		Amount:  30000,
		Note:    "groceries",
		Participants: []models.Participant{
			{MemberID: "u1", Share: 10000},
			{MemberID: "u2", Share: 10000},
			{MemberID: "u3", Share: 10000},
		},
	}
	if err := store.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	txs, err := store.ListTransactionsByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListTransactionsByGroup() error = %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("ListTransactionsByGroup() returned %d transactions, want 1", len(txs))
	}
	got := txs[0]
	if got.PayerID != "u1" || got.Amount != 30000 || got.Note != "groceries" {
		t.Errorf("unexpected transaction: %+v", got)
	}
	if len(got.Participants) != 3 {
		t.Fatalf("transaction has %d shares, want 3", len(got.Participants))
	}
	var sum int64
	for _, p := range got.Participants {
		sum += p.Share
	}
	if sum != got.Amount {
		t.Errorf("shares sum to %d, want %d", sum, got.Amount)
	}

	if err := store.DeleteTransaction(ctx, group.ID, tx.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	if err := store.DeleteTransaction(ctx, group.ID, tx.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second DeleteTransaction() error = %v, want ErrNotFound", err)
	}
}

func TestSettlementLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := seedGroup(t, store, "u1", "u2")

	req := &models.SettlementRequest{
		GroupID:      group.ID,
		FromMemberID: "u2",
		ToMemberID:   "u1",
		Amount:       10000,
		CreatedBy:    "u2",
		Note:         "paid cash",
	}
	if err := store.CreateSettlement(ctx, req); err != nil {
		t.Fatalf("CreateSettlement() error = %v", err)
	}
	if req.ID == "" || req.Status != models.StatusPending {
		t.Fatalf("CreateSettlement() did not fill defaults: %+v", req)
	}

	got, err := store.GetSettlement(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetSettlement() error = %v", err)
	}
	if got.Status != models.StatusPending || got.Note != "paid cash" || got.ResolvedAt != 0 {
		t.Errorf("unexpected settlement: %+v", got)
	}

	found, err := store.FindPendingSettlement(ctx, group.ID, "u2", "u1", 10000)
	if err != nil {
		t.Fatalf("FindPendingSettlement() error = %v", err)
	}
	if found.ID != req.ID {
		t.Errorf("FindPendingSettlement() id = %s, want %s", found.ID, req.ID)
	}
	if _, err := store.FindPendingSettlement(ctx, group.ID, "u2", "u1", 9999); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("FindPendingSettlement(other amount) error = %v, want ErrNotFound", err)
	}

	ok, err := store.TransitionSettlement(ctx, req.ID, models.StatusConfirmed, 1700000000)
	if err != nil {
		t.Fatalf("TransitionSettlement() error = %v", err)
	}
	if !ok {
		t.Fatal("TransitionSettlement() = false, want true for pending settlement")
	}

	got, err = store.GetSettlement(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetSettlement() after transition error = %v", err)
	}
	if got.Status != models.StatusConfirmed || got.ResolvedAt != 1700000000 {
		t.Errorf("settlement after confirm = %+v", got)
	}

	// The compare-and-swap must refuse a second transition.
	ok, err = store.TransitionSettlement(ctx, req.ID, models.StatusRejected, 1700000001)
	if err != nil {
		t.Fatalf("second TransitionSettlement() error = %v", err)
	}
	if ok {
		t.Error("second TransitionSettlement() = true, want false for resolved settlement")
	}
	got, _ = store.GetSettlement(ctx, req.ID)
	if got.Status != models.StatusConfirmed {
		t.Errorf("status changed by losing transition: %s", got.Status)
	}
}

func TestTransitionSettlementRejectsNonTerminal(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.TransitionSettlement(context.Background(), "any", models.StatusPending, 0); err == nil {
		t.Error("TransitionSettlement(PENDING) did not fail")
	}
}

func TestDuplicatePendingSettlement(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := seedGroup(t, store, "u1", "u2")

	first := &models.SettlementRequest{
		GroupID: group.ID, FromMemberID: "u2", ToMemberID: "u1", Amount: 5000, CreatedBy: "u2",
	}
	if err := store.CreateSettlement(ctx, first); err != nil {
		t.Fatalf("CreateSettlement() error = %v", err)
	}

	dup := &models.SettlementRequest{
		GroupID: group.ID, FromMemberID: "u2", ToMemberID: "u1", Amount: 5000, CreatedBy: "u1",
	}
	if err := store.CreateSettlement(ctx, dup); !errors.Is(err, storage.ErrDuplicatePending) {
		t.Fatalf("duplicate CreateSettlement() error = %v, want ErrDuplicatePending", err)
	}

	// A different amount for the same pair is a distinct request.
	other := &models.SettlementRequest{
		GroupID: group.ID, FromMemberID: "u2", ToMemberID: "u1", Amount: 7500, CreatedBy: "u2",
	}
	if err := store.CreateSettlement(ctx, other); err != nil {
		t.Errorf("CreateSettlement(different amount) error = %v", err)
	}

	// Resolving the original frees the slot for a new identical request.
	if ok, err := store.TransitionSettlement(ctx, first.ID, models.StatusRejected, 1700000000); err != nil || !ok {
		t.Fatalf("TransitionSettlement() = %v, %v", ok, err)
	}
	again := &models.SettlementRequest{
		GroupID: group.ID, FromMemberID: "u2", ToMemberID: "u1", Amount: 5000, CreatedBy: "u2",
	}
	if err := store.CreateSettlement(ctx, again); err != nil {
		t.Errorf("CreateSettlement() after rejection error = %v", err)
	}
}

func TestListSettlementsByGroup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := seedGroup(t, store, "u1", "u2", "u3")

	reqs := []*models.SettlementRequest{
		{GroupID: group.ID, FromMemberID: "u2", ToMemberID: "u1", Amount: 100, CreatedBy: "u2", CreatedAt: 100},
		{GroupID: group.ID, FromMemberID: "u3", ToMemberID: "u1", Amount: 200, CreatedBy: "u3", CreatedAt: 200},
		{GroupID: group.ID, FromMemberID: "u3", ToMemberID: "u2", Amount: 300, CreatedBy: "u2", CreatedAt: 300},
	}
	for _, r := range reqs {
		if err := store.CreateSettlement(ctx, r); err != nil {
			t.Fatalf("CreateSettlement() error = %v", err)
		}
	}
	if ok, err := store.TransitionSettlement(ctx, reqs[0].ID, models.StatusConfirmed, 150); err != nil || !ok {
		t.Fatalf("TransitionSettlement() = %v, %v", ok, err)
	}

	all, err := store.ListSettlementsByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListSettlementsByGroup() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListSettlementsByGroup() returned %d, want 3", len(all))
	}
	// Newest first.
	if all[0].Amount != 300 || all[2].Amount != 100 {
		t.Errorf("unexpected order: %d, %d, %d", all[0].Amount, all[1].Amount, all[2].Amount)
	}

	pending, err := store.ListSettlementsByGroup(ctx, group.ID, models.StatusPending)
	if err != nil {
		t.Fatalf("ListSettlementsByGroup(PENDING) error = %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("pending count = %d, want 2", len(pending))
	}

	confirmed, err := store.ListSettlementsByGroup(ctx, group.ID, models.StatusConfirmed, models.StatusRejected)
	if err != nil {
		t.Fatalf("ListSettlementsByGroup(terminal) error = %v", err)
	}
	if len(confirmed) != 1 || confirmed[0].ID != reqs[0].ID {
		t.Errorf("terminal settlements = %+v, want only the confirmed one", confirmed)
	}
}
