// Package service layers the settlement state machine and the ledger query
// surface over the store and the pure computation core.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"splitledger/internal/ledger"
	"splitledger/internal/metrics"
	"splitledger/internal/models"
	"splitledger/internal/money"
	"splitledger/internal/notify"
	"splitledger/internal/storage"
)

// historyLimit caps the resolved settlements returned in the ledger view.
const historyLimit = 20

// Action is a requested settlement transition.
type Action string

const (
	ActionConfirm Action = "confirm"
	ActionReject  Action = "reject"
)

// BalanceEntry is one member's net position, labeled for display. Former
// members keep their historical balances; Active only drives labeling.
type BalanceEntry struct {
	MemberID    string `json:"member_id"`
	DisplayName string `json:"display_name"`
	Active      bool   `json:"active"`
	Net         int64  `json:"net_cents"`
}

// LedgerView is the full read model for a group: balances, suggested
// transfers, open settlement requests and recent history. Building it has
// no side effects and is always recomputed from scratch.
type LedgerView struct {
	Balances           []BalanceEntry              `json:"balances"`
	SuggestedTransfers []ledger.Transfer           `json:"suggested_transfers"`
	Pending            []*models.SettlementRequest `json:"pending"`
	History            []*models.SettlementRequest `json:"history"`
	Partial            bool                        `json:"partial"`
}

// SettlementService owns settlement creation and resolution plus the
// ledger read path.
type SettlementService struct {
	store    storage.Store
	notifier notify.Notifier
}

// NewSettlementService creates a settlement service on top of the given
// store and notifier.
func NewSettlementService(store storage.Store, notifier notify.Notifier) *SettlementService {
	return &SettlementService{store: store, notifier: notifier}
}

// LedgerView computes the group's current state for the given caller.
func (s *SettlementService) LedgerView(ctx context.Context, groupID, callerID string) (*LedgerView, error) {
	members, err := s.requireMember(ctx, groupID, callerID)
	if err != nil {
		return nil, err
	}

	sheet, transfers, err := s.computeTransfers(ctx, groupID, members)
	if err != nil {
		return nil, err
	}

	pending, err := s.store.ListSettlementsByGroup(ctx, groupID, models.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending settlements: %w", err)
	}
	history, err := s.store.ListSettlementsByGroup(ctx, groupID, models.StatusConfirmed, models.StatusRejected)
	if err != nil {
		return nil, fmt.Errorf("failed to load settlement history: %w", err)
	}
	if len(history) > historyLimit {
		history = history[:historyLimit]
	}

	byID := make(map[string]models.Member, len(members))
	for _, m := range members {
		byID[m.MemberID] = m
	}
	balances := make([]BalanceEntry, len(sheet.Balances))
	for i, b := range sheet.Balances {
		m := byID[b.MemberID]
		balances[i] = BalanceEntry{
			MemberID:    b.MemberID,
			DisplayName: m.DisplayName,
			Active:      m.Active(),
			Net:         b.Net,
		}
	}

	return &LedgerView{
		Balances:           balances,
		SuggestedTransfers: transfers,
		Pending:            pending,
		History:            history,
		Partial:            sheet.Partial,
	}, nil
}

// CreateSettlement proposes a payment between the caller and a counterparty.
//
// The caller supplies only the counterparty; which side is debtor follows
// from the direction of the currently netted debt between the two. Creation
// is idempotent: an identical (from, to, amount) request that is still
// PENDING is returned instead of duplicated.
func (s *SettlementService) CreateSettlement(ctx context.Context, groupID, callerID, counterpartyID string, amount int64, note string) (*models.SettlementRequest, error) {
	if amount <= 0 {
		return nil, &ValidationError{Reason: "amount must be positive"}
	}
	if counterpartyID == "" {
		return nil, &ValidationError{Reason: "counterparty required"}
	}
	if counterpartyID == callerID {
		return nil, &ValidationError{Reason: "cannot settle with yourself"}
	}

	members, err := s.requireMember(ctx, groupID, callerID)
	if err != nil {
		return nil, err
	}
	if !isActiveMember(members, counterpartyID) {
		return nil, &ValidationError{Reason: "counterparty is not an active member of this group"}
	}

	_, transfers, err := s.computeTransfers(ctx, groupID, members)
	if err != nil {
		return nil, err
	}

	// The netted debt fixes the direction: whoever the suggested transfer
	// says must pay is the debtor, regardless of who proposed.
	var fromID, toID string
	outstanding := ledger.OutstandingBetween(transfers, callerID, counterpartyID)
	switch {
	case outstanding > 0:
		fromID, toID = callerID, counterpartyID
	default:
		outstanding = ledger.OutstandingBetween(transfers, counterpartyID, callerID)
		if outstanding == 0 {
			return nil, &ValidationError{Reason: "no outstanding debt between these members"}
		}
		fromID, toID = counterpartyID, callerID
	}
	if amount > outstanding {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("amount exceeds outstanding debt of %s", money.FormatCents(outstanding)),
		}
	}

	if existing, err := s.store.FindPendingSettlement(ctx, groupID, fromID, toID, amount); err == nil {
		slog.Info("returning existing pending settlement",
			"group_id", groupID, "settlement_id", existing.ID)
		return existing, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	req := &models.SettlementRequest{
		GroupID:      groupID,
		FromMemberID: fromID,
		ToMemberID:   toID,
		Amount:       amount,
		Status:       models.StatusPending,
		CreatedBy:    callerID,
		Note:         note,
	}
	if err := s.store.CreateSettlement(ctx, req); err != nil {
		if errors.Is(err, storage.ErrDuplicatePending) {
			// Lost a create race; the winner's record is the answer.
			return s.store.FindPendingSettlement(ctx, groupID, fromID, toID, amount)
		}
		return nil, err
	}

	metrics.SettlementsCreated.Inc()
	s.notifier.SettlementChanged(ctx, notify.Event{
		GroupID:      groupID,
		SettlementID: req.ID,
		Kind:         notify.KindCreated,
		OccurredAt:   time.Now(),
	})
	slog.Info("settlement created",
		"group_id", groupID, "settlement_id", req.ID,
		"from", fromID, "to", toID, "amount", amount)
	return req, nil
}

// Resolve confirms or rejects a pending settlement. Only the creditor side
// may resolve; everything else, including racing a transition that already
// happened, is a ConflictError telling the caller to refetch.
func (s *SettlementService) Resolve(ctx context.Context, settlementID, callerID string, action Action) (*models.SettlementRequest, error) {
	var target models.SettlementStatus
	switch action {
	case ActionConfirm:
		target = models.StatusConfirmed
	case ActionReject:
		target = models.StatusRejected
	default:
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown action %q", action)}
	}

	req, err := s.store.GetSettlement(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	if req.ToMemberID != callerID {
		metrics.TransitionConflicts.Inc()
		return nil, &ConflictError{Reason: "only the creditor may confirm or reject a settlement"}
	}

	resolvedAt := time.Now().Unix()
	ok, err := s.store.TransitionSettlement(ctx, settlementID, target, resolvedAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the compare-and-swap: someone else resolved it first.
		metrics.TransitionConflicts.Inc()
		current, err := s.store.GetSettlement(ctx, settlementID)
		if err != nil {
			return nil, err
		}
		return nil, &ConflictError{
			Reason: fmt.Sprintf("settlement is already %s", current.Status),
		}
	}

	req.Status = target
	req.ResolvedAt = resolvedAt

	kind := notify.KindConfirmed
	if target == models.StatusConfirmed {
		metrics.SettlementsConfirmed.Inc()
	} else {
		metrics.SettlementsRejected.Inc()
		kind = notify.KindRejected
	}
	s.notifier.SettlementChanged(ctx, notify.Event{
		GroupID:      req.GroupID,
		SettlementID: req.ID,
		Kind:         kind,
		OccurredAt:   time.Now(),
	})
	slog.Info("settlement resolved",
		"settlement_id", req.ID, "status", string(target), "by", callerID)
	return req, nil
}

// computeTransfers runs the pure pipeline over the group's current data:
// transactions plus confirmed settlements in, balances and netted
// transfers out.
func (s *SettlementService) computeTransfers(ctx context.Context, groupID string, members []models.Member) (ledger.BalanceSheet, []ledger.Transfer, error) {
	txs, err := s.store.ListTransactionsByGroup(ctx, groupID)
	if err != nil {
		return ledger.BalanceSheet{}, nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	confirmed, err := s.store.ListSettlementsByGroup(ctx, groupID, models.StatusConfirmed)
	if err != nil {
		return ledger.BalanceSheet{}, nil, fmt.Errorf("failed to load confirmed settlements: %w", err)
	}

	memberIDs := make([]string, len(members))
	for i, m := range members {
		memberIDs[i] = m.MemberID
	}
	txInputs := make([]ledger.TransactionInput, len(txs))
	for i, t := range txs {
		shares := make([]ledger.Share, len(t.Participants))
		for j, p := range t.Participants {
			shares[j] = ledger.Share{MemberID: p.MemberID, Amount: p.Share}
		}
		txInputs[i] = ledger.TransactionInput{
			ID:      t.ID,
			PayerID: t.PayerID,
			Amount:  t.Amount,
			Shares:  shares,
		}
	}
	settledInputs := make([]ledger.SettlementInput, len(confirmed))
	for i, c := range confirmed {
		settledInputs[i] = ledger.SettlementInput{
			FromMemberID: c.FromMemberID,
			ToMemberID:   c.ToMemberID,
			Amount:       c.Amount,
		}
	}

	sheet := ledger.Aggregate(memberIDs, txInputs, settledInputs)
	if sheet.Partial {
		metrics.PartialAggregations.Inc()
	}
	transfers, err := ledger.Net(sheet.Balances)
	if err != nil {
		return ledger.BalanceSheet{}, nil, fmt.Errorf("netting failed for group %s: %w", groupID, err)
	}
	return sheet, transfers, nil
}

// requireMember loads the roster and checks the caller is an active member.
func (s *SettlementService) requireMember(ctx context.Context, groupID, callerID string) ([]models.Member, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	if !isActiveMember(members, callerID) {
		return nil, ErrNotMember
	}
	return members, nil
}

func isActiveMember(members []models.Member, memberID string) bool {
	for _, m := range members {
		if m.MemberID == memberID && m.Active() {
			return true
		}
	}
	return false
}
