package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"splitledger/internal/ledger"
	"splitledger/internal/middleware"
	"splitledger/internal/models"
	"splitledger/internal/money"
	"splitledger/internal/service"
)

// resolveAmount accepts an amount either as raw minor units or as a decimal
// string ("12.34"), but not both.
func resolveAmount(cents int64, decimal string) (int64, error) {
	switch {
	case decimal != "" && cents != 0:
		return 0, &service.ValidationError{Reason: "specify either amount or amount_cents, not both"}
	case decimal != "":
		parsed, err := money.ParseDecimalToCents(decimal)
		if err != nil {
			return 0, &service.ValidationError{Reason: "invalid amount " + decimal}
		}
		return parsed, nil
	case cents <= 0:
		return 0, &service.ValidationError{Reason: "amount must be positive"}
	default:
		return cents, nil
	}
}

type createGroupRequest struct {
	Name    string `json:"name"`
	Members []struct {
		MemberID    string `json:"member_id"`
		DisplayName string `json:"display_name"`
	} `json:"members"`
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, &service.ValidationError{Reason: "invalid request body"})
		return
	}
	if req.Name == "" || len(req.Members) == 0 {
		writeError(w, &service.ValidationError{Reason: "name and members are required"})
		return
	}

	// The creator joins the roster automatically if not listed.
	callerID := middleware.GetUserID(r.Context())
	members := make([]models.Member, 0, len(req.Members)+1)
	seen := make(map[string]bool, len(req.Members))
	for _, m := range req.Members {
		if m.MemberID == "" || seen[m.MemberID] {
			writeError(w, &service.ValidationError{Reason: "members must have unique ids"})
			return
		}
		seen[m.MemberID] = true
		members = append(members, models.Member{MemberID: m.MemberID, DisplayName: m.DisplayName})
	}
	if !seen[callerID] {
		members = append(members, models.Member{MemberID: callerID, DisplayName: middleware.GetEmail(r.Context())})
	}

	group := &models.Group{Name: req.Name}
	if err := s.store.CreateGroup(r.Context(), group, members); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"group": group, "members": members})
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	group, err := s.store.GetGroup(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	members, err := s.store.ListMembers(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"group": group, "members": members})
}

type createTransactionRequest struct {
	PayerID      string `json:"payer_id"`
	AmountCents  int64  `json:"amount_cents,omitempty"`
	Amount       string `json:"amount,omitempty"`
	Participants []struct {
		MemberID string `json:"member_id"`
		Share    int64  `json:"share_cents"`
	} `json:"participants,omitempty"`
	SplitEvenly []string `json:"split_evenly,omitempty"`
	Note        string   `json:"note,omitempty"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, &service.ValidationError{Reason: "invalid request body"})
		return
	}
	amount, err := resolveAmount(req.AmountCents, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.PayerID == "" {
		writeError(w, &service.ValidationError{Reason: "payer_id is required"})
		return
	}
	if len(req.Participants) > 0 && len(req.SplitEvenly) > 0 {
		writeError(w, &service.ValidationError{Reason: "specify either participants or split_evenly, not both"})
		return
	}

	members, err := s.requireMembership(r, groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	// New expenses may only involve the current roster; a typo'd id would
	// otherwise poison every future aggregation.
	active := make(map[string]bool, len(members))
	for _, m := range members {
		if m.Active() {
			active[m.MemberID] = true
		}
	}
	if !active[req.PayerID] {
		writeError(w, &service.ValidationError{Reason: "payer is not an active member of this group"})
		return
	}

	var participants []models.Participant
	switch {
	case len(req.SplitEvenly) > 0:
		for _, id := range req.SplitEvenly {
			if !active[id] {
				writeError(w, &service.ValidationError{Reason: "participant " + id + " is not an active member of this group"})
				return
			}
		}
		for _, sh := range ledger.SplitEvenly(amount, req.PayerID, req.SplitEvenly) {
			participants = append(participants, models.Participant{MemberID: sh.MemberID, Share: sh.Amount})
		}
	case len(req.Participants) > 0:
		var sum int64
		for _, p := range req.Participants {
			if !active[p.MemberID] {
				writeError(w, &service.ValidationError{Reason: "participant " + p.MemberID + " is not an active member of this group"})
				return
			}
			if p.Share < 0 {
				writeError(w, &service.ValidationError{Reason: "shares must not be negative"})
				return
			}
			sum += p.Share
			participants = append(participants, models.Participant{MemberID: p.MemberID, Share: p.Share})
		}
		if sum != amount {
			writeError(w, &service.ValidationError{Reason: "shares must sum to the amount"})
			return
		}
	default:
		writeError(w, &service.ValidationError{Reason: "participants or split_evenly required"})
		return
	}

	tx := &models.Transaction{
		GroupID:      groupID,
		PayerID:      req.PayerID,
		Amount:       amount,
		Participants: participants,
		Note:         req.Note,
	}
	if err := s.store.CreateTransaction(r.Context(), tx); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	if _, err := s.requireMembership(r, groupID); err != nil {
		writeError(w, err)
		return
	}
	txs, err := s.store.ListTransactionsByGroup(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	if txs == nil {
		txs = []*models.Transaction{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": txs})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	if _, err := s.requireMembership(r, groupID); err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.DeleteTransaction(r.Context(), groupID, chi.URLParam(r, "txID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleLedgerView(w http.ResponseWriter, r *http.Request) {
	view, err := s.settlements.LedgerView(r.Context(), chi.URLParam(r, "groupID"), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if view.SuggestedTransfers == nil {
		view.SuggestedTransfers = []ledger.Transfer{}
	}
	if view.Pending == nil {
		view.Pending = []*models.SettlementRequest{}
	}
	if view.History == nil {
		view.History = []*models.SettlementRequest{}
	}
	writeJSON(w, http.StatusOK, view)
}

type createSettlementRequest struct {
	CounterpartyID string `json:"counterparty_id"`
	AmountCents    int64  `json:"amount_cents,omitempty"`
	Amount         string `json:"amount,omitempty"`
	Note           string `json:"note,omitempty"`
}

func (s *Server) handleCreateSettlement(w http.ResponseWriter, r *http.Request) {
	var req createSettlementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, &service.ValidationError{Reason: "invalid request body"})
		return
	}
	amount, err := resolveAmount(req.AmountCents, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	settlement, err := s.settlements.CreateSettlement(
		r.Context(),
		chi.URLParam(r, "groupID"),
		middleware.GetUserID(r.Context()),
		req.CounterpartyID,
		amount,
		req.Note,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, settlement)
}

func (s *Server) handleResolveSettlement(action service.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settlement, err := s.settlements.Resolve(
			r.Context(),
			chi.URLParam(r, "settlementID"),
			middleware.GetUserID(r.Context()),
			action,
		)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, settlement)
	}
}

// requireMembership checks that the caller is an active member of the group
// and returns the roster for further validation.
func (s *Server) requireMembership(r *http.Request, groupID string) ([]models.Member, error) {
	if _, err := s.store.GetGroup(r.Context(), groupID); err != nil {
		return nil, err
	}
	members, err := s.store.ListMembers(r.Context(), groupID)
	if err != nil {
		return nil, err
	}
	callerID := middleware.GetUserID(r.Context())
	for _, m := range members {
		if m.MemberID == callerID && m.Active() {
			return members, nil
		}
	}
	return nil, service.ErrNotMember
}
