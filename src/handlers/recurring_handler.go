// backend/src/handlers/recurring_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/username/walletpulse/backend/src/services"
	"github.com/username/walletpulse/backend/src/utils"
)

type RecurringHandler struct {
	ledgerService *services.LedgerService
}

func NewRecurringHandler(ledgerService *services.LedgerService) *RecurringHandler {
	return &RecurringHandler{ledgerService: ledgerService}
}

func (h *RecurringHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	accountID, ok := GetAccountIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}
	rules, err := h.ledgerService.ListRules(r.Context(), accountID)
	if err != nil {
		sendServiceError(w, r, err, "list recurring rules")
		return
	}
	utils.WriteJSON(w, http.StatusOK, rules)
}

func (h *RecurringHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	accountID, ok := GetAccountIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}
	var req services.RecurringRuleInput
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	rule, err := h.ledgerService.CreateRule(r.Context(), accountID, req)
	if err != nil {
		sendServiceError(w, r, err, "create recurring rule")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, rule)
}

// SetRuleActive handles PATCH /recurring/{id}/active with body {"is_active": bool}.
func (h *RecurringHandler) SetRuleActive(w http.ResponseWriter, r *http.Request) {
	accountID, ok := GetAccountIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}
	ruleID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || ruleID <= 0 {
		utils.SendJSONError(w, "Invalid rule ID", http.StatusBadRequest)
		return
	}
	var req struct {
		IsActive *bool `json:"is_active"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsActive == nil {
		utils.SendJSONError(w, "Request body must contain is_active", http.StatusBadRequest)
		return
	}
	if err := h.ledgerService.SetRuleActive(r.Context(), accountID, ruleID, *req.IsActive); err != nil {
		sendServiceError(w, r, err, "update recurring rule")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"id": ruleID, "is_active": *req.IsActive})
}
