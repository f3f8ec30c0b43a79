// backend/src/handlers/transaction_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/username/walletpulse/backend/src/logger"
	"github.com/username/walletpulse/backend/src/security/validation"
	"github.com/username/walletpulse/backend/src/services"
	"github.com/username/walletpulse/backend/src/utils"
)

const maxRequestBodyBytes = 64 << 10

type TransactionHandler struct {
	ledgerService *services.LedgerService
	now           func() time.Time
}

func NewTransactionHandler(ledgerService *services.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledgerService: ledgerService, now: time.Now}
}

// HandleGetTransactions lists the account's ledger, optionally from ?since=YYYY-MM-DD.
func (h *TransactionHandler) HandleGetTransactions(w http.ResponseWriter, r *http.Request) {
	accountID, ok := GetAccountIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := validation.ValidateDateString(raw, "since")
		if err != nil {
			sendServiceError(w, r, err, "list transactions")
			return
		}
		since = parsed
	}

	entries, err := h.ledgerService.ListTransactions(r.Context(), accountID, since)
	if err != nil {
		sendServiceError(w, r, err, "list transactions")
		return
	}
	utils.WriteJSON(w, http.StatusOK, entries)
}

func (h *TransactionHandler) HandleAddManualTransaction(w http.ResponseWriter, r *http.Request) {
	accountID, ok := GetAccountIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req services.ManualEntryInput
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := h.ledgerService.CreateManualEntry(r.Context(), accountID, req, h.now())
	if err != nil {
		sendServiceError(w, r, err, "save transaction")
		return
	}
	logger.FromContext(r.Context()).Info("Manual transaction added", "entryID", entry.ID)
	utils.WriteJSON(w, http.StatusCreated, entry)
}
