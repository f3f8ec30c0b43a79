package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/username/walletpulse/backend/src/logger"
	"github.com/username/walletpulse/backend/src/security/validation"
	"github.com/username/walletpulse/backend/src/services"
	"github.com/username/walletpulse/backend/src/utils"
)

// sendServiceError maps service error kinds onto status codes. Internal errors are
// logged and hidden from the client.
func sendServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, services.ErrNoAccountContext):
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
	case errors.Is(err, validation.ErrValidationFailed):
		utils.SendJSONError(w, strings.TrimPrefix(err.Error(), validation.ErrValidationFailed.Error()+": "), http.StatusBadRequest)
	case errors.Is(err, services.ErrRuleNotFound):
		utils.SendJSONError(w, "Recurring rule not found", http.StatusNotFound)
	default:
		logger.FromContext(r.Context()).Error("Request failed", "action", action, "error", err)
		utils.SendJSONError(w, "Failed to "+action, http.StatusInternalServerError)
	}
}
