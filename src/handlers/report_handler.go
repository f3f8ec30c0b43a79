// backend/src/handlers/report_handler.go
package handlers

import (
	"net/http"
	"time"

	"github.com/username/walletpulse/backend/src/services"
	"github.com/username/walletpulse/backend/src/utils"
)

type ReportHandler struct {
	reportService *services.ReportService
	now           func() time.Time
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService, now: time.Now}
}

func (h *ReportHandler) HandleGetOverview(w http.ResponseWriter, r *http.Request) {
	accountID, ok := GetAccountIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}
	report, err := h.reportService.GenerateReport(r.Context(), accountID, h.now())
	if err != nil {
		sendServiceError(w, r, err, "generate report")
		return
	}
	utils.WriteJSON(w, http.StatusOK, report)
}

func (h *ReportHandler) HandleGetUpcoming(w http.ResponseWriter, r *http.Request) {
	accountID, ok := GetAccountIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}
	upcoming, err := h.reportService.Upcoming(r.Context(), accountID, h.now())
	if err != nil {
		sendServiceError(w, r, err, "list upcoming payments")
		return
	}
	utils.WriteJSON(w, http.StatusOK, upcoming)
}

func (h *ReportHandler) HandleGetMarketRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.reportService.MarketRates(r.Context())
	if err != nil {
		sendServiceError(w, r, err, "fetch market rates")
		return
	}
	utils.WriteJSON(w, http.StatusOK, rates)
}
