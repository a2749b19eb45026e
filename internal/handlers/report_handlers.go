package handlers

import (
	"net/http"
	"time"

	"magazyn_backend/internal/services"
	"magazyn_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

const reportDateLayout = "2006-01-02"

// ReportHandler serves the balance and transaction reports. Reports read the
// ledger and the current inventory only; they never mutate anything.
type ReportHandler struct {
	reportService *services.ReportService
}

// NewReportHandler creates a new instance of ReportHandler.
func NewReportHandler(rs *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// GetBalanceReport handles GET /api/reports/balance?start_date&end_date.
func (h *ReportHandler) GetBalanceReport(c *gin.Context) {
	start, end, ok := h.parseRange(c)
	if !ok {
		return
	}
	report, err := h.reportService.BalanceReport(c.Request.Context(), start, end)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to build balance report", err.Error()))
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetTransactionReport handles GET /api/reports/transactions?start_date&end_date.
// With ?format=xlsx the report is streamed as a spreadsheet download.
func (h *ReportHandler) GetTransactionReport(c *gin.Context) {
	start, end, ok := h.parseRange(c)
	if !ok {
		return
	}
	report, err := h.reportService.TransactionReport(c.Request.Context(), start, end)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to build transaction report", err.Error()))
		return
	}

	if c.Query("format") == "xlsx" {
		file, err := h.reportService.ExportTransactionReportXLSX(report)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to render spreadsheet", err.Error()))
			return
		}
		filename := "transaction-report-" + start.Format(reportDateLayout) + ".xlsx"
		c.Header("Content-Disposition", "attachment; filename="+filename)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := file.Write(c.Writer); err != nil {
			utils.LogError(err, "Failed to stream spreadsheet")
		}
		return
	}
	c.JSON(http.StatusOK, report)
}

// parseRange reads start_date/end_date query parameters, defaulting to the
// last 30 days. The end date is inclusive to end-of-day.
func (h *ReportHandler) parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now()
	start := now.AddDate(0, 0, -30)
	end := now

	if startStr := c.Query("start_date"); startStr != "" {
		parsed, err := time.Parse(reportDateLayout, startStr)
		if err != nil {
			utils.RespondValidationFailed(c, "start_date must be YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		start = parsed
	}
	if endStr := c.Query("end_date"); endStr != "" {
		parsed, err := time.Parse(reportDateLayout, endStr)
		if err != nil {
			utils.RespondValidationFailed(c, "end_date must be YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		end = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return start, end, true
}
