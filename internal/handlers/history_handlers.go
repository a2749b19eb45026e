package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"magazyn_backend/internal/database"
	"magazyn_backend/internal/models"
	"magazyn_backend/internal/repositories"
	"magazyn_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// HistoryHandler serves the free-text audit log. The delete variants exist
// for the undo flows; a 404 from any of them means "nothing matched" and
// callers treat it as acceptable.
type HistoryHandler struct {
	historyRepo repositories.HistoryRepository
}

// NewHistoryHandler creates a new instance of HistoryHandler.
func NewHistoryHandler(hr repositories.HistoryRepository) *HistoryHandler {
	return &HistoryHandler{historyRepo: hr}
}

// GetHistory handles GET /api/history with optional transactionId/barcode/limit filters.
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			utils.RespondValidationFailed(c, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	entries, err := h.historyRepo.GetEntries(c.Query("transactionId"), c.Query("barcode"), limit)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch history", err.Error()))
		return
	}
	c.JSON(http.StatusOK, entries)
}

// CreateEntry handles POST /api/history.
func (h *HistoryHandler) CreateEntry(c *gin.Context) {
	var entry models.HistoryEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	if _, err := h.historyRepo.CreateEntry(database.GetDB(), &entry); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create history entry", err.Error()))
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// DeleteByTransaction handles DELETE /api/history/by-transaction/:id.
func (h *HistoryHandler) DeleteByTransaction(c *gin.Context) {
	deleted, err := h.historyRepo.DeleteByTransactionID(database.GetDB(), c.Param("id"))
	h.respondDelete(c, deleted, err)
}

// DeleteByDetails handles POST /api/history/delete-by-details, the fallback
// cleanup path when no rows carry the transaction id.
func (h *HistoryHandler) DeleteByDetails(c *gin.Context) {
	var filter models.HistoryDetailsFilter
	if err := c.ShouldBindJSON(&filter); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	deleted, err := h.historyRepo.DeleteByDetails(database.GetDB(), filter)
	h.respondDelete(c, deleted, err)
}

// DeleteSingleItem handles POST /api/history/delete-single-item.
func (h *HistoryHandler) DeleteSingleItem(c *gin.Context) {
	var filter models.HistorySingleItemFilter
	if err := c.ShouldBindJSON(&filter); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	deleted, err := h.historyRepo.DeleteSingleItem(database.GetDB(), filter)
	h.respondDelete(c, deleted, err)
}

func (h *HistoryHandler) respondDelete(c *gin.Context, deleted int64, err error) {
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "No matching history entries", ""))
			return
		}
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete history entries", err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"deletedCount": deleted})
}
