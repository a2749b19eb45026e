package handlers

import (
	"errors"
	"net/http"

	"magazyn_backend/internal/models"
	"magazyn_backend/internal/repositories"
	"magazyn_backend/internal/services"
	"magazyn_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OperationsHandler exposes the commit and undo flows. Only one operation may
// run at a time; concurrent attempts get a 409 without side effects.
type OperationsHandler struct {
	committer       *services.TransactionCommitter
	undoEngine      *services.UndoEngine
	transactionRepo repositories.TransactionRepository
}

// NewOperationsHandler creates a new instance of OperationsHandler.
func NewOperationsHandler(
	committer *services.TransactionCommitter,
	undoEngine *services.UndoEngine,
	tr repositories.TransactionRepository,
) *OperationsHandler {
	return &OperationsHandler{committer: committer, undoEngine: undoEngine, transactionRepo: tr}
}

// Commit handles POST /api/operations/commit. The response always carries the
// missing/failed item lists so partial success is never silent.
func (h *OperationsHandler) Commit(c *gin.Context) {
	var req services.CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	result, err := h.committer.Commit(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTransactionInProgress):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeOperationInFlight, "Inna operacja jest w toku. Spróbuj ponownie za chwilę.", ""))
		case errors.Is(err, services.ErrValidation):
			utils.RespondValidationFailed(c, err.Error())
		case errors.Is(err, services.ErrNoValidItems):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  utils.NewAPIError(http.StatusUnprocessableEntity, utils.ErrCodeValidationFailed, "Brak poprawnych pozycji do przetworzenia.", ""),
				"result": result,
			})
		case errors.Is(err, services.ErrLedgerWrite):
			// Inventory already mutated; hand the unpersisted transaction back
			// so the operator can recover instead of losing it.
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":  utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Zapis transakcji nie powiódł się po zmianach w magazynie.", err.Error()),
				"result": result,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":  utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Operacja nie powiodła się.", err.Error()),
				"result": result,
			})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// UndoTransaction handles POST /api/operations/undo/:transactionId.
func (h *OperationsHandler) UndoTransaction(c *gin.Context) {
	tx, err := h.transactionRepo.GetTransactionByID(c.Param("transactionId"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Transaction not found", ""))
			return
		}
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch transaction", err.Error()))
		return
	}

	if err := h.undoEngine.UndoTransaction(c.Request.Context(), *tx); err != nil {
		if errors.Is(err, services.ErrTransactionInProgress) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeOperationInFlight, "Inna operacja jest w toku. Spróbuj ponownie za chwilę.", ""))
			return
		}
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Cofnięcie transakcji nie powiodło się.", err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"undone": tx.TransactionID})
}

// UndoSingleItemRequest identifies one line of a transaction to reverse.
type UndoSingleItemRequest struct {
	Barcode     string `json:"barcode" binding:"required"`
	Size        string `json:"size"`
	ProcessType string `json:"processType" binding:"required"`
}

// UndoSingleItem handles POST /api/operations/undo/:transactionId/items.
func (h *OperationsHandler) UndoSingleItem(c *gin.Context) {
	var req UndoSingleItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	tx, err := h.transactionRepo.GetTransactionByID(c.Param("transactionId"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Transaction not found", ""))
			return
		}
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch transaction", err.Error()))
		return
	}

	var item *models.ProcessedItem
	for i := range tx.ProcessedItems {
		candidate := &tx.ProcessedItems[i]
		if candidate.Barcode == req.Barcode && candidate.Size == req.Size && candidate.ProcessType == req.ProcessType {
			item = candidate
			break
		}
	}
	if item == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Item not found in transaction", ""))
		return
	}

	correction, err := h.undoEngine.UndoSingleItem(c.Request.Context(), *tx, *item)
	if err != nil {
		if errors.Is(err, services.ErrTransactionInProgress) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeOperationInFlight, "Inna operacja jest w toku. Spróbuj ponownie za chwilę.", ""))
			return
		}
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Cofnięcie pozycji nie powiodło się.", err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"correction": correction})
}
