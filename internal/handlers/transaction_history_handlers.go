package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"magazyn_backend/internal/models"
	"magazyn_backend/internal/repositories"
	"magazyn_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TransactionHistoryHandler serves the ledger CRUD. Ledger writes touch two
// tables (header + items), so the handler owns the SQL transaction, like the
// movement endpoints it grew out of.
type TransactionHistoryHandler struct {
	transactionRepo repositories.TransactionRepository
	db              *sql.DB
}

// NewTransactionHistoryHandler creates a new instance of TransactionHistoryHandler.
func NewTransactionHistoryHandler(tr repositories.TransactionRepository, db *sql.DB) *TransactionHistoryHandler {
	return &TransactionHistoryHandler{transactionRepo: tr, db: db}
}

// GetTransactions handles GET /api/transaction-history with optional filters.
func (h *TransactionHistoryHandler) GetTransactions(c *gin.Context) {
	var filters models.TransactionFilters
	filters.OperationType = c.Query("operationType")
	filters.SellingPoint = c.Query("sellingPoint")
	if startStr := c.Query("startDate"); startStr != "" {
		start, err := parseFlexibleTime(startStr)
		if err != nil {
			utils.RespondValidationFailed(c, "startDate must be RFC3339 or YYYY-MM-DD")
			return
		}
		filters.StartDate = &start
	}
	if endStr := c.Query("endDate"); endStr != "" {
		end, err := parseFlexibleTime(endStr)
		if err != nil {
			utils.RespondValidationFailed(c, "endDate must be RFC3339 or YYYY-MM-DD")
			return
		}
		filters.EndDate = &end
	}

	transactions, err := h.transactionRepo.GetTransactions(filters)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch transactions", err.Error()))
		return
	}
	c.JSON(http.StatusOK, transactions)
}

// GetTransactionByID handles GET /api/transaction-history/:id.
func (h *TransactionHistoryHandler) GetTransactionByID(c *gin.Context) {
	tx, err := h.transactionRepo.GetTransactionByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Transaction not found", ""))
			return
		}
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch transaction", err.Error()))
		return
	}
	c.JSON(http.StatusOK, tx)
}

// CreateTransaction handles POST /api/transaction-history.
func (h *TransactionHistoryHandler) CreateTransaction(c *gin.Context) {
	var tx models.Transaction
	if err := c.ShouldBindJSON(&tx); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	if tx.ItemsCount == 0 {
		tx.ItemsCount = len(tx.ProcessedItems)
	}

	sqlTx, err := h.db.Begin()
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to start transaction", err.Error()))
		return
	}
	defer sqlTx.Rollback()

	if err := h.transactionRepo.CreateTransaction(sqlTx, &tx); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Transaction id already exists", tx.TransactionID))
			return
		}
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create transaction", err.Error()))
		return
	}
	if err := sqlTx.Commit(); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to commit transaction", err.Error()))
		return
	}
	c.JSON(http.StatusCreated, tx)
}

// UpdateTransaction handles PUT /api/transaction-history/:id.
func (h *TransactionHistoryHandler) UpdateTransaction(c *gin.Context) {
	var tx models.Transaction
	if err := c.ShouldBindJSON(&tx); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	tx.TransactionID = c.Param("id")
	if tx.ItemsCount == 0 {
		tx.ItemsCount = len(tx.ProcessedItems)
	}

	sqlTx, err := h.db.Begin()
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to start transaction", err.Error()))
		return
	}
	defer sqlTx.Rollback()

	if err := h.transactionRepo.UpdateTransaction(sqlTx, &tx); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Transaction not found", ""))
			return
		}
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update transaction", err.Error()))
		return
	}
	if err := sqlTx.Commit(); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to commit update", err.Error()))
		return
	}
	c.JSON(http.StatusOK, tx)
}

// DeleteTransaction handles DELETE /api/transaction-history/:id.
func (h *TransactionHistoryHandler) DeleteTransaction(c *gin.Context) {
	if err := h.transactionRepo.DeleteTransaction(h.db, c.Param("id")); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Transaction not found", ""))
			return
		}
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete transaction", err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

func parseFlexibleTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
