package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"magazyn_backend/internal/models"
	"magazyn_backend/internal/repositories"
	"magazyn_backend/internal/services"
	"magazyn_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// StateHandler serves the inventory state endpoints. Mutations go through the
// StateService so every change leaves an audit history row; reads hit the
// repository directly.
type StateHandler struct {
	stateService  services.StateService
	inventoryRepo repositories.InventoryRepository
}

// NewStateHandler creates a new instance of StateHandler.
func NewStateHandler(ss services.StateService, ir repositories.InventoryRepository) *StateHandler {
	return &StateHandler{stateService: ss, inventoryRepo: ir}
}

// GetState handles GET /api/state. An optional ?symbol= narrows to one point.
func (h *StateHandler) GetState(c *gin.Context) {
	items, err := h.inventoryRepo.GetItems(c.Query("symbol"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch inventory state", err.Error()))
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetWarehouse handles GET /api/state/warehouse.
func (h *StateHandler) GetWarehouse(c *gin.Context) {
	items, err := h.inventoryRepo.GetItems(models.WarehouseSymbol)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch warehouse state", err.Error()))
		return
	}
	c.JSON(http.StatusOK, items)
}

// CreateItem handles POST /api/state (seeding/restock).
func (h *StateHandler) CreateItem(c *gin.Context) {
	var item models.InventoryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	if err := h.stateService.CreateItem(&item); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create inventory item", err.Error()))
		return
	}
	c.JSON(http.StatusCreated, item)
}

// DeleteItem handles DELETE /api/state/:id. The correlation headers
// (transactionid, operation-type, target-symbol) are recorded in the audit log.
func (h *StateHandler) DeleteItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondValidationFailed(c, "invalid item id")
		return
	}

	item, err := h.stateService.DeleteItem(id, metaFromHeaders(c))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Inventory item not found", ""))
			return
		}
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete inventory item", err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": item})
}

// DeleteByBarcode handles DELETE /api/state/barcode/:barcode/symbol/:symbol?count=N.
// Deletes up to N matching units; zero matches is a 404 so the caller can
// treat the batch as already processed.
func (h *StateHandler) DeleteByBarcode(c *gin.Context) {
	barcode := c.Param("barcode")
	symbol := c.Param("symbol")
	count := 1
	if countStr := c.Query("count"); countStr != "" {
		parsed, err := strconv.Atoi(countStr)
		if err != nil || parsed <= 0 {
			utils.RespondValidationFailed(c, "count must be a positive integer")
			return
		}
		count = parsed
	}

	deleted, err := h.stateService.DeleteByBarcode(barcode, symbol, count, metaFromHeaders(c))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "No matching inventory items", ""))
			return
		}
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete inventory items", err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"deletedCount": deleted})
}

// RestoreSilent handles POST /api/state/restore-silent: recreate one unit at a
// symbol without touching the sales side.
func (h *StateHandler) RestoreSilent(c *gin.Context) {
	var req models.RestoreItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	item, err := h.stateService.RestoreItem(req, metaFromHeaders(c))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to restore inventory item", err.Error()))
		return
	}
	c.JSON(http.StatusCreated, item)
}

func metaFromHeaders(c *gin.Context) services.OperationMeta {
	return services.OperationMeta{
		TransactionID: c.GetHeader("transactionid"),
		OperationType: c.GetHeader("operation-type"),
		TargetSymbol:  c.GetHeader("target-symbol"),
	}
}
