package handlers

import (
	"net/http"
	"time"

	"magazyn_backend/internal/database"
	"magazyn_backend/internal/models"
	"magazyn_backend/internal/repositories"
	"magazyn_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SalesHandler serves the point-of-sale feed endpoints.
type SalesHandler struct {
	salesRepo repositories.SalesRepository
}

// NewSalesHandler creates a new instance of SalesHandler.
func NewSalesHandler(sr repositories.SalesRepository) *SalesHandler {
	return &SalesHandler{salesRepo: sr}
}

// GetAllSales handles GET /api/sales/get-all-sales.
func (h *SalesHandler) GetAllSales(c *gin.Context) {
	sales, err := h.salesRepo.GetSales(models.SalesFilters{})
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch sales", err.Error()))
		return
	}
	c.JSON(http.StatusOK, sales)
}

// FilterByDateAndPoint handles GET /api/sales/filter-by-date-and-point?date=YYYY-MM-DD&sellingPoint=NAME.
func (h *SalesHandler) FilterByDateAndPoint(c *gin.Context) {
	var filters models.SalesFilters
	if dateStr := c.Query("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			utils.RespondValidationFailed(c, "date must be YYYY-MM-DD")
			return
		}
		filters.Date = &date
	}
	filters.SellingPoint = c.Query("sellingPoint")

	sales, err := h.salesRepo.GetSales(filters)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch sales", err.Error()))
		return
	}
	c.JSON(http.StatusOK, sales)
}

// CreateSale handles POST /api/sales, the ingestion path for the POS feed.
func (h *SalesHandler) CreateSale(c *gin.Context) {
	var sale models.SalesRecord
	if err := c.ShouldBindJSON(&sale); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	if _, err := h.salesRepo.CreateSale(database.GetDB(), &sale); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to record sale", err.Error()))
		return
	}
	c.JSON(http.StatusCreated, sale)
}
