package router

import (
	"magazyn_backend/internal/handlers"
	"magazyn_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupStateRoutes sets up the inventory state routes.
func SetupStateRoutes(group *gin.RouterGroup, stateHandler *handlers.StateHandler) {
	stateRoutes := group.Group("/state")
	{
		stateRoutes.GET("", stateHandler.GetState)
		stateRoutes.GET("/warehouse", stateHandler.GetWarehouse)
		stateRoutes.POST("", stateHandler.CreateItem)
		stateRoutes.POST("/restore-silent", stateHandler.RestoreSilent)
		stateRoutes.DELETE("/barcode/:barcode/symbol/:symbol", stateHandler.DeleteByBarcode)
		stateRoutes.DELETE("/:id", stateHandler.DeleteItem)
	}
}

// SetupSalesRoutes sets up the point-of-sale feed routes.
func SetupSalesRoutes(group *gin.RouterGroup, salesHandler *handlers.SalesHandler) {
	salesRoutes := group.Group("/sales")
	{
		salesRoutes.GET("/get-all-sales", salesHandler.GetAllSales)
		salesRoutes.GET("/filter-by-date-and-point", salesHandler.FilterByDateAndPoint)
		salesRoutes.POST("", salesHandler.CreateSale)
	}
}

// SetupUserRoutes sets up the selling-point directory routes. User creation
// is admin-only when auth is enabled.
func SetupUserRoutes(group *gin.RouterGroup, userHandler *handlers.UserHandler, authEnabled bool) {
	userRoutes := group.Group("/user")
	{
		userRoutes.GET("", userHandler.GetUsers)
		if authEnabled {
			userRoutes.POST("", middleware.RoleAuthMiddleware("Admin"), userHandler.CreateUser)
		} else {
			userRoutes.POST("", userHandler.CreateUser)
		}
	}
}

// SetupTransactionHistoryRoutes sets up the ledger routes.
func SetupTransactionHistoryRoutes(group *gin.RouterGroup, transactionHandler *handlers.TransactionHistoryHandler) {
	ledgerRoutes := group.Group("/transaction-history")
	{
		ledgerRoutes.GET("", transactionHandler.GetTransactions)
		ledgerRoutes.GET("/:id", transactionHandler.GetTransactionByID)
		ledgerRoutes.POST("", transactionHandler.CreateTransaction)
		ledgerRoutes.PUT("/:id", transactionHandler.UpdateTransaction)
		ledgerRoutes.DELETE("/:id", transactionHandler.DeleteTransaction)
	}
}

// SetupHistoryRoutes sets up the audit-log routes.
func SetupHistoryRoutes(group *gin.RouterGroup, historyHandler *handlers.HistoryHandler) {
	historyRoutes := group.Group("/history")
	{
		historyRoutes.GET("", historyHandler.GetHistory)
		historyRoutes.POST("", historyHandler.CreateEntry)
		historyRoutes.DELETE("/by-transaction/:id", historyHandler.DeleteByTransaction)
		historyRoutes.POST("/delete-by-details", historyHandler.DeleteByDetails)
		historyRoutes.POST("/delete-single-item", historyHandler.DeleteSingleItem)
	}
}

// SetupOperationRoutes sets up the commit/undo routes.
func SetupOperationRoutes(group *gin.RouterGroup, operationsHandler *handlers.OperationsHandler) {
	operationRoutes := group.Group("/operations")
	{
		operationRoutes.POST("/commit", operationsHandler.Commit)
		operationRoutes.POST("/undo/:transactionId", operationsHandler.UndoTransaction)
		operationRoutes.POST("/undo/:transactionId/items", operationsHandler.UndoSingleItem)
	}
}

// SetupReportRoutes sets up the report routes.
func SetupReportRoutes(group *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	reportRoutes := group.Group("/reports")
	{
		reportRoutes.GET("/balance", reportHandler.GetBalanceReport)
		reportRoutes.GET("/transactions", reportHandler.GetTransactionReport)
	}
}
