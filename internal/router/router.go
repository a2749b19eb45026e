package router

import (
	"database/sql"
	"time"

	"magazyn_backend/internal/client"
	"magazyn_backend/internal/handlers"
	"magazyn_backend/internal/middleware"
	"magazyn_backend/internal/repositories"
	"magazyn_backend/internal/services"
	"magazyn_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Config carries the wiring knobs for Setup.
type Config struct {
	// BackendURL is where the engine's HTTP client points. Normally the
	// server's own address, so commit/undo traffic stays observable on the
	// wire; it can point at a remote store instead.
	BackendURL string
	// BackendTimeout bounds every engine-to-store call.
	BackendTimeout time.Duration
	// ServiceToken, when set, is the bearer credential the engine uses.
	ServiceToken string
	// AuthEnabled protects the API group with JWT auth.
	AuthEnabled bool
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB, cfg Config) {
	// Repositories
	inventoryRepo := repositories.NewInventoryRepository(db)
	salesRepo := repositories.NewSalesRepository(db)
	userRepo := repositories.NewUserRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	historyRepo := repositories.NewHistoryRepository(db)

	// Store-side services
	stateService := services.NewStateService(inventoryRepo, historyRepo, db)

	// Engine: committer and undo share one guard and drive the store through
	// the HTTP client, keeping the commit/undo protocol on the wire.
	backend := client.New(cfg.BackendURL, cfg.BackendTimeout, cfg.ServiceToken)
	guard := services.NewOperationGuard()
	committer := services.NewTransactionCommitter(backend, guard)
	undoEngine := services.NewUndoEngine(backend, guard)
	reportService := services.NewReportService(backend)

	// Handlers
	stateHandler := handlers.NewStateHandler(stateService, inventoryRepo)
	salesHandler := handlers.NewSalesHandler(salesRepo)
	userHandler := handlers.NewUserHandler(userRepo)
	transactionHandler := handlers.NewTransactionHistoryHandler(transactionRepo, db)
	historyHandler := handlers.NewHistoryHandler(historyRepo)
	operationsHandler := handlers.NewOperationsHandler(committer, undoEngine, transactionRepo)
	reportHandler := handlers.NewReportHandler(reportService)

	api := engine.Group("/api")

	// Login stays public; everything else optionally sits behind JWT auth.
	api.POST("/user/login", userHandler.Login)

	protected := api.Group("")
	if cfg.AuthEnabled {
		protected.Use(middleware.AuthMiddleware())
	}

	SetupStateRoutes(protected, stateHandler)
	SetupSalesRoutes(protected, salesHandler)
	SetupUserRoutes(protected, userHandler, cfg.AuthEnabled)
	SetupTransactionHistoryRoutes(protected, transactionHandler)
	SetupHistoryRoutes(protected, historyHandler)
	SetupOperationRoutes(protected, operationsHandler)
	SetupReportRoutes(protected, reportHandler)

	utils.LogInfo("Routes configured", map[string]interface{}{
		"backend_url":  cfg.BackendURL,
		"auth_enabled": cfg.AuthEnabled,
	})
}
