package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"magazyn_backend/internal/database"
	"magazyn_backend/internal/router"
	"magazyn_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	utils.InitLogger()

	dbHost := utils.Getenv("DB_HOST", "localhost")
	dbPort := utils.Getenv("DB_PORT", "5432")
	dbUser := utils.Getenv("DB_USER", "magazyn_user")
	dbPassword := utils.Getenv("DB_PASSWORD", "magazyn_password")
	dbName := utils.Getenv("DB_NAME", "magazyn_db")
	dbSSLMode := utils.Getenv("DB_SSLMODE", "disable")
	dbSchemaPath := utils.Getenv("DB_SCHEMA_PATH", "")

	database.InitDB(dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode, dbSchemaPath)
	utils.LogInfo("Database initialized", map[string]interface{}{"configured_from_env": true})

	engine := gin.Default()
	engine.Use(utils.GinLogger())

	corsAllowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	var allowedOrigins []string
	if corsAllowedOriginsEnv != "" {
		allowedOrigins = strings.Split(corsAllowedOriginsEnv, ",")
	} else {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "transactionid", "operation-type", "target-symbol"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	port := utils.Getenv("PORT", "8080")

	cfg := router.Config{
		// Engine traffic loops back through this server unless a separate
		// store is configured.
		BackendURL:     utils.Getenv("BACKEND_URL", "http://localhost:"+port),
		BackendTimeout: utils.GetenvSeconds("BACKEND_TIMEOUT_SECONDS", 15*time.Second),
		ServiceToken:   os.Getenv("SERVICE_TOKEN"),
		AuthEnabled:    utils.GetenvBool("AUTH_ENABLED", false),
	}

	router.Setup(engine, database.GetDB(), cfg)

	utils.LogInfo("Server starting", map[string]interface{}{"port": port, "backend_url": cfg.BackendURL})

	if err := engine.Run(":" + port); err != nil {
		utils.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}
