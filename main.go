package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/queiroz-sistemas/supermercado-api/config"
	"github.com/queiroz-sistemas/supermercado-api/database"
	"github.com/queiroz-sistemas/supermercado-api/router"
	"github.com/queiroz-sistemas/supermercado-api/utils"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	utils.InitLogger()
	utils.InitAuditLogger()

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("database connection failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("database migration failed: %v", err)
	}

	r := router.SetupRouter(db)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatalf("server stopped: %v", err)
	}
}
