package main

import (
	"context"
	"log"

	"plant-analyzer/internal/config"
	"plant-analyzer/internal/handlers"
	"plant-analyzer/internal/logger"
	"plant-analyzer/internal/services"
	"plant-analyzer/internal/tempfile"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()
	logger.Init(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	analyzer, err := services.NewAnalyzer(context.Background(), cfg.Inference)
	if err != nil {
		log.Fatal("Failed to initialize analyzer: ", err)
	}

	uploads := tempfile.NewDir(cfg.Storage.UploadDir)
	if err := uploads.Ensure(); err != nil {
		log.Fatal(err)
	}
	reports := tempfile.NewDir(cfg.Storage.ReportsDir)

	generator := services.NewReportGenerator(reports, services.NewImageProcessor(), services.NewTextSanitizer())

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(handlers.CORSMiddleware())

	handlers.RegisterRoutes(
		router,
		handlers.NewAnalysisHandler(analyzer, uploads, cfg.Limits.MaxUploadBytes, cfg.VerboseErrors()),
		handlers.NewReportHandler(generator, cfg.Limits.MaxJSONBytes),
		cfg.Storage.PublicDir,
	)

	logger.WithFields(logrus.Fields{
		"provider":    cfg.Inference.Provider,
		"model":       cfg.Inference.Model,
		"errorDetail": cfg.ErrorDetail,
	}).Info("🚀 Server listening on port " + cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
