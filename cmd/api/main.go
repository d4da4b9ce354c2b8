// cmd/api/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/api"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/cache"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/config"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/repository"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/repository/postgres"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/service"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.App.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	analysisCache, err := cache.NewAnalysisCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Analysis cache unavailable, running without it")
		analysisCache = cache.NewNoopAnalysisCache()
	}

	datasets := repository.NewDatasetRepository(db)
	groups := repository.NewGroupRepository(db)
	analysis := service.NewAnalysisService(datasets, groups, analysisCache)

	router := api.NewRouter(analysis, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
