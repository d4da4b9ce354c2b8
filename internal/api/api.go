// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/api/handlers"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/api/middleware"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/service"
)

func NewRouter(analysis *service.AnalysisService, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	apiGroup := router.Group("/api/v1")

	if analysis != nil {
		analysisHandler := handlers.NewAnalysisHandler(analysis)
		analysisGroup := apiGroup.Group("/analysis")
		{
			analysisGroup.GET("", analysisHandler.GetAnalysis)
			analysisGroup.POST("/forecast", analysisHandler.Forecast)
			analysisGroup.GET("/row/:id/schedule", analysisHandler.GetRowSchedule)
		}

		apiGroup.GET("/filters/options", analysisHandler.GetFilterOptions)
		apiGroup.PATCH("/transactions/:id/review", analysisHandler.UpdateTransactionReview)

		groupHandler := handlers.NewGroupHandler(analysis)
		groupsGroup := apiGroup.Group("/groups")
		{
			groupsGroup.GET("", groupHandler.ListGroups)
			groupsGroup.POST("", groupHandler.SaveGroup)
			groupsGroup.DELETE("/:id", groupHandler.DeleteGroup)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
