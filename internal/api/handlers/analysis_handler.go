// internal/api/handlers/analysis_handler.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/domain"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/repository"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/service"
)

type AnalysisHandler struct {
	service *service.AnalysisService
}

func NewAnalysisHandler(service *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{service: service}
}

// parseFilter decodes a FilterState from query params. Multi-value
// params accept both repeated keys and comma-separated lists:
//
//	?properties=Downtown&properties=Airport
//	?properties=Downtown,Airport
func (h *AnalysisHandler) parseFilter(c *gin.Context) domain.FilterState {
	now := time.Now()
	filters := domain.FilterState{
		DateStart: now.AddDate(0, -1, 0),
		DateEnd:   now,
		GroupBy:   domain.GroupBySKU,
	}

	if start, err := time.Parse(time.DateOnly, c.Query("dateStart")); err == nil {
		filters.DateStart = start
	}
	if end, err := time.Parse(time.DateOnly, c.Query("dateEnd")); err == nil {
		filters.DateEnd = end
	}

	filters.Properties = multiValue(c, "properties")
	filters.Search = strings.TrimSpace(c.Query("search"))
	filters.SearchFields = multiValue(c, "searchFields")
	filters.Categories = multiValue(c, "categories")
	filters.Departments = multiValue(c, "departments")
	filters.Vendors = multiValue(c, "vendors")

	switch c.Query("groupBy") {
	case domain.GroupByCategory:
		filters.GroupBy = domain.GroupByCategory
	case domain.GroupByCustom:
		filters.GroupBy = domain.GroupByCustom
	}

	filters.SortField = c.Query("sortField")
	filters.SortDirection = c.DefaultQuery("sortDirection", domain.SortAsc)
	filters.HideZeroSales = c.Query("hideZeroSales") == "true"
	filters.HideZeroOnHand = c.Query("hideZeroOnHand") == "true"

	return filters
}

// GetAnalysis returns the aggregated performance rows for the filter.
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	filters := h.parseFilter(c)

	result, err := h.service.GetAnalysis(c.Request.Context(), filters)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rows":        result.Rows,
		"diagnostics": result.Diagnostics,
		"filters":     filters,
	})
}

// Forecast runs the 12-month restock projection for the filtered rows.
// It is triggered explicitly because it is the expensive path.
func (h *AnalysisHandler) Forecast(c *gin.Context) {
	var filters domain.FilterState
	if err := c.ShouldBindJSON(&filters); err != nil {
		// fall back to query params for GET-style callers
		filters = h.parseFilter(c)
	}
	if filters.GroupBy == "" {
		filters.GroupBy = domain.GroupBySKU
	}

	rows, err := h.service.Forecast(c.Request.Context(), filters)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.AbortWithStatus(http.StatusRequestTimeout)
			return
		}
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// GetRowSchedule returns one forecasted row, for narration callers that
// only need a single row's breakdown.
func (h *AnalysisHandler) GetRowSchedule(c *gin.Context) {
	filters := h.parseFilter(c)
	rowID := c.Param("id")

	row, err := h.service.GetRowSchedule(c.Request.Context(), filters, rowID)
	if err != nil {
		errorResponse(c, http.StatusNotFound, err.Error())
		return
	}

	c.JSON(http.StatusOK, row)
}

// GetFilterOptions returns the distinct label values for filter UIs.
func (h *AnalysisHandler) GetFilterOptions(c *gin.Context) {
	options, err := h.service.GetFilterOptions(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, options)
}

// UpdateTransactionReview applies a review-workflow edit to one
// transaction and invalidates cached aggregates.
func (h *AnalysisHandler) UpdateTransactionReview(c *gin.Context) {
	id := c.Param("id")

	var patch repository.ReviewPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid review patch: "+err.Error())
		return
	}
	if patch.ReviewStatus != nil {
		switch *patch.ReviewStatus {
		case domain.ReviewPending, domain.ReviewVerified, domain.ReviewIgnored, domain.ReviewModified:
		default:
			errorResponse(c, http.StatusBadRequest, "invalid review status")
			return
		}
	}

	if err := h.service.UpdateTransactionReview(c.Request.Context(), id, patch); err != nil {
		errorResponse(c, http.StatusNotFound, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func multiValue(c *gin.Context, key string) []string {
	raw := c.QueryArray(key)
	if len(raw) == 0 {
		if single := strings.TrimSpace(c.Query(key)); single != "" {
			raw = []string{single}
		}
	}

	var flattened []string
	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				flattened = append(flattened, part)
			}
		}
	}
	return flattened
}
