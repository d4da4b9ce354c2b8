// internal/api/handlers/group_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/domain"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/service"
)

type GroupHandler struct {
	service *service.AnalysisService
}

func NewGroupHandler(service *service.AnalysisService) *GroupHandler {
	return &GroupHandler{service: service}
}

func (h *GroupHandler) ListGroups(c *gin.Context) {
	groups, err := h.service.ListGroups(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	if groups == nil {
		groups = make([]domain.CustomGroup, 0)
	}
	c.JSON(http.StatusOK, groups)
}

func (h *GroupHandler) SaveGroup(c *gin.Context) {
	var group domain.CustomGroup
	if err := c.ShouldBindJSON(&group); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid group payload: "+err.Error())
		return
	}

	if err := h.service.SaveGroup(c.Request.Context(), group); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	log.Info().Str("group", group.ID).Int("skus", len(group.SKUs)).Msg("custom group saved")
	c.JSON(http.StatusOK, group)
}

func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.DeleteGroup(c.Request.Context(), id); err != nil {
		errorResponse(c, http.StatusNotFound, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	log.Error().Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
}
