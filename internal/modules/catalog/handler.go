package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/niranjan-aware/resonance-system/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/studios", h.ListStudios)
	rg.GET("/studios/:id", h.GetStudio)
}

func (h *Handler) ListStudios(c *gin.Context) {
	studios, err := h.service.ListStudios(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get studios")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"studios": studios,
		"count":   len(studios),
	})
}

func (h *Handler) GetStudio(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid studio ID")
		return
	}

	studio, err := h.service.GetStudio(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Studio not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get studio")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"studio": studio})
}
