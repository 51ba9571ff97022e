package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ajitgoel/reddit-analytics/internal/model"
	"github.com/gin-gonic/gin"
)

type CategoryService interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	AddCategory(ctx context.Context, name string, description string) (*model.Category, error)
}

type CategoryHandler struct {
	service CategoryService
}

func NewCategoryHandler(service CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

func (h *CategoryHandler) GetCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		slog.Error("error fetching categories", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := make([]CategoryResponse, 0, len(categories))
	for _, cat := range categories {
		res = append(res, CategoryResponse{
			ID:          cat.ID,
			Name:        cat.Name,
			Description: cat.Description,
		})
	}

	c.JSON(http.StatusOK, res)
}

func (h *CategoryHandler) AddCategory(c *gin.Context) {
	var req AddCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil ||
		strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Description) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and description are required"})
		return
	}

	category, err := h.service.AddCategory(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		slog.Error("error creating category", "name", req.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	c.JSON(http.StatusOK, CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
	})
}
