package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ajitgoel/reddit-analytics/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
)

type fakeCategoryService struct {
	categories []model.Category
	created    *model.Category
	err        error
}

func (f *fakeCategoryService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return f.categories, f.err
}

func (f *fakeCategoryService) AddCategory(ctx context.Context, name string, description string) (*model.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = &model.Category{ID: 6, Name: name, Description: description}
	return f.created, nil
}

func newCategoryRouter(service CategoryService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewCategoryHandler(service)
	r.GET("/categories", h.GetCategories)
	r.POST("/categories", h.AddCategory)
	return r
}

func TestGetCategories(t *testing.T) {
	service := &fakeCategoryService{
		categories: []model.Category{
			{ID: 4, Name: model.CategoryBugReport, Description: "Posts reporting issues or bugs"},
		},
	}

	r := newCategoryRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/categories", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res []CategoryResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 1, len(res))
	assert.Equal(t, model.CategoryBugReport, res[0].Name)
}

func TestGetCategories_DBError(t *testing.T) {
	r := newCategoryRouter(&fakeCategoryService{err: errors.New("DB down")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/categories", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAddCategory(t *testing.T) {
	service := &fakeCategoryService{}
	r := newCategoryRouter(service)

	body := `{"name":"Pricing Question","description":"Posts asking about pricing"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/categories", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res CategoryResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, int64(6), res.ID)
	assert.Equal(t, "Pricing Question", res.Name)
}

func TestAddCategory_MissingFields(t *testing.T) {
	r := newCategoryRouter(&fakeCategoryService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/categories", strings.NewReader(`{"name":"No description"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddCategory_ServiceError(t *testing.T) {
	r := newCategoryRouter(&fakeCategoryService{err: errors.New("insert failed")})

	body := `{"name":"Pricing Question","description":"Posts asking about pricing"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/categories", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
