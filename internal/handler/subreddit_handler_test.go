package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ajitgoel/reddit-analytics/internal/model"
	"github.com/ajitgoel/reddit-analytics/internal/pipeline"
	"github.com/ajitgoel/reddit-analytics/pkg/llm"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
)

type fakeService struct {
	posts      []model.PostWithCategories
	subreddits []model.Subreddit
	themes     []llm.Theme
	err        error

	addedSubreddit string
}

func (f *fakeService) GetPosts(ctx context.Context, name string) ([]model.PostWithCategories, error) {
	return f.posts, f.err
}

func (f *fakeService) AddSubreddit(ctx context.Context, name string) error {
	if f.err != nil {
		return f.err
	}
	f.addedSubreddit = name
	return nil
}

func (f *fakeService) ListSubreddits(ctx context.Context) ([]model.Subreddit, error) {
	return f.subreddits, f.err
}

func (f *fakeService) GetThemes(ctx context.Context, name string) ([]llm.Theme, error) {
	return f.themes, f.err
}

func newTestRouter(service SubredditService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewSubredditHandler(service)
	r.GET("/subreddits", h.GetSubreddits)
	r.POST("/subreddits", h.AddSubreddit)
	r.GET("/subreddits/:name/posts", h.GetPosts)
	r.GET("/subreddits/:name/themes", h.GetThemes)
	r.GET("/health", h.GetHealth)
	return r
}

func TestGetPosts_ReturnsPostsWithCategories(t *testing.T) {
	service := &fakeService{
		posts: []model.PostWithCategories{
			{
				Post: model.Post{
					ID:           1,
					RedditPostID: "p1",
					Title:        "App crashes on save",
					Score:        100,
					CreatedUTC:   time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
				},
				Categories: []model.PostCategory{
					{PostID: 1, CategoryID: 4, IsRelevant: true},
				},
			},
			{
				Post: model.Post{ID: 2, RedditPostID: "p2", Title: "Nice release", Score: 50},
			},
		},
	}

	r := newTestRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/subreddits/demo/posts", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res PostsResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, "demo", res.Subreddit)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, "App crashes on save", res.Posts[0].Title)
	assert.Equal(t, 1, len(res.Posts[0].Categories))
	assert.Equal(t, int64(4), res.Posts[0].Categories[0].CategoryID)
	assert.Equal(t, 0, len(res.Posts[1].Categories))
}

func TestGetPosts_NotFound(t *testing.T) {
	service := &fakeService{err: pipeline.ErrNotFound}
	r := newTestRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/subreddits/nosuchsub/posts", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPosts_Unavailable(t *testing.T) {
	service := &fakeService{err: pipeline.ErrUnavailable}
	r := newTestRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/subreddits/demo/posts", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetPosts_InternalError(t *testing.T) {
	service := &fakeService{err: errors.New("DB down")}
	r := newTestRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/subreddits/demo/posts", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAddSubreddit(t *testing.T) {
	service := &fakeService{}
	r := newTestRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/subreddits", strings.NewReader(`{"name":"golang"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "golang", service.addedSubreddit)
}

func TestAddSubreddit_EmptyName(t *testing.T) {
	service := &fakeService{}
	r := newTestRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/subreddits", strings.NewReader(`{"name":"  "}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddSubreddit_UnknownUpstream(t *testing.T) {
	service := &fakeService{err: pipeline.ErrNotFound}
	r := newTestRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/subreddits", strings.NewReader(`{"name":"nosuchsub"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSubreddits(t *testing.T) {
	lastFetched := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	service := &fakeService{
		subreddits: []model.Subreddit{
			{ID: 1, Name: "ollama", MemberCount: 8000, LastFetchedAt: &lastFetched},
			{ID: 2, Name: "typescript", MemberCount: 126000},
		},
	}

	r := newTestRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/subreddits", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res []SubredditResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 2, len(res))
	assert.Equal(t, "ollama", res[0].Name)
	assert.Equal(t, "2026-08-29T10:00:00Z", *res[0].LastFetchedAt)
	assert.Equal(t, (*string)(nil), res[1].LastFetchedAt)
}

func TestGetThemes(t *testing.T) {
	service := &fakeService{
		themes: []llm.Theme{
			{
				Name:      "Solution Requests",
				Sentiment: "neutral",
				Keywords:  []string{"help"},
				PostCount: 1,
				Posts:     []llm.ThemePost{{Title: "Help me", URL: "https://reddit.com/p1", Sentiment: "neutral"}},
			},
		},
	}

	r := newTestRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/subreddits/demo/themes", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res []ThemeResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 1, len(res))
	assert.Equal(t, "Solution Requests", res[0].Name)
	assert.Equal(t, 1, res[0].PostCount)
	assert.Equal(t, "Help me", res[0].Posts[0].Title)
}

func TestGetHealth(t *testing.T) {
	r := newTestRouter(&fakeService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetHealth_Unhealthy(t *testing.T) {
	r := newTestRouter(&fakeService{err: errors.New("DB down")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
