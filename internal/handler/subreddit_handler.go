package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ajitgoel/reddit-analytics/internal/model"
	"github.com/ajitgoel/reddit-analytics/internal/pipeline"
	"github.com/ajitgoel/reddit-analytics/pkg/llm"
	"github.com/gin-gonic/gin"
)

type SubredditService interface {
	GetPosts(ctx context.Context, name string) ([]model.PostWithCategories, error)
	AddSubreddit(ctx context.Context, name string) error
	ListSubreddits(ctx context.Context) ([]model.Subreddit, error)
	GetThemes(ctx context.Context, name string) ([]llm.Theme, error)
}

type SubredditHandler struct {
	service SubredditService
}

func NewSubredditHandler(service SubredditService) *SubredditHandler {
	return &SubredditHandler{service: service}
}

func (h *SubredditHandler) GetSubreddits(c *gin.Context) {
	subreddits, err := h.service.ListSubreddits(c.Request.Context())
	if err != nil {
		slog.Error("error listing subreddits", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := make([]SubredditResponse, 0, len(subreddits))
	for _, s := range subreddits {
		res = append(res, toSubredditResponse(s))
	}

	c.JSON(http.StatusOK, res)
}

func (h *SubredditHandler) AddSubreddit(c *gin.Context) {
	var req AddSubredditRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subreddit name is required"})
		return
	}

	err := h.service.AddSubreddit(c.Request.Context(), req.Name)
	if err != nil {
		h.writeServiceError(c, err, req.Name)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *SubredditHandler) GetPosts(c *gin.Context) {
	name := c.Param("name")

	posts, err := h.service.GetPosts(c.Request.Context(), name)
	if err != nil {
		h.writeServiceError(c, err, name)
		return
	}

	res := PostsResponse{
		Subreddit: strings.ToLower(name),
		Posts:     make([]PostResponse, 0, len(posts)),
		Total:     len(posts),
	}

	for _, p := range posts {
		categories := make([]PostCategoryResponse, 0, len(p.Categories))
		for _, link := range p.Categories {
			categories = append(categories, PostCategoryResponse{
				CategoryID: link.CategoryID,
				IsRelevant: link.IsRelevant,
			})
		}

		res.Posts = append(res.Posts, PostResponse{
			ID:           p.ID,
			RedditPostID: p.RedditPostID,
			Title:        p.Title,
			Content:      p.Content,
			Score:        p.Score,
			NumComments:  p.NumComments,
			CreatedUTC:   p.CreatedUTC.Format(time.RFC3339),
			AnalyzedAt:   p.AnalyzedAt.Format(time.RFC3339),
			URL:          p.URL,
			Categories:   categories,
		})
	}

	c.JSON(http.StatusOK, res)
}

func (h *SubredditHandler) GetThemes(c *gin.Context) {
	name := c.Param("name")

	themes, err := h.service.GetThemes(c.Request.Context(), name)
	if err != nil {
		h.writeServiceError(c, err, name)
		return
	}

	res := make([]ThemeResponse, 0, len(themes))
	for _, theme := range themes {
		posts := make([]ThemePostResponse, 0, len(theme.Posts))
		for _, p := range theme.Posts {
			posts = append(posts, ThemePostResponse{
				Title:     p.Title,
				URL:       p.URL,
				Sentiment: p.Sentiment,
			})
		}

		res = append(res, ThemeResponse{
			Name:        theme.Name,
			Description: theme.Description,
			Sentiment:   theme.Sentiment,
			Keywords:    theme.Keywords,
			PostCount:   theme.PostCount,
			Posts:       posts,
		})
	}

	c.JSON(http.StatusOK, res)
}

func (h *SubredditHandler) GetHealth(c *gin.Context) {
	_, err := h.service.ListSubreddits(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}

// User-visible failure is limited to "not found" and "temporarily
// unavailable"; anything else is an internal error with details in the logs.
func (h *SubredditHandler) writeServiceError(c *gin.Context, err error, name string) {
	switch {
	case errors.Is(err, pipeline.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Subreddit not found"})
	case errors.Is(err, pipeline.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Temporarily unavailable, no cached data"})
	default:
		slog.Error("subreddit request failed", "subreddit", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
	}
}

func toSubredditResponse(s model.Subreddit) SubredditResponse {
	res := SubredditResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		MemberCount: s.MemberCount,
	}

	if s.LastFetchedAt != nil {
		formatted := s.LastFetchedAt.Format(time.RFC3339)
		res.LastFetchedAt = &formatted
	}

	return res
}
