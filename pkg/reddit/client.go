package reddit

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const baseURL = "https://www.reddit.com"

var (
	// ErrNotFound means the subreddit does not exist upstream (or is
	// private/banned, which Reddit reports the same way to anonymous callers).
	ErrNotFound = errors.New("subreddit not found")

	// ErrUnavailable covers network failures, rate limiting and server errors.
	ErrUnavailable = errors.New("reddit unavailable")
)

type About struct {
	Name        string
	Description string
	MemberCount int
}

type Post struct {
	RedditPostID string
	Title        string
	Content      string
	Score        int
	NumComments  int
	CreatedUTC   time.Time
	URL          string
}

type Client struct {
	httpClient *http.Client
	userAgent  string
}

func NewClient(userAgent string) *Client {
	if userAgent == "" {
		userAgent = "reddit-analytics/1.0"
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  userAgent,
	}
}

func (c *Client) FetchAbout(name string) (*About, error) {
	url := fmt.Sprintf("%s/r/%s/about.json", baseURL, strings.ToLower(name))

	var raw aboutResponse
	if err := c.getJSON(url, &raw); err != nil {
		return nil, err
	}

	if raw.Data.DisplayName == "" && raw.Data.Subscribers == 0 {
		return nil, ErrNotFound
	}

	return &About{
		Name:        strings.ToLower(name),
		Description: raw.Data.PublicDescription,
		MemberCount: raw.Data.Subscribers,
	}, nil
}

// FetchRecentPosts returns the newest posts created within window of now.
// Reddit caps a single listing page at 100 entries; posts older than the
// window are dropped. Callers must not rely on any particular order.
func (c *Client) FetchRecentPosts(name string, window time.Duration) ([]Post, error) {
	url := fmt.Sprintf("%s/r/%s/new.json?limit=100", baseURL, strings.ToLower(name))

	var raw listingResponse
	if err := c.getJSON(url, &raw); err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-window)

	var posts []Post
	for _, child := range raw.Data.Children {
		item := child.Data
		createdAt := time.Unix(int64(item.CreatedUTC), 0).UTC()
		if createdAt.Before(cutoff) {
			continue
		}

		posts = append(posts, Post{
			RedditPostID: item.ID,
			Title:        item.Title,
			Content:      item.Selftext,
			Score:        item.Score,
			NumComments:  item.NumComments,
			CreatedUTC:   createdAt,
			URL:          baseURL + item.Permalink,
		})
	}

	return posts, nil
}

func (c *Client) getJSON(url string, out interface{}) error {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}

	return nil
}

type aboutResponse struct {
	Data aboutData `json:"data"`
}

type aboutData struct {
	DisplayName       string `json:"display_name"`
	PublicDescription string `json:"public_description"`
	Subscribers       int    `json:"subscribers"`
}

type listingResponse struct {
	Data listingData `json:"data"`
}

type listingData struct {
	Children []listingChild `json:"children"`
}

type listingChild struct {
	Data listingPost `json:"data"`
}

type listingPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Permalink   string  `json:"permalink"`
}
