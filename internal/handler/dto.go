package handler

type AddSubredditRequest struct {
	Name string `json:"name"`
}

type AddCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type SubredditResponse struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	MemberCount   int     `json:"member_count"`
	LastFetchedAt *string `json:"last_fetched_at"`
}

type PostCategoryResponse struct {
	CategoryID int64 `json:"category_id"`
	IsRelevant bool  `json:"is_relevant"`
}

type PostResponse struct {
	ID           int64                  `json:"id"`
	RedditPostID string                 `json:"reddit_post_id"`
	Title        string                 `json:"title"`
	Content      string                 `json:"content"`
	Score        int                    `json:"score"`
	NumComments  int                    `json:"num_comments"`
	CreatedUTC   string                 `json:"created_utc"`
	AnalyzedAt   string                 `json:"analyzed_at"`
	URL          string                 `json:"url"`
	Categories   []PostCategoryResponse `json:"categories"`
}

type PostsResponse struct {
	Subreddit string         `json:"subreddit"`
	Posts     []PostResponse `json:"posts"`
	Total     int            `json:"total"`
}

type CategoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ThemePostResponse struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Sentiment string `json:"sentiment"`
}

type ThemeResponse struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Sentiment   string              `json:"sentiment"`
	Keywords    []string            `json:"keywords"`
	PostCount   int                 `json:"post_count"`
	Posts       []ThemePostResponse `json:"posts"`
}
