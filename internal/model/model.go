package model

import "time"

const (
	CategorySolutionRequest = "Solution Request"
	CategoryPainPoint       = "Pain Point"
	CategoryFeatureRequest  = "Feature Request"
	CategoryBugReport       = "Bug Report"
	CategorySuccessStory    = "Success Story"
)

type Subreddit struct {
	ID            int64
	Name          string
	Description   string
	MemberCount   int
	LastFetchedAt *time.Time
}

type Post struct {
	ID           int64
	SubredditID  int64
	RedditPostID string
	Title        string
	Content      string
	Score        int
	NumComments  int
	CreatedUTC   time.Time
	AnalyzedAt   time.Time
	URL          string
}

type Category struct {
	ID          int64
	Name        string
	Description string
}

type PostCategory struct {
	PostID     int64
	CategoryID int64
	IsRelevant bool
}

type PostWithCategories struct {
	Post
	Categories []PostCategory
}
