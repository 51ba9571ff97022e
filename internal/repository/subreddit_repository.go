package repository

import (
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/ajitgoel/reddit-analytics/internal/model"
	"github.com/lib/pq"
)

type SubredditRepository struct {
	db *sql.DB
}

func NewSubredditRepository(db *sql.DB) *SubredditRepository {
	return &SubredditRepository{db: db}
}

func (r *SubredditRepository) GetByName(name string) (*model.Subreddit, error) {
	var s model.Subreddit
	var lastFetchedAt sql.NullTime

	err := r.db.QueryRow(`
		SELECT id, name, description, member_count, last_fetched_at
		FROM subreddits
		WHERE name = $1
	`, strings.ToLower(name)).Scan(&s.ID, &s.Name, &s.Description, &s.MemberCount, &lastFetchedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	if lastFetchedAt.Valid {
		s.LastFetchedAt = &lastFetchedAt.Time
	}

	return &s, nil
}

// Upsert creates or updates a subreddit keyed on its lowercase name.
// Description and member count only overwrite when non-empty, so a caller
// that omits them does not erase existing data. last_fetched_at is written
// as given: nil forces the next read to refresh.
func (r *SubredditRepository) Upsert(s *model.Subreddit) error {
	s.Name = strings.ToLower(s.Name)

	var lastFetchedAt sql.NullTime
	if s.LastFetchedAt != nil {
		lastFetchedAt = sql.NullTime{Time: *s.LastFetchedAt, Valid: true}
	}

	return r.db.QueryRow(`
		INSERT INTO subreddits(name, description, member_count, last_fetched_at)
		VALUES($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET
			description = CASE WHEN EXCLUDED.description <> '' THEN EXCLUDED.description ELSE subreddits.description END,
			member_count = CASE WHEN EXCLUDED.member_count <> 0 THEN EXCLUDED.member_count ELSE subreddits.member_count END,
			last_fetched_at = EXCLUDED.last_fetched_at
		RETURNING id
	`, s.Name, s.Description, s.MemberCount, lastFetchedAt).Scan(&s.ID)
}

func (r *SubredditRepository) GetAll() ([]model.Subreddit, error) {
	rows, err := r.db.Query(`
		SELECT id, name, description, member_count, last_fetched_at
		FROM subreddits
		ORDER BY name
	`)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subreddits []model.Subreddit
	for rows.Next() {
		var s model.Subreddit
		var lastFetchedAt sql.NullTime
		err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.MemberCount, &lastFetchedAt)
		if err != nil {
			return nil, err
		}

		if lastFetchedAt.Valid {
			s.LastFetchedAt = &lastFetchedAt.Time
		}

		subreddits = append(subreddits, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return subreddits, nil
}

// UpsertPosts stores a batch keyed on reddit_post_id, returning the rows that
// made it in with their ids. A single bad row is logged and skipped so the
// rest of the batch still lands.
func (r *SubredditRepository) UpsertPosts(subredditID int64, posts []model.Post) ([]model.Post, error) {
	saved := make([]model.Post, 0, len(posts))

	for _, p := range posts {
		var id int64
		err := r.db.QueryRow(`
			INSERT INTO posts(subreddit_id, reddit_post_id, title, content, score, num_comments, created_utc, analyzed_at, url)
			VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (reddit_post_id) DO UPDATE SET
				title = EXCLUDED.title,
				content = EXCLUDED.content,
				score = EXCLUDED.score,
				num_comments = EXCLUDED.num_comments,
				analyzed_at = EXCLUDED.analyzed_at,
				url = EXCLUDED.url
			RETURNING id
		`, subredditID, p.RedditPostID, p.Title, p.Content, p.Score, p.NumComments, p.CreatedUTC, p.AnalyzedAt, p.URL).Scan(&id)

		if err != nil {
			slog.Error("error upserting post", "reddit_post_id", p.RedditPostID, "error", err)
			continue
		}

		p.ID = id
		p.SubredditID = subredditID
		saved = append(saved, p)
	}

	return saved, nil
}

func (r *SubredditRepository) UpsertPostCategories(links []model.PostCategory) error {
	if len(links) == 0 {
		return nil
	}

	postIDs := make([]int64, 0, len(links))
	categoryIDs := make([]int64, 0, len(links))
	relevant := make([]bool, 0, len(links))
	for _, l := range links {
		postIDs = append(postIDs, l.PostID)
		categoryIDs = append(categoryIDs, l.CategoryID)
		relevant = append(relevant, l.IsRelevant)
	}

	_, err := r.db.Exec(`
		INSERT INTO post_categories(post_id, category_id, is_relevant)
		SELECT unnest($1::bigint[]), unnest($2::bigint[]), unnest($3::boolean[])
		ON CONFLICT (post_id, category_id) DO UPDATE SET is_relevant = EXCLUDED.is_relevant
	`, pq.Array(postIDs), pq.Array(categoryIDs), pq.Array(relevant))

	return err
}

// GetPostsWithCategories returns a subreddit's posts newest first, each with
// its relevant category links. Posts with no relevant link still appear.
func (r *SubredditRepository) GetPostsWithCategories(subredditID int64) ([]model.PostWithCategories, error) {
	rows, err := r.db.Query(`
		SELECT id, subreddit_id, reddit_post_id, title, content, score, num_comments, created_utc, analyzed_at, url
		FROM posts
		WHERE subreddit_id = $1
		ORDER BY created_utc DESC
	`, subredditID)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.PostWithCategories
	var postIDs []int64
	for rows.Next() {
		var p model.Post
		var analyzedAt sql.NullTime
		err := rows.Scan(&p.ID, &p.SubredditID, &p.RedditPostID, &p.Title, &p.Content, &p.Score, &p.NumComments, &p.CreatedUTC, &analyzedAt, &p.URL)
		if err != nil {
			return nil, err
		}

		if analyzedAt.Valid {
			p.AnalyzedAt = analyzedAt.Time
		}

		posts = append(posts, model.PostWithCategories{Post: p})
		postIDs = append(postIDs, p.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(posts) == 0 {
		return posts, nil
	}

	linkMap, err := r.getRelevantLinks(postIDs)
	if err != nil {
		return nil, err
	}

	for i := range posts {
		posts[i].Categories = linkMap[posts[i].ID]
	}

	return posts, nil
}

func (r *SubredditRepository) getRelevantLinks(postIDs []int64) (map[int64][]model.PostCategory, error) {
	rows, err := r.db.Query(`
		SELECT post_id, category_id, is_relevant
		FROM post_categories
		WHERE post_id = ANY($1) AND is_relevant = TRUE
	`, pq.Array(postIDs))

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64][]model.PostCategory)
	for rows.Next() {
		var l model.PostCategory
		if err := rows.Scan(&l.PostID, &l.CategoryID, &l.IsRelevant); err != nil {
			return nil, err
		}
		result[l.PostID] = append(result[l.PostID], l)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// GetRecentPosts returns posts across all subreddits created since the given
// time. Used when a new category triggers re-classification.
func (r *SubredditRepository) GetRecentPosts(since time.Time) ([]model.Post, error) {
	rows, err := r.db.Query(`
		SELECT id, subreddit_id, reddit_post_id, title, content, score, num_comments, created_utc, analyzed_at, url
		FROM posts
		WHERE created_utc >= $1
	`, since)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var p model.Post
		var analyzedAt sql.NullTime
		err := rows.Scan(&p.ID, &p.SubredditID, &p.RedditPostID, &p.Title, &p.Content, &p.Score, &p.NumComments, &p.CreatedUTC, &analyzedAt, &p.URL)
		if err != nil {
			return nil, err
		}

		if analyzedAt.Valid {
			p.AnalyzedAt = analyzedAt.Time
		}

		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}
