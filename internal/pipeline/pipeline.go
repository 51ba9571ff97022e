package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ajitgoel/reddit-analytics/db"
	"github.com/ajitgoel/reddit-analytics/internal/model"
	"github.com/ajitgoel/reddit-analytics/pkg/llm"
	"github.com/ajitgoel/reddit-analytics/pkg/reddit"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNotFound means the subreddit exists neither in cache nor upstream.
	ErrNotFound = errors.New("subreddit not found")

	// ErrUnavailable means the source is down and there is no cached data to
	// fall back on.
	ErrUnavailable = errors.New("temporarily unavailable, no cached data")
)

type SubredditStore interface {
	GetByName(name string) (*model.Subreddit, error)
	Upsert(s *model.Subreddit) error
	GetAll() ([]model.Subreddit, error)
	UpsertPosts(subredditID int64, posts []model.Post) ([]model.Post, error)
	UpsertPostCategories(links []model.PostCategory) error
	GetPostsWithCategories(subredditID int64) ([]model.PostWithCategories, error)
	GetRecentPosts(since time.Time) ([]model.Post, error)
}

type CategoryStore interface {
	GetAll() ([]model.Category, error)
	GetByID(id int64) (*model.Category, error)
	Insert(name string, description string) (*model.Category, error)
}

type Source interface {
	FetchAbout(name string) (*reddit.About, error)
	FetchRecentPosts(name string, window time.Duration) ([]reddit.Post, error)
}

type Classifier interface {
	Classify(post llm.PostInput, taxonomy []llm.CategoryDef) []llm.Verdict
	ClassifyOne(post llm.PostInput, category llm.CategoryDef) bool
	AnalyzeThemes(posts []llm.ThemeInput) ([]llm.Theme, error)
}

type JobQueue interface {
	Push(ctx context.Context, queueKey string, data string) error
}

type Config struct {
	TTL              time.Duration
	PostWindow       time.Duration
	ReclassifyWindow time.Duration
	MaxConcurrent    int64
}

func (c *Config) applyDefaults() {
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	if c.PostWindow <= 0 {
		c.PostWindow = 24 * time.Hour
	}
	if c.ReclassifyWindow <= 0 {
		c.ReclassifyWindow = 24 * time.Hour
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 5
	}
}

// Pipeline keeps each subreddit's classified posts fresh: reads serve the
// cache while it is inside the TTL, otherwise a refresh fetches from Reddit,
// classifies every post and merges the results into storage.
type Pipeline struct {
	store      SubredditStore
	categories CategoryStore
	source     Source
	classifier Classifier
	queue      JobQueue
	cfg        Config

	refreshGroup singleflight.Group
}

func New(store SubredditStore, categories CategoryStore, source Source, classifier Classifier, queue JobQueue, cfg Config) *Pipeline {
	cfg.applyDefaults()
	return &Pipeline{
		store:      store,
		categories: categories,
		source:     source,
		classifier: classifier,
		queue:      queue,
		cfg:        cfg,
	}
}

// GetPosts returns a subreddit's posts with their relevant categories,
// refreshing from Reddit when the cache is stale. When the refresh fails and
// cached posts exist, the stale cache is served instead of an error.
func (p *Pipeline) GetPosts(ctx context.Context, name string) ([]model.PostWithCategories, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	sub, err := p.store.GetByName(name)
	if err != nil {
		slog.Error("error reading subreddit, treating as cache miss", "subreddit", name, "error", err)
		sub = nil
	}

	var cached []model.PostWithCategories
	if sub != nil {
		cached, err = p.store.GetPostsWithCategories(sub.ID)
		if err != nil {
			slog.Error("error reading cached posts, treating as cache miss", "subreddit", name, "error", err)
			cached = nil
		}

		if IsFresh(sub.LastFetchedAt, time.Now(), p.cfg.TTL) && len(cached) > 0 {
			return cached, nil
		}
	}

	// Concurrent requests for the same subreddit share one refresh.
	result, err, _ := p.refreshGroup.Do(name, func() (interface{}, error) {
		return p.refresh(ctx, name)
	})

	if err != nil {
		if len(cached) > 0 {
			slog.Warn("refresh failed, serving stale cache", "subreddit", name, "error", err)
			return cached, nil
		}
		if errors.Is(err, reddit.ErrNotFound) {
			return nil, ErrNotFound
		}
		slog.Error("refresh failed with no cache to fall back on", "subreddit", name, "error", err)
		return nil, ErrUnavailable
	}

	return result.([]model.PostWithCategories), nil
}

func (p *Pipeline) refresh(ctx context.Context, name string) ([]model.PostWithCategories, error) {
	about, err := p.source.FetchAbout(name)
	if err != nil {
		return nil, err
	}

	rawPosts, err := p.source.FetchRecentPosts(name, p.cfg.PostWindow)
	if err != nil {
		return nil, err
	}

	taxonomy, err := p.loadTaxonomy()
	if err != nil {
		// Posts are still ingested; they just carry no category verdicts.
		slog.Error("error loading category taxonomy, skipping classification", "error", err)
		taxonomy = nil
	}

	verdicts := p.classifyAll(ctx, rawPosts, taxonomy)

	now := time.Now().UTC()

	// Persist order matters: subreddit before posts before links, so a link
	// never references a row that does not exist yet. Failures here are
	// logged, not returned: the in-memory result below is what the caller
	// gets either way.
	sub := &model.Subreddit{
		Name:          name,
		Description:   about.Description,
		MemberCount:   about.MemberCount,
		LastFetchedAt: &now,
	}
	if err := p.store.Upsert(sub); err != nil {
		slog.Error("error upserting subreddit", "subreddit", name, "error", err)
	}

	posts := make([]model.Post, 0, len(rawPosts))
	for _, rp := range rawPosts {
		posts = append(posts, model.Post{
			SubredditID:  sub.ID,
			RedditPostID: rp.RedditPostID,
			Title:        rp.Title,
			Content:      rp.Content,
			Score:        rp.Score,
			NumComments:  rp.NumComments,
			CreatedUTC:   rp.CreatedUTC,
			AnalyzedAt:   now,
			URL:          rp.URL,
		})
	}

	saved, err := p.store.UpsertPosts(sub.ID, posts)
	if err != nil {
		slog.Error("error upserting posts", "subreddit", name, "error", err)
	}

	idByRedditID := make(map[string]int64, len(saved))
	for _, sp := range saved {
		idByRedditID[sp.RedditPostID] = sp.ID
	}

	var links []model.PostCategory
	result := make([]model.PostWithCategories, 0, len(posts))
	for i, post := range posts {
		post.ID = idByRedditID[post.RedditPostID]

		entry := model.PostWithCategories{Post: post}
		for _, v := range verdicts[i] {
			link := model.PostCategory{
				PostID:     post.ID,
				CategoryID: v.CategoryID,
				IsRelevant: v.IsRelevant,
			}

			// Irrelevant verdicts are stored as explicit negatives but do
			// not show up in the read view.
			if post.ID != 0 {
				links = append(links, link)
			}
			if v.IsRelevant {
				entry.Categories = append(entry.Categories, link)
			}
		}

		result = append(result, entry)
	}

	if err := p.store.UpsertPostCategories(links); err != nil {
		slog.Error("error upserting post categories", "subreddit", name, "error", err)
	}

	return result, nil
}

func (p *Pipeline) classifyAll(ctx context.Context, rawPosts []reddit.Post, taxonomy []llm.CategoryDef) [][]llm.Verdict {
	verdicts := make([][]llm.Verdict, len(rawPosts))
	if len(taxonomy) == 0 {
		return verdicts
	}

	sem := semaphore.NewWeighted(p.cfg.MaxConcurrent)
	var wg sync.WaitGroup

	for i, rp := range rawPosts {
		if err := sem.Acquire(ctx, 1); err != nil {
			slog.Warn("classification fan-out interrupted", "error", err)
			break
		}

		wg.Add(1)
		go func(i int, rp reddit.Post) {
			defer wg.Done()
			defer sem.Release(1)
			verdicts[i] = p.classifier.Classify(llm.PostInput{Title: rp.Title, Body: rp.Content}, taxonomy)
		}(i, rp)
	}

	wg.Wait()
	return verdicts
}

func (p *Pipeline) loadTaxonomy() ([]llm.CategoryDef, error) {
	categories, err := p.categories.GetAll()
	if err != nil {
		return nil, err
	}

	taxonomy := make([]llm.CategoryDef, 0, len(categories))
	for _, c := range categories {
		taxonomy = append(taxonomy, llm.CategoryDef{ID: c.ID, Name: c.Name, Description: c.Description})
	}
	return taxonomy, nil
}

// AddSubreddit validates the subreddit upstream and registers it with a nil
// last_fetched_at so the first GetPosts triggers a full fetch.
func (p *Pipeline) AddSubreddit(ctx context.Context, name string) error {
	name = strings.ToLower(strings.TrimSpace(name))

	about, err := p.source.FetchAbout(name)
	if err != nil {
		if errors.Is(err, reddit.ErrNotFound) {
			return ErrNotFound
		}
		slog.Error("error validating subreddit upstream", "subreddit", name, "error", err)
		return ErrUnavailable
	}

	return p.store.Upsert(&model.Subreddit{
		Name:          name,
		Description:   about.Description,
		MemberCount:   about.MemberCount,
		LastFetchedAt: nil,
	})
}

func (p *Pipeline) ListSubreddits(ctx context.Context) ([]model.Subreddit, error) {
	return p.store.GetAll()
}

func (p *Pipeline) ListCategories(ctx context.Context) ([]model.Category, error) {
	return p.categories.GetAll()
}

// AddCategory registers a custom category and triggers re-classification of
// recent posts against it. With a queue configured the re-classification runs
// in the worker; otherwise it runs inline.
func (p *Pipeline) AddCategory(ctx context.Context, name string, description string) (*model.Category, error) {
	category, err := p.categories.Insert(name, description)
	if err != nil {
		return nil, err
	}

	if p.queue != nil {
		err := p.queue.Push(ctx, db.ReclassifyQueueKey, strconv.FormatInt(category.ID, 10))
		if err == nil {
			return category, nil
		}
		slog.Error("error enqueueing reclassify job, running inline", "category_id", category.ID, "error", err)
	}

	if err := p.ReclassifyCategory(ctx, category.ID); err != nil {
		slog.Error("error reclassifying posts for new category", "category_id", category.ID, "error", err)
	}

	return category, nil
}

// ReclassifyCategory re-analyzes posts from the configured window against a
// single category and stores the resulting links.
func (p *Pipeline) ReclassifyCategory(ctx context.Context, categoryID int64) error {
	category, err := p.categories.GetByID(categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrNotFound
	}

	posts, err := p.store.GetRecentPosts(time.Now().Add(-p.cfg.ReclassifyWindow))
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		return nil
	}

	def := llm.CategoryDef{ID: category.ID, Name: category.Name, Description: category.Description}

	links := make([]model.PostCategory, len(posts))
	sem := semaphore.NewWeighted(p.cfg.MaxConcurrent)
	var wg sync.WaitGroup

	for i, post := range posts {
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}

		wg.Add(1)
		go func(i int, post model.Post) {
			defer wg.Done()
			defer sem.Release(1)
			relevant := p.classifier.ClassifyOne(llm.PostInput{Title: post.Title, Body: post.Content}, def)
			links[i] = model.PostCategory{PostID: post.ID, CategoryID: category.ID, IsRelevant: relevant}
		}(i, post)
	}

	wg.Wait()

	return p.store.UpsertPostCategories(links)
}

// GetThemes runs an ad-hoc theme analysis over a subreddit's recent posts.
// Nothing is persisted; the posts come straight from the source.
func (p *Pipeline) GetThemes(ctx context.Context, name string) ([]llm.Theme, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	rawPosts, err := p.source.FetchRecentPosts(name, p.cfg.PostWindow)
	if err != nil {
		if errors.Is(err, reddit.ErrNotFound) {
			return nil, ErrNotFound
		}
		slog.Error("error fetching posts for theme analysis", "subreddit", name, "error", err)
		return nil, ErrUnavailable
	}

	inputs := make([]llm.ThemeInput, 0, len(rawPosts))
	for _, rp := range rawPosts {
		inputs = append(inputs, llm.ThemeInput{
			ID:      rp.RedditPostID,
			Title:   rp.Title,
			Content: rp.Content,
			URL:     rp.URL,
		})
	}

	return p.classifier.AnalyzeThemes(inputs)
}
