package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/ajitgoel/reddit-analytics/db"
	"github.com/ajitgoel/reddit-analytics/internal/pipeline"
	"github.com/ajitgoel/reddit-analytics/internal/repository"
	"github.com/ajitgoel/reddit-analytics/pkg/llm"
	"github.com/ajitgoel/reddit-analytics/pkg/reddit"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	conn, err := db.Connect(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer conn.Close()

	var backend llm.Backend
	if os.Getenv("LLM_PROVIDER") == "anthropic" {
		backend = llm.NewAnthropicClient(os.Getenv("ANTHROPIC_API_KEY"))
	} else {
		backend = llm.NewOpenAIClient(os.Getenv("OPENAI_API_KEY"))
	}

	pipe := pipeline.New(
		repository.NewSubredditRepository(conn),
		repository.NewCategoryRepository(conn),
		reddit.NewClient(os.Getenv("REDDIT_USER_AGENT")),
		llm.NewClassifier(backend),
		nil,
		pipeline.Config{
			TTL:        envHours("REFRESH_TTL_HOURS", 24),
			PostWindow: envHours("POST_WINDOW_HOURS", 24),
		},
	)

	schedule := os.Getenv("REFRESH_SCHEDULE")
	if schedule == "" {
		schedule = "@hourly"
	}

	refreshAll(pipe)

	c := cron.New()
	_, err = c.AddFunc(schedule, func() {
		refreshAll(pipe)
	})
	if err != nil {
		log.Fatalf("invalid refresh schedule %q: %v", schedule, err)
	}

	slog.Info("refresher started", "schedule", schedule)
	c.Run()
}

// refreshAll walks every tracked subreddit through GetPosts. Fresh ones are a
// cheap cache read; stale ones trigger the full fetch-classify-persist cycle.
func refreshAll(pipe *pipeline.Pipeline) {
	ctx := context.Background()

	subreddits, err := pipe.ListSubreddits(ctx)
	if err != nil {
		slog.Error("error listing subreddits", "error", err)
		return
	}

	var refreshed, failed int

	for _, s := range subreddits {
		start := time.Now()

		posts, err := pipe.GetPosts(ctx, s.Name)
		if err != nil {
			slog.Error("error refreshing subreddit", "subreddit", s.Name, "error", err)
			failed++
			continue
		}

		slog.Info("subreddit refreshed", "subreddit", s.Name, "posts", len(posts), "took", time.Since(start).String())
		refreshed++
	}

	slog.Info("refresh sweep complete", "refreshed", refreshed, "failed", failed)
}

func envHours(name string, defaultHours int) time.Duration {
	value := os.Getenv(name)
	if value == "" {
		return time.Duration(defaultHours) * time.Hour
	}

	hours, err := strconv.Atoi(value)
	if err != nil || hours < 1 {
		slog.Warn("invalid env value, using default", "name", name, "value", value, "default", defaultHours)
		return time.Duration(defaultHours) * time.Hour
	}

	return time.Duration(hours) * time.Hour
}
