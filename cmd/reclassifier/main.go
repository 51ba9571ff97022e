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
)

func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	queue, err := db.ConnectRedis(os.Getenv("REDIS_URL"))
	if err != nil {
		log.Fatalf("error connecting to Redis: %v", err)
	}
	defer queue.Close()

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
			ReclassifyWindow: envHours("RECLASSIFY_WINDOW_HOURS", 24),
		},
	)

	ctx := context.Background()

	for {
		id, err := queue.Pop(ctx, db.ReclassifyQueueKey, 0)
		if err != nil {
			slog.Error("error popping from Redis queue", "error", err)
			break
		}

		categoryID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			slog.Error("invalid category id in queue", "id", id, "error", err)
			continue
		}

		start := time.Now()

		err = pipe.ReclassifyCategory(ctx, categoryID)
		if err != nil {
			slog.Error("error reclassifying posts for category", "category_id", categoryID, "error", err)
			continue
		}

		slog.Info("category reclassified", "category_id", categoryID, "took", time.Since(start).String())
	}
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
