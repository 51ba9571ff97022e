package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/ajitgoel/reddit-analytics/db"
	"github.com/ajitgoel/reddit-analytics/internal/handler"
	"github.com/ajitgoel/reddit-analytics/internal/pipeline"
	"github.com/ajitgoel/reddit-analytics/internal/repository"
	"github.com/ajitgoel/reddit-analytics/pkg/llm"
	"github.com/ajitgoel/reddit-analytics/pkg/reddit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	conn, err := db.Connect(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer conn.Close()

	var queue pipeline.JobQueue
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		q, err := db.ConnectRedis(redisURL)
		if err != nil {
			log.Fatalf("error connecting to Redis: %v", err)
		}
		defer q.Close()
		queue = q
	} else {
		slog.Warn("REDIS_URL not set, category re-classification will run inline")
	}

	pipe := pipeline.New(
		repository.NewSubredditRepository(conn),
		repository.NewCategoryRepository(conn),
		reddit.NewClient(os.Getenv("REDDIT_USER_AGENT")),
		llm.NewClassifier(newBackend()),
		queue,
		configFromEnv(),
	)

	subredditHandler := handler.NewSubredditHandler(pipe)
	categoryHandler := handler.NewCategoryHandler(pipe)

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}

	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	r.GET("/subreddits", subredditHandler.GetSubreddits)
	r.POST("/subreddits", subredditHandler.AddSubreddit)
	r.GET("/subreddits/:name/posts", subredditHandler.GetPosts)
	r.GET("/subreddits/:name/themes", subredditHandler.GetThemes)
	r.GET("/categories", categoryHandler.GetCategories)
	r.POST("/categories", categoryHandler.AddCategory)
	r.GET("/health", subredditHandler.GetHealth)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	err = r.Run(":" + port)
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}

func newBackend() llm.Backend {
	switch os.Getenv("LLM_PROVIDER") {
	case "anthropic":
		return llm.NewAnthropicClient(os.Getenv("ANTHROPIC_API_KEY"))
	default:
		return llm.NewOpenAIClient(os.Getenv("OPENAI_API_KEY"))
	}
}
