package main

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/ajitgoel/reddit-analytics/internal/pipeline"
)

func configFromEnv() pipeline.Config {
	return pipeline.Config{
		TTL:              envHours("REFRESH_TTL_HOURS", 24),
		PostWindow:       envHours("POST_WINDOW_HOURS", 24),
		ReclassifyWindow: envHours("RECLASSIFY_WINDOW_HOURS", 24),
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
