package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

const themeSystemPrompt = `You are a Reddit post analyzer. Your task is to:
1. Identify common themes across posts
2. Analyze sentiment for each post and theme
3. Extract key discussion points and keywords

For each theme, provide:
- A clear, concise name
- A brief description of what the theme represents
- Overall sentiment: exactly one of "positive", "negative" or "neutral"
- Up to 5 keywords
- The ids of the posts that belong to this theme, with a per-post sentiment

Group posts that share similar topics, concerns, or discussion patterns. A post
can belong to multiple themes. Only include themes with at least one post.

Respond ONLY with a JSON object, no additional text:
{
  "themes": [
    {
      "name": "Solution Requests",
      "description": "Posts where users are seeking solutions to problems",
      "sentiment": "neutral",
      "keywords": ["help", "solution"],
      "posts": ["post-id-1"],
      "post_sentiments": {"post-id-1": "neutral"}
    }
  ]
}`

const maxThemeKeywords = 5

type ThemeInput struct {
	ID      string
	Title   string
	Content string
	URL     string
}

type ThemePost struct {
	Title     string
	URL       string
	Sentiment string
}

type Theme struct {
	Name        string
	Description string
	Sentiment   string
	Keywords    []string
	PostCount   int
	Posts       []ThemePost
}

// AnalyzeThemes groups a batch of posts into named themes. Unlike Classify
// this surfaces failures: there is no safe default for an ad-hoc analysis.
func (c *Classifier) AnalyzeThemes(posts []ThemeInput) ([]Theme, error) {
	if len(posts) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	sb.WriteString("Posts to analyze:\n\n")
	for _, p := range posts {
		sb.WriteString(fmt.Sprintf("Post ID: %s\nTitle: %s\nContent: %s\n\n",
			p.ID, truncate(p.Title, titleMaxChars), truncate(p.Content, bodyMaxChars)))
	}

	content, err := c.backend.Complete(themeSystemPrompt, sb.String())
	if err != nil {
		return nil, err
	}

	content = cleanJSONResponse(content)

	var parsed struct {
		Themes []struct {
			Name           string            `json:"name"`
			Description    string            `json:"description"`
			Sentiment      string            `json:"sentiment"`
			Keywords       []string          `json:"keywords"`
			Posts          []string          `json:"posts"`
			PostSentiments map[string]string `json:"post_sentiments"`
		} `json:"themes"`
	}

	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse themes response: %w, content: %s", err, content)
	}

	byID := make(map[string]ThemeInput, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}

	var themes []Theme
	for _, raw := range parsed.Themes {
		theme := Theme{
			Name:        raw.Name,
			Description: raw.Description,
			Sentiment:   normalizeSentiment(raw.Sentiment),
			Keywords:    raw.Keywords,
		}

		if len(theme.Keywords) > maxThemeKeywords {
			theme.Keywords = theme.Keywords[:maxThemeKeywords]
		}

		for _, postID := range raw.Posts {
			input, ok := byID[postID]
			if !ok {
				continue
			}
			theme.Posts = append(theme.Posts, ThemePost{
				Title:     input.Title,
				URL:       input.URL,
				Sentiment: normalizeSentiment(raw.PostSentiments[postID]),
			})
		}

		theme.PostCount = len(theme.Posts)
		if theme.PostCount == 0 {
			continue
		}

		themes = append(themes, theme)
	}

	return themes, nil
}

func normalizeSentiment(s string) string {
	switch s {
	case "positive", "negative", "neutral":
		return s
	default:
		return "neutral"
	}
}
