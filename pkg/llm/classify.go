package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

const (
	titleMaxChars = 1000
	bodyMaxChars  = 2000
)

const classifySystemPrompt = `You are a Reddit post analyzer. You are given one post and a list of categories. For every category decide whether the post belongs to it.

Rules:
1. Judge each category independently; a post can match several categories or none.
2. Base the decision only on the post title and content provided.
3. Respond ONLY with a JSON object, no additional text or formatting. Example:
{"categories":[{"id":1,"is_relevant":true},{"id":2,"is_relevant":false}]}
4. Include exactly one entry per listed category, using the numeric category id.`

// Classifier turns a post into per-category relevance verdicts. Model or
// parse failures never surface as errors: the post still gets stored, just
// with every category marked not relevant.
type Classifier struct {
	backend Backend
}

func NewClassifier(backend Backend) *Classifier {
	return &Classifier{backend: backend}
}

func (c *Classifier) Classify(post PostInput, taxonomy []CategoryDef) []Verdict {
	if len(taxonomy) == 0 {
		return nil
	}

	content, err := c.backend.Complete(classifySystemPrompt, buildClassifyPrompt(post, taxonomy))
	if err != nil {
		slog.Warn("classification degraded to defaults", "error", err)
		return defaultVerdicts(taxonomy)
	}

	verdicts, err := parseVerdicts(content, taxonomy)
	if err != nil {
		slog.Warn("classification degraded to defaults", "error", err)
		return defaultVerdicts(taxonomy)
	}

	return verdicts
}

// ClassifyOne checks a post against a single category, degrading to false.
func (c *Classifier) ClassifyOne(post PostInput, category CategoryDef) bool {
	verdicts := c.Classify(post, []CategoryDef{category})
	if len(verdicts) != 1 {
		return false
	}
	return verdicts[0].IsRelevant
}

func buildClassifyPrompt(post PostInput, taxonomy []CategoryDef) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Post Title: %s\n", truncate(post.Title, titleMaxChars)))

	body := truncate(post.Body, bodyMaxChars)
	if body == "" {
		body = "(No content)"
	}
	sb.WriteString(fmt.Sprintf("Post Content: %s\n\n", body))

	sb.WriteString("Categories to analyze:\n")
	for _, cat := range taxonomy {
		sb.WriteString(fmt.Sprintf("%d. %s: %s\n", cat.ID, cat.Name, cat.Description))
	}

	return sb.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func parseVerdicts(content string, taxonomy []CategoryDef) ([]Verdict, error) {
	content = cleanJSONResponse(content)

	var parsed struct {
		Categories []struct {
			ID         int64 `json:"id"`
			IsRelevant bool  `json:"is_relevant"`
		} `json:"categories"`
	}

	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w, content: %s", err, content)
	}

	byID := make(map[int64]bool, len(parsed.Categories))
	for _, entry := range parsed.Categories {
		byID[entry.ID] = entry.IsRelevant
	}

	verdicts := make([]Verdict, 0, len(taxonomy))
	for _, cat := range taxonomy {
		relevant, ok := byID[cat.ID]
		if !ok {
			return nil, fmt.Errorf("response missing category %d (%s)", cat.ID, cat.Name)
		}
		verdicts = append(verdicts, Verdict{CategoryID: cat.ID, IsRelevant: relevant})
	}

	return verdicts, nil
}

func defaultVerdicts(taxonomy []CategoryDef) []Verdict {
	verdicts := make([]Verdict, 0, len(taxonomy))
	for _, cat := range taxonomy {
		verdicts = append(verdicts, Verdict{CategoryID: cat.ID, IsRelevant: false})
	}
	return verdicts
}
