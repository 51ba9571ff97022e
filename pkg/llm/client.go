package llm

import "strings"

// CategoryDef is one entry of the classification taxonomy. The taxonomy is
// passed explicitly on every call so newly added categories need no changes
// here.
type CategoryDef struct {
	ID          int64
	Name        string
	Description string
}

type PostInput struct {
	Title string
	Body  string
}

// Verdict is the model's relevance call for one post against one category.
type Verdict struct {
	CategoryID int64
	IsRelevant bool
}

type Backend interface {
	Complete(systemPrompt string, userPrompt string) (string, error)
	ModelName() string
}

func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	// Some model responses include extra prose around JSON.
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}
