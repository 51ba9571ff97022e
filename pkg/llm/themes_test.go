package llm

import (
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestAnalyzeThemes(t *testing.T) {
	backend := &fakeBackend{
		response: `{"themes":[{"name":"Solution Requests","description":"Users asking for help","sentiment":"neutral","keywords":["help","how to"],"posts":["p1"],"post_sentiments":{"p1":"neutral"}}]}`,
	}

	posts := []ThemeInput{
		{ID: "p1", Title: "How do I configure this?", URL: "https://reddit.com/p1"},
		{ID: "p2", Title: "Release notes", URL: "https://reddit.com/p2"},
	}

	themes, err := NewClassifier(backend).AnalyzeThemes(posts)

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(themes))
	assert.Equal(t, "Solution Requests", themes[0].Name)
	assert.Equal(t, "neutral", themes[0].Sentiment)
	assert.Equal(t, 1, themes[0].PostCount)
	assert.Equal(t, "How do I configure this?", themes[0].Posts[0].Title)
	assert.Equal(t, "https://reddit.com/p1", themes[0].Posts[0].URL)
}

func TestAnalyzeThemes_InvalidSentimentNormalized(t *testing.T) {
	backend := &fakeBackend{
		response: `{"themes":[{"name":"Pain & Anger","description":"Frustration","sentiment":"furious","keywords":[],"posts":["p1"],"post_sentiments":{"p1":"angry"}}]}`,
	}

	themes, err := NewClassifier(backend).AnalyzeThemes([]ThemeInput{{ID: "p1", Title: "Ugh"}})

	assert.Equal(t, nil, err)
	assert.Equal(t, "neutral", themes[0].Sentiment)
	assert.Equal(t, "neutral", themes[0].Posts[0].Sentiment)
}

func TestAnalyzeThemes_UnknownPostIDSkipped(t *testing.T) {
	backend := &fakeBackend{
		response: `{"themes":[{"name":"Ghost","description":"Hallucinated posts","sentiment":"neutral","keywords":[],"posts":["nope"],"post_sentiments":{}}]}`,
	}

	themes, err := NewClassifier(backend).AnalyzeThemes([]ThemeInput{{ID: "p1", Title: "Real post"}})

	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(themes))
}

func TestAnalyzeThemes_BackendError(t *testing.T) {
	backend := &fakeBackend{err: errors.New("model unavailable")}

	_, err := NewClassifier(backend).AnalyzeThemes([]ThemeInput{{ID: "p1", Title: "x"}})

	assert.NotEqual(t, nil, err)
}

func TestAnalyzeThemes_NoPosts(t *testing.T) {
	backend := &fakeBackend{}

	themes, err := NewClassifier(backend).AnalyzeThemes(nil)

	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(themes))
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain JSON unchanged",
			input: `{"categories":[]}`,
			want:  `{"categories":[]}`,
		},
		{
			name:  "strips json fenced block",
			input: "```json\n{\"categories\":[]}\n```",
			want:  `{"categories":[]}`,
		},
		{
			name:  "strips plain fenced block",
			input: "```\n{\"categories\":[]}\n```",
			want:  `{"categories":[]}`,
		},
		{
			name:  "extracts JSON from surrounding prose",
			input: "Here is the result: {\"categories\":[]} hope it helps",
			want:  `{"categories":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cleanJSONResponse(tt.input)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
