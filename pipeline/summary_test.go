package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/use-agent/pricelens/pipeline"
)

func TestSummarize(t *testing.T) {
	t.Parallel()

	aiErrs := []string{"OpenAI rate limit or quota exceeded"}

	tests := []struct {
		name    string
		signals pipeline.Signals
		want    string
	}{
		{"unavailable wins over everything", pipeline.Signals{Blocked: true, Unavailable: true, AIErrors: aiErrs}, pipeline.NoteUnavailable},
		{"blocked with ai errors", pipeline.Signals{Blocked: true, AIErrors: aiErrs}, pipeline.NoteBlockedAI},
		{"blocked only", pipeline.Signals{Blocked: true}, pipeline.NoteBlocked},
		{"ai errors only", pipeline.Signals{AIErrors: aiErrs}, pipeline.NoteAIFailed},
		{"nothing", pipeline.Signals{}, pipeline.NoteGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, pipeline.Summarize(tt.signals))
		})
	}
}

func TestSummarize_Wording(t *testing.T) {
	t.Parallel()

	assert.Contains(t, pipeline.Summarize(pipeline.Signals{Blocked: true, Unavailable: true}), "unavailable")
	assert.Contains(t, pipeline.Summarize(pipeline.Signals{Blocked: true, AIErrors: []string{"x"}}), "blocked")

	// Notes are attached to html, ai and url-pattern payloads alike, so
	// none may name the method that produced the result.
	for _, note := range []string{pipeline.NoteUnavailable, pipeline.NoteBlockedAI, pipeline.NoteBlocked, pipeline.NoteAIFailed, pipeline.NoteGeneric} {
		assert.NotContains(t, note, "URL", note)
	}
}
