// Package prompt suggests a journaling prompt from the user's previous
// entries. Generation never fails: any backend problem yields
// FallbackPrompt.
package prompt

import (
	"context"
	"strings"
	"text/template"
	"time"

	"github.com/MrSnakeDoc/serene/internal/logger"
)

// FallbackPrompt is returned whenever no suggestion could be generated
const FallbackPrompt = "Sorry, I couldn't come up with a suggestion right now. How about writing about your favorite memory?"

// NoEntriesText stands in for the entries when the user has none
const NoEntriesText = "The user has no previous journal entries."

var instructions = template.Must(template.New("prompt").Parse(
	`You are a helpful AI assistant designed to generate personalized journal prompts.

Based on the user's previous journal entries, suggest a new and engaging journal prompt to encourage further reflection.
The prompt should be tailored to the user's interests, experiences, and emotional state as reflected in their writing.
The prompt should be open-ended and encourage the user to explore their thoughts and feelings in a meaningful way.
Answer with the prompt only.

Previous entries:
{{if .}}{{.}}{{else}}` + NoEntriesText + `{{end}}

Generated Prompt:`))

// Render fills the instruction template. Blank input is replaced by
// NoEntriesText; anything else is inserted verbatim.
func Render(previousEntries string) string {
	if strings.TrimSpace(previousEntries) == "" {
		previousEntries = ""
	}
	var b strings.Builder
	// the template only interpolates a string, Execute cannot fail
	_ = instructions.Execute(&b, previousEntries)
	return b.String()
}

// Backend turns a rendered instruction into model text
type Backend interface {
	Complete(ctx context.Context, instruction string) (string, error)
}

// Generator wraps a Backend with a deadline and the fallback
type Generator struct {
	backend Backend
	timeout time.Duration
	log     logger.Logger
}

// NewGenerator builds a Generator; a nil backend always answers with the
// fallback.
func NewGenerator(backend Backend, timeout time.Duration, log logger.Logger) *Generator {
	return &Generator{backend: backend, timeout: timeout, log: log}
}

// Generate returns one suggested prompt, never an empty string
func (g *Generator) Generate(ctx context.Context, previousEntries string) string {
	if g.backend == nil {
		return FallbackPrompt
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	text, err := g.backend.Complete(ctx, Render(previousEntries))
	if err != nil {
		g.log.Warn("prompt generation failed, using fallback", logger.Error(err))
		return FallbackPrompt
	}

	text = clean(text)
	if text == "" {
		g.log.Warn("prompt backend returned no text, using fallback")
		return FallbackPrompt
	}
	return text
}

// clean trims whitespace and a pair of wrapping quotes
func clean(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}
