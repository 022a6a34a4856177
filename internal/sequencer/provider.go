package sequencer

import (
	"context"
	"fmt"
)

// Request carries what a provider needs to produce the next utterance.
type Request struct {
	Speaker  string
	Receiver string
	Turn     int    // zero-based turn counter
	Prompt   string // latest message addressed to the speaker, empty when none
}

// ResponseProvider produces the content of a participant's turn. The stub
// implementation below stands in for a real model API behind the same seam.
type ResponseProvider interface {
	Respond(ctx context.Context, req Request) (string, error)
}

// StubProvider synthesizes deterministic placeholder responses keyed by the
// turn counter.
type StubProvider struct {
	// Lines overrides the canned response lines when non-empty.
	Lines []string
}

var defaultLines = []string{
	"Interesting point, let me build on that.",
	"I see it differently, here is my take.",
	"Agreed on the broad strokes, with one caveat.",
	"Let me summarize where we stand.",
}

func (p *StubProvider) Respond(_ context.Context, req Request) (string, error) {
	lines := p.Lines
	if len(lines) == 0 {
		lines = defaultLines
	}
	line := lines[req.Turn%len(lines)]

	if req.Prompt == "" {
		return fmt.Sprintf("RESPONSE from %s: no prior message received, starting the conversation. %s",
			req.Speaker, line), nil
	}
	return fmt.Sprintf("RESPONSE from %s: I received %q. %s",
		req.Speaker, clip(req.Prompt, 50), line), nil
}

// clip shortens s to maxLen runes, never splitting a multibyte character.
func clip(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
