package engine

import (
	"github.com/microcrowd/engine/llm"
	"github.com/microcrowd/engine/llm/tokenizer"
)

// Window caps how much transcript history is sent to the generation
// provider. Retention is newest-first: the system prompt is always kept, then
// history messages are admitted from the most recent backwards until the
// token budget is exhausted. The most recent history message is always kept
// so the speaker has something to react to.
type Window struct {
	tok    tokenizer.Tokenizer
	budget int
}

// NewWindow creates a window with the given token budget. A non-positive
// budget falls back to the tokenizer's model maximum.
func NewWindow(tok tokenizer.Tokenizer, budget int) *Window {
	if budget <= 0 {
		budget = tok.MaxTokens()
	}
	return &Window{tok: tok, budget: budget}
}

// Fit returns system followed by the newest suffix of history that fits the
// budget. Token counting errors degrade to keeping everything rather than
// failing the turn.
func (w *Window) Fit(system llm.Message, history []llm.Message) []llm.Message {
	used, err := w.tok.CountMessages([]tokenizer.Message{{Role: string(system.Role), Content: system.Content}})
	if err != nil {
		return append([]llm.Message{system}, history...)
	}

	// Walk backwards admitting messages until the budget is hit.
	keepFrom := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		n, err := w.tok.CountMessages([]tokenizer.Message{{Role: string(history[i].Role), Content: history[i].Content}})
		if err != nil {
			return append([]llm.Message{system}, history...)
		}
		if used+n > w.budget && keepFrom < len(history) {
			break
		}
		used += n
		keepFrom = i
	}

	out := make([]llm.Message, 0, 1+len(history)-keepFrom)
	out = append(out, system)
	out = append(out, history[keepFrom:]...)
	return out
}
