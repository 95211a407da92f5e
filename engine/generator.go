package engine

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/microcrowd/engine/llm"
	"github.com/microcrowd/engine/types"
	"go.uber.org/zap"
)

// Generator produces the next utterance text for a scheduled speaker.
// Implementations must not mutate the conversation.
type Generator interface {
	Generate(ctx context.Context, conv *types.Conversation, sel Selection) (string, error)
}

// TokenRecorder receives token usage after each successful provider
// completion. A nil TokenRecorder records nothing.
type TokenRecorder interface {
	RecordLLMTokens(provider, model string, promptTokens, completionTokens int)
}

// GeneratorConfig tunes the LLM-backed generator.
type GeneratorConfig struct {
	Model       string
	Temperature float32
	MaxTokens   int
	// ContextWindowTokens caps transcript history per request.
	ContextWindowTokens int
	// Timeout bounds a single generation call. Zero means no extra bound
	// beyond the caller's context.
	Timeout time.Duration
}

// LLMGenerator generates utterances through an llm.Provider, biasing each
// request toward the scheduled speaker's persona profile.
type LLMGenerator struct {
	provider llm.Provider
	cfg      GeneratorConfig
	window   *Window
	tokens   TokenRecorder
	logger   *zap.Logger
}

// NewLLMGenerator creates a generator bound to the given provider.
func NewLLMGenerator(provider llm.Provider, cfg GeneratorConfig, window *Window, logger *zap.Logger) *LLMGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMGenerator{provider: provider, cfg: cfg, window: window, logger: logger}
}

// SetTokenRecorder attaches a token-usage sink for completed generations.
func (g *LLMGenerator) SetTokenRecorder(r TokenRecorder) {
	g.tokens = r
}

// Generate produces the utterance for sel. Scripted moderator turns echo the
// guide question without a provider call; everything else goes through the
// provider. Provider faults are wrapped as GENERATION_FAILED with the
// upstream retryability preserved.
func (g *LLMGenerator) Generate(ctx context.Context, conv *types.Conversation, sel Selection) (string, error) {
	if sel.Speaker.Kind == types.SpeakerModerator && conv.ModeratorType == types.ModeratorScripted {
		return g.scriptedModeratorTurn(conv, sel), nil
	}

	var system string
	switch sel.Speaker.Kind {
	case types.SpeakerModerator:
		system = buildModeratorSystemPrompt(conv, sel.GuideQuestion)
	case types.SpeakerPersona:
		p, ok := conv.PersonaByID(sel.Speaker.PersonaID)
		if !ok {
			return "", types.NewError(types.ErrInternalError, "scheduled persona not in roster").
				WithField("persona_id")
		}
		system = buildPersonaSystemPrompt(conv, p)
	}

	history := transcriptMessages(conv, sel.Speaker)
	if len(history) == 0 {
		// Opening turn: seed the discussion so the model has a user message.
		history = []llm.Message{{
			Role:    llm.RoleUser,
			Content: "The focus group is starting now. Please begin.",
		}}
	}

	messages := g.window.Fit(llm.Message{Role: llm.RoleSystem, Content: system}, history)

	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.provider.Completion(ctx, &llm.ChatRequest{
		Model:       g.cfg.Model,
		Messages:    messages,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return "", wrapGenerationError(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", types.NewError(types.ErrGenerationFailed, "provider returned an empty utterance").
			WithHTTPStatus(http.StatusBadGateway).
			WithRetryable(true)
	}

	if g.tokens != nil {
		g.tokens.RecordLLMTokens(g.provider.Name(), g.cfg.Model,
			resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	}

	g.logger.Debug("utterance generated",
		zap.String("conversation_id", conv.ID),
		zap.String("speaker_kind", string(sel.Speaker.Kind)),
		zap.Int("context_messages", len(messages)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("duration", time.Since(start)),
	)

	return text, nil
}

// scriptedModeratorTurn emits the guide question verbatim.
func (g *LLMGenerator) scriptedModeratorTurn(conv *types.Conversation, sel Selection) string {
	if sel.GuideQuestion != "" {
		return sel.GuideQuestion
	}
	return "Let's continue the discussion about " + conv.Topic + "."
}

// wrapGenerationError converts a provider error into the engine taxonomy,
// carrying the upstream retry hint through.
func wrapGenerationError(err error) *types.Error {
	out := types.NewError(types.ErrGenerationFailed, "response generation failed").
		WithCause(err).
		WithHTTPStatus(http.StatusBadGateway)

	if llmErr, ok := err.(*llm.Error); ok {
		out.Retryable = llmErr.Retryable
		if llmErr.Code == llm.ErrUpstreamTimeout {
			out.HTTPStatus = http.StatusGatewayTimeout
		}
	}
	return out
}
