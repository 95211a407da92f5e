package engine

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/microcrowd/engine/types"
	"go.uber.org/zap"
)

// Recorder receives engine lifecycle events for metrics collection.
// A nil Recorder is valid and records nothing.
type Recorder interface {
	ConversationStarted()
	TurnCommitted(speakerKind string, duration time.Duration)
	GenerationFailed(code string)
	ConversationFinished(status string)
}

// Snapshotter archives conversation state after each committed mutation.
// Persistence is write-behind: the in-memory state stays authoritative and
// snapshot failures never fail a turn.
type Snapshotter interface {
	SaveConversation(ctx context.Context, conv *types.Conversation) error
}

// Config tunes engine behavior.
type Config struct {
	// ModeratorInterval is the number of persona rounds between moderator
	// turns; 0 disables moderator interleaving. See Scheduler.
	ModeratorInterval int
}

// StartRequest carries the validated inputs for a new conversation.
type StartRequest struct {
	Topic           string           `json:"topic"`
	ResearchGoal    string           `json:"research_goal"`
	DiscussionGuide string           `json:"discussion_guide"`
	Personas        []*types.Persona `json:"participant_personas"`
	ModeratorType   string           `json:"moderator_type"`
	MaxTurns        int              `json:"max_turns"`
}

// TurnResult is the outcome of a NextTurn call.
type TurnResult struct {
	ConversationID string              `json:"conversation_id"`
	// Utterance is nil when Completed is true.
	Utterance *types.Utterance        `json:"utterance,omitempty"`
	TurnIndex int                     `json:"turn_index"`
	MaxTurns  int                     `json:"max_turns"`
	Status    types.ConversationStatus `json:"status"`
	Completed bool                    `json:"completed"`
}

// managedConversation pairs a conversation with the mutex that serializes
// its turns. At most one NextTurn call per conversation is in flight.
type managedConversation struct {
	mu   sync.Mutex
	conv *types.Conversation
}

// Engine is the façade coordinating scheduler, generator, and conversation
// state. Distinct conversations proceed fully in parallel; mutations to one
// conversation are serialized.
type Engine struct {
	scheduler *Scheduler
	generator Generator
	logger    *zap.Logger

	recorder    Recorder
	snapshotter Snapshotter

	mu    sync.RWMutex
	convs map[string]*managedConversation
}

// Option customizes an Engine.
type Option func(*Engine)

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithSnapshotter attaches a write-behind conversation store.
func WithSnapshotter(s Snapshotter) Option {
	return func(e *Engine) { e.snapshotter = s }
}

// NewEngine creates an engine with the given generator and configuration.
func NewEngine(gen Generator, cfg Config, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		scheduler: NewScheduler(cfg.ModeratorInterval),
		generator: gen,
		logger:    logger,
		convs:     make(map[string]*managedConversation),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start validates req and allocates a new conversation with turn index 0,
// empty transcript, and status active. No partial state is created on
// failure.
func (e *Engine) Start(ctx context.Context, req *StartRequest) (*types.Conversation, error) {
	if req == nil {
		return nil, types.NewError(types.ErrInvalidConversationSpec, "request body is required").
			WithHTTPStatus(http.StatusBadRequest)
	}
	if req.Topic == "" {
		return nil, types.NewFieldError(types.ErrInvalidConversationSpec, "topic", "topic is required").
			WithHTTPStatus(http.StatusBadRequest)
	}
	if len(req.Personas) == 0 {
		return nil, types.NewFieldError(types.ErrInvalidConversationSpec, "participant_personas",
			"at least one participant persona is required").
			WithHTTPStatus(http.StatusBadRequest)
	}
	if req.MaxTurns < 1 {
		return nil, types.NewFieldError(types.ErrInvalidConversationSpec, "max_turns",
			"max_turns must be a positive integer").
			WithHTTPStatus(http.StatusBadRequest)
	}
	moderator := req.ModeratorType
	if moderator == "" {
		moderator = string(types.ModeratorAI)
	}
	modType, err := types.ParseModeratorType(moderator)
	if err != nil {
		return nil, err.(*types.Error).WithHTTPStatus(http.StatusBadRequest)
	}
	seen := make(map[string]struct{}, len(req.Personas))
	for _, p := range req.Personas {
		if err := p.Validate(); err != nil {
			// Persona invariant violations surface as an invalid start
			// request, keeping the offending field and original cause.
			field := "participant_personas"
			message := "invalid persona " + p.ID
			if verr, ok := err.(*types.Error); ok {
				if verr.Field != "" {
					field = "participant_personas." + verr.Field
				}
				message = "invalid persona " + p.ID + ": " + verr.Message
			}
			return nil, types.NewFieldError(types.ErrInvalidConversationSpec, field, message).
				WithCause(err).
				WithHTTPStatus(http.StatusBadRequest)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, types.NewFieldError(types.ErrInvalidConversationSpec, "participant_personas",
				"duplicate persona id "+p.ID).
				WithHTTPStatus(http.StatusBadRequest)
		}
		seen[p.ID] = struct{}{}
	}

	now := time.Now().UTC()
	conv := &types.Conversation{
		ID:              uuid.New().String(),
		Topic:           req.Topic,
		ResearchGoal:    req.ResearchGoal,
		DiscussionGuide: req.DiscussionGuide,
		Personas:        req.Personas,
		ModeratorType:   modType,
		MaxTurns:        req.MaxTurns,
		TurnIndex:       0,
		Transcript:      []types.Utterance{},
		Status:          types.StatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	e.mu.Lock()
	e.convs[conv.ID] = &managedConversation{conv: conv}
	e.mu.Unlock()

	if e.recorder != nil {
		e.recorder.ConversationStarted()
	}
	e.snapshot(ctx, conv)

	e.logger.Info("conversation started",
		zap.String("conversation_id", conv.ID),
		zap.String("topic", conv.Topic),
		zap.Int("roster_size", len(conv.Personas)),
		zap.Int("max_turns", conv.MaxTurns),
		zap.String("moderator_type", string(conv.ModeratorType)),
	)

	return snapshotOf(conv), nil
}

// NextTurn advances conv by one turn. Either a turn fully commits (utterance
// appended, index incremented) or the state is left untouched.
func (e *Engine) NextTurn(ctx context.Context, id string) (*TurnResult, error) {
	mc, err := e.lookup(id)
	if err != nil {
		return nil, err
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	conv := mc.conv
	if conv.Status.Terminal() {
		return nil, types.NewError(types.ErrConversationNotActive,
			"conversation is "+string(conv.Status)).
			WithHTTPStatus(http.StatusConflict)
	}

	sel := e.scheduler.Next(conv)
	if sel.Terminal {
		conv.Status = types.StatusCompleted
		conv.UpdatedAt = time.Now().UTC()
		if e.recorder != nil {
			e.recorder.ConversationFinished(string(types.StatusCompleted))
		}
		e.snapshot(ctx, conv)
		e.logger.Info("conversation completed",
			zap.String("conversation_id", conv.ID),
			zap.Int("turns", conv.TurnIndex),
		)
		return &TurnResult{
			ConversationID: conv.ID,
			TurnIndex:      conv.TurnIndex,
			MaxTurns:       conv.MaxTurns,
			Status:         conv.Status,
			Completed:      true,
		}, nil
	}

	start := time.Now()
	text, genErr := e.generator.Generate(ctx, conv, sel)
	if genErr != nil {
		return nil, e.failTurn(ctx, conv, genErr)
	}

	// Atomic commit: append and increment together, after generation
	// fully succeeded.
	utt := types.Utterance{
		Speaker:   sel.Speaker,
		Turn:      conv.TurnIndex + 1,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
	conv.Transcript = append(conv.Transcript, utt)
	conv.TurnIndex++
	conv.UpdatedAt = utt.Timestamp

	if e.recorder != nil {
		e.recorder.TurnCommitted(string(sel.Speaker.Kind), time.Since(start))
	}
	e.snapshot(ctx, conv)

	e.logger.Info("turn committed",
		zap.String("conversation_id", conv.ID),
		zap.Int("turn", utt.Turn),
		zap.String("speaker_kind", string(utt.Speaker.Kind)),
		zap.String("speaker_id", utt.Speaker.PersonaID),
	)

	return &TurnResult{
		ConversationID: conv.ID,
		Utterance:      &utt,
		TurnIndex:      conv.TurnIndex,
		MaxTurns:       conv.MaxTurns,
		Status:         conv.Status,
	}, nil
}

// failTurn records a generation failure. Retryable faults leave the
// conversation active so the caller can retry the same turn index;
// non-retryable faults mark it failed. Nothing is appended either way.
func (e *Engine) failTurn(ctx context.Context, conv *types.Conversation, genErr error) error {
	code := types.GetErrorCode(genErr)
	if code == "" {
		code = types.ErrGenerationFailed
		genErr = types.NewError(types.ErrGenerationFailed, "response generation failed").
			WithCause(genErr).
			WithHTTPStatus(http.StatusBadGateway)
	}

	if e.recorder != nil {
		e.recorder.GenerationFailed(string(code))
	}

	if !types.IsRetryable(genErr) && code == types.ErrGenerationFailed {
		conv.Status = types.StatusFailed
		conv.UpdatedAt = time.Now().UTC()
		if e.recorder != nil {
			e.recorder.ConversationFinished(string(types.StatusFailed))
		}
		e.snapshot(ctx, conv)
	}

	e.logger.Warn("turn generation failed",
		zap.String("conversation_id", conv.ID),
		zap.Int("turn_index", conv.TurnIndex),
		zap.String("code", string(code)),
		zap.String("status", string(conv.Status)),
		zap.Error(genErr),
	)

	return genErr
}

// Get returns a point-in-time copy of the conversation state.
func (e *Engine) Get(id string) (*types.Conversation, error) {
	mc, err := e.lookup(id)
	if err != nil {
		return nil, err
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return snapshotOf(mc.conv), nil
}

func (e *Engine) lookup(id string) (*managedConversation, error) {
	e.mu.RLock()
	mc, ok := e.convs[id]
	e.mu.RUnlock()
	if !ok {
		return nil, types.NewError(types.ErrConversationNotFound, "unknown conversation id "+id).
			WithHTTPStatus(http.StatusNotFound)
	}
	return mc, nil
}

// snapshot writes conv to the configured store, best effort.
func (e *Engine) snapshot(ctx context.Context, conv *types.Conversation) {
	if e.snapshotter == nil {
		return
	}
	if err := e.snapshotter.SaveConversation(ctx, conv); err != nil {
		e.logger.Warn("conversation snapshot failed",
			zap.String("conversation_id", conv.ID),
			zap.Error(err),
		)
	}
}

// snapshotOf copies the mutable parts of conv so callers can read it without
// holding the conversation lock. Personas are immutable and shared.
func snapshotOf(conv *types.Conversation) *types.Conversation {
	out := *conv
	out.Transcript = make([]types.Utterance, len(conv.Transcript))
	copy(out.Transcript, conv.Transcript)
	out.Personas = make([]*types.Persona, len(conv.Personas))
	copy(out.Personas, conv.Personas)
	return &out
}
