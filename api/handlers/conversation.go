package handlers

import (
	"net/http"

	"github.com/microcrowd/engine/api"
	"github.com/microcrowd/engine/engine"
	"github.com/microcrowd/engine/types"
	"go.uber.org/zap"
)

// =============================================================================
// 💬 会话 Handler
// =============================================================================

// ConversationHandler 会话生命周期处理器
type ConversationHandler struct {
	engine *engine.Engine
	logger *zap.Logger
}

// NewConversationHandler 创建会话处理器
func NewConversationHandler(eng *engine.Engine, logger *zap.Logger) *ConversationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationHandler{engine: eng, logger: logger}
}

// RegisterRoutes 注册会话路由
func (h *ConversationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/conversations/start", h.HandleStart)
	mux.HandleFunc("GET /api/conversations/{id}/next-response", h.HandleNextResponse)
	mux.HandleFunc("GET /api/conversations/{id}", h.HandleGet)
}

// HandleStart 处理 POST /api/conversations/start
func (h *ConversationHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	var req api.StartConversationRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	conv, err := h.engine.Start(r.Context(), &engine.StartRequest{
		Topic:           req.Topic,
		ResearchGoal:    req.ResearchGoal,
		DiscussionGuide: req.DiscussionGuide,
		Personas:        req.ParticipantPersonas,
		ModeratorType:   req.ModeratorType,
		MaxTurns:        req.MaxTurns,
	})
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	WriteSuccess(w, api.StartConversationResponse{
		ConversationID: conv.ID,
		Status:         string(conv.Status),
		MaxTurns:       conv.MaxTurns,
		CreatedAt:      conv.CreatedAt,
	})
}

// HandleNextResponse 处理 GET /api/conversations/{id}/next-response
func (h *ConversationHandler) HandleNextResponse(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest,
			"conversation id is required", h.logger)
		return
	}

	res, err := h.engine.NextTurn(r.Context(), id)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	data := api.NextResponseData{
		ConversationID: res.ConversationID,
		Completed:      res.Completed,
		Status:         string(res.Status),
		TurnIndex:      res.TurnIndex,
		MaxTurns:       res.MaxTurns,
	}
	if res.Utterance != nil {
		data.Utterance = api.NewUtteranceView(res.Utterance)
	}

	WriteSuccess(w, data)
}

// HandleGet 处理 GET /api/conversations/{id}
func (h *ConversationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidRequest,
			"conversation id is required", h.logger)
		return
	}

	conv, err := h.engine.Get(id)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	WriteSuccess(w, api.NewConversationView(conv))
}
