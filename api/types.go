package api

import (
	"time"

	"github.com/microcrowd/engine/types"
)

// =============================================================================
// 会话类型
// =============================================================================

// StartConversationRequest 启动会话请求。
type StartConversationRequest struct {
	// 讨论主题
	Topic string `json:"topic"`
	// 研究目标
	ResearchGoal string `json:"research_goal,omitempty"`
	// 讨论指南（自由文本，逐行解析为引导问题）
	DiscussionGuide string `json:"discussion_guide,omitempty"`
	// 参与者 persona 列表
	ParticipantPersonas []*types.Persona `json:"participant_personas"`
	// 主持人类型: "ai" 或 "scripted"（兼容历史数据的 "AI"）
	ModeratorType string `json:"moderator_type,omitempty"`
	// 回合数上限
	MaxTurns int `json:"max_turns"`
}

// StartConversationResponse 启动会话响应。
type StartConversationResponse struct {
	ConversationID string `json:"conversation_id"`
	Status         string `json:"status"`
	MaxTurns       int    `json:"max_turns"`
	CreatedAt      time.Time `json:"created_at"`
}

// NextResponseData 单回合推进结果。
type NextResponseData struct {
	ConversationID string `json:"conversation_id"`
	// 会话完成时为 true，此时不含 utterance 字段
	Completed bool   `json:"completed"`
	Status    string `json:"status"`
	TurnIndex int    `json:"turn_index"`
	MaxTurns  int    `json:"max_turns"`

	Utterance *UtteranceView `json:"utterance,omitempty"`
}

// UtteranceView 单条发言。
type UtteranceView struct {
	// 发言者类型: "moderator" 或 "persona"
	SpeakerKind string `json:"speaker_kind"`
	// persona 发言时的 ID 与显示名
	PersonaID   string    `json:"persona_id,omitempty"`
	SpeakerName string    `json:"speaker_name,omitempty"`
	Turn        int       `json:"turn"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
}

// ConversationView 会话详情。
type ConversationView struct {
	ConversationID  string          `json:"conversation_id"`
	Topic           string          `json:"topic"`
	ResearchGoal    string          `json:"research_goal,omitempty"`
	DiscussionGuide string          `json:"discussion_guide,omitempty"`
	ModeratorType   string          `json:"moderator_type"`
	Status          string          `json:"status"`
	TurnIndex       int             `json:"turn_index"`
	MaxTurns        int             `json:"max_turns"`
	Participants    []Participant   `json:"participants"`
	Transcript      []UtteranceView `json:"transcript"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Participant 会话参与者摘要。
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// =============================================================================
// 转换函数
// =============================================================================

// NewUtteranceView 从领域类型构造发言视图。
func NewUtteranceView(u *types.Utterance) *UtteranceView {
	return &UtteranceView{
		SpeakerKind: string(u.Speaker.Kind),
		PersonaID:   u.Speaker.PersonaID,
		SpeakerName: u.Speaker.Name,
		Turn:        u.Turn,
		Text:        u.Text,
		Timestamp:   u.Timestamp,
	}
}

// NewConversationView 从领域类型构造会话视图。
func NewConversationView(conv *types.Conversation) *ConversationView {
	participants := make([]Participant, 0, len(conv.Personas))
	for _, p := range conv.Personas {
		participants = append(participants, Participant{ID: p.ID, Name: p.Name})
	}

	transcript := make([]UtteranceView, 0, len(conv.Transcript))
	for i := range conv.Transcript {
		transcript = append(transcript, *NewUtteranceView(&conv.Transcript[i]))
	}

	return &ConversationView{
		ConversationID:  conv.ID,
		Topic:           conv.Topic,
		ResearchGoal:    conv.ResearchGoal,
		DiscussionGuide: conv.DiscussionGuide,
		ModeratorType:   string(conv.ModeratorType),
		Status:          string(conv.Status),
		TurnIndex:       conv.TurnIndex,
		MaxTurns:        conv.MaxTurns,
		Participants:    participants,
		Transcript:      transcript,
		CreatedAt:       conv.CreatedAt,
		UpdatedAt:       conv.UpdatedAt,
	}
}
