package types

import (
	"fmt"
	"time"
)

// ConversationStatus is the lifecycle state of a conversation.
type ConversationStatus string

const (
	StatusActive    ConversationStatus = "active"
	StatusCompleted ConversationStatus = "completed"
	StatusFailed    ConversationStatus = "failed"
)

// Terminal reports whether no further turns may be appended.
func (s ConversationStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ModeratorType is an enumerated moderator capability, not a class hierarchy.
type ModeratorType string

const (
	// ModeratorAI generates moderator utterances through the LLM provider.
	ModeratorAI ModeratorType = "ai"
	// ModeratorScripted emits the discussion-guide question verbatim.
	ModeratorScripted ModeratorType = "scripted"
)

// ParseModeratorType normalizes the wire value ("AI" in the original
// payloads) to a ModeratorType.
func ParseModeratorType(s string) (ModeratorType, error) {
	switch s {
	case "ai", "AI":
		return ModeratorAI, nil
	case "scripted", "Scripted":
		return ModeratorScripted, nil
	default:
		return "", NewFieldError(ErrInvalidConversationSpec, "moderator_type",
			fmt.Sprintf("unsupported moderator type %q", s))
	}
}

// SpeakerKind tags who owns a turn: the moderator or a roster persona.
type SpeakerKind string

const (
	SpeakerModerator SpeakerKind = "moderator"
	SpeakerPersona   SpeakerKind = "persona"
)

// Speaker is the two-variant tagged union identifying a turn owner.
// PersonaID and Name are set only when Kind is SpeakerPersona.
type Speaker struct {
	Kind      SpeakerKind `json:"kind"`
	PersonaID string      `json:"persona_id,omitempty"`
	Name      string      `json:"name,omitempty"`
}

// ModeratorSpeaker returns the moderator variant.
func ModeratorSpeaker() Speaker {
	return Speaker{Kind: SpeakerModerator}
}

// PersonaSpeaker returns the persona variant for the given roster entry.
func PersonaSpeaker(p *Persona) Speaker {
	return Speaker{Kind: SpeakerPersona, PersonaID: p.ID, Name: p.Name}
}

// Utterance is one generated turn in the transcript.
type Utterance struct {
	Speaker   Speaker   `json:"speaker"`
	Turn      int       `json:"turn"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is a single bounded discussion instance. It is created by the
// engine's Start operation and mutated only by NextTurn; the roster is fixed
// once the conversation starts.
//
// Invariants maintained by the engine: TurnIndex never exceeds MaxTurns,
// len(Transcript) always equals TurnIndex, and no utterance is appended once
// Status is terminal.
type Conversation struct {
	ID              string             `json:"id"`
	Topic           string             `json:"topic"`
	ResearchGoal    string             `json:"research_goal"`
	DiscussionGuide string             `json:"discussion_guide"`
	Personas        []*Persona         `json:"participant_personas"`
	ModeratorType   ModeratorType      `json:"moderator_type"`
	MaxTurns        int                `json:"max_turns"`
	TurnIndex       int                `json:"turn_index"`
	Transcript      []Utterance        `json:"transcript"`
	Status          ConversationStatus `json:"status"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// PersonaByID looks up a roster member.
func (c *Conversation) PersonaByID(id string) (*Persona, bool) {
	for _, p := range c.Personas {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// LastUtterance returns the most recent transcript entry, or nil when the
// transcript is empty.
func (c *Conversation) LastUtterance() *Utterance {
	if len(c.Transcript) == 0 {
		return nil
	}
	return &c.Transcript[len(c.Transcript)-1]
}
