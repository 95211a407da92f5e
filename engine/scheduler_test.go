package engine

import (
	"testing"

	"github.com/microcrowd/engine/testutil/fixtures"
	"github.com/microcrowd/engine/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerTerminal(t *testing.T) {
	s := NewScheduler(1)
	conv := fixtures.Conversation("c1", 2, 4)

	conv.TurnIndex = 4
	assert.True(t, s.Next(conv).Terminal)

	conv.TurnIndex = 7
	assert.True(t, s.Next(conv).Terminal)

	conv.TurnIndex = 3
	assert.False(t, s.Next(conv).Terminal)
}

func TestSchedulerRoundRobinWithoutModerator(t *testing.T) {
	s := NewScheduler(0)
	conv := fixtures.Conversation("c1", 3, 100)

	want := []string{"persona-1", "persona-2", "persona-3", "persona-1", "persona-2"}
	for i, id := range want {
		conv.TurnIndex = i
		sel := s.Next(conv)
		require.False(t, sel.Terminal)
		assert.Equal(t, types.SpeakerPersona, sel.Speaker.Kind)
		assert.Equal(t, id, sel.Speaker.PersonaID, "turn index %d", i)
	}
}

func TestSchedulerModeratorInterleaving(t *testing.T) {
	// interval=1, roster=2 → 块长 3：[moderator, p1, p2] 循环
	s := NewScheduler(1)
	conv := fixtures.Conversation("c1", 2, 100)

	type step struct {
		kind      types.SpeakerKind
		personaID string
	}
	want := []step{
		{types.SpeakerModerator, ""},
		{types.SpeakerPersona, "persona-1"},
		{types.SpeakerPersona, "persona-2"},
		{types.SpeakerModerator, ""},
		{types.SpeakerPersona, "persona-1"},
		{types.SpeakerPersona, "persona-2"},
	}
	for i, w := range want {
		conv.TurnIndex = i
		sel := s.Next(conv)
		require.False(t, sel.Terminal)
		assert.Equal(t, w.kind, sel.Speaker.Kind, "turn index %d", i)
		assert.Equal(t, w.personaID, sel.Speaker.PersonaID, "turn index %d", i)
	}
}

func TestSchedulerSinglePersonaAlternates(t *testing.T) {
	s := NewScheduler(1)
	conv := fixtures.Conversation("c1", 1, 100)

	for i := 0; i < 10; i++ {
		conv.TurnIndex = i
		sel := s.Next(conv)
		if i%2 == 0 {
			assert.Equal(t, types.SpeakerModerator, sel.Speaker.Kind, "turn index %d", i)
		} else {
			assert.Equal(t, "persona-1", sel.Speaker.PersonaID, "turn index %d", i)
		}
	}
}

func TestSchedulerGuideQuestionCycling(t *testing.T) {
	s := NewScheduler(1)
	conv := fixtures.Conversation("c1", 2, 100)
	conv.DiscussionGuide = "1. First question?\n2. Second question?"

	// 块长 3，主持人回合位于索引 0、3、6；引导问题按块轮转
	conv.TurnIndex = 0
	assert.Equal(t, "First question?", s.Next(conv).GuideQuestion)

	conv.TurnIndex = 3
	assert.Equal(t, "Second question?", s.Next(conv).GuideQuestion)

	conv.TurnIndex = 6
	assert.Equal(t, "First question?", s.Next(conv).GuideQuestion)

	// persona 回合不携带引导问题
	conv.TurnIndex = 1
	assert.Empty(t, s.Next(conv).GuideQuestion)
}

func TestSchedulerEmptyGuide(t *testing.T) {
	s := NewScheduler(2)
	conv := fixtures.Conversation("c1", 2, 100)
	conv.DiscussionGuide = ""

	conv.TurnIndex = 0
	sel := s.Next(conv)
	assert.Equal(t, types.SpeakerModerator, sel.Speaker.Kind)
	assert.Empty(t, sel.GuideQuestion)
}

func TestParseGuideQuestions(t *testing.T) {
	tests := []struct {
		name  string
		guide string
		want  []string
	}{
		{
			name:  "numbered list",
			guide: "1. What do you use?\n2. What would you change?",
			want:  []string{"What do you use?", "What would you change?"},
		},
		{
			name:  "mixed markers and blanks",
			guide: "- First\n\n2) Second\n   3. Third  ",
			want:  []string{"First", "Second", "Third"},
		},
		{
			name:  "plain lines",
			guide: "Opening question\nFollow up",
			want:  []string{"Opening question", "Follow up"},
		},
		{
			name:  "empty",
			guide: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseGuideQuestions(tt.guide))
		})
	}
}
