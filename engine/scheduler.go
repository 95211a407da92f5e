package engine

import (
	"strings"
	"unicode"

	"github.com/microcrowd/engine/types"
)

// Selection is the scheduler's verdict for the upcoming turn.
type Selection struct {
	// Terminal is true when the conversation has used its turn budget;
	// Speaker and GuideQuestion are unset in that case.
	Terminal bool

	Speaker types.Speaker

	// GuideQuestion is the discussion-guide question the moderator should
	// steer toward. Set on moderator turns only.
	GuideQuestion string
}

// Scheduler decides who speaks next. It is a pure function of the
// conversation state and its own configuration — no hidden randomness, so a
// conversation replays identically given the same inputs.
type Scheduler struct {
	// moderatorInterval is the number of persona rounds between moderator
	// turns. 1 means the moderator opens every round, 0 disables moderator
	// interleaving entirely.
	moderatorInterval int
}

// NewScheduler creates a scheduler with the given moderator cadence.
func NewScheduler(moderatorInterval int) *Scheduler {
	if moderatorInterval < 0 {
		moderatorInterval = 0
	}
	return &Scheduler{moderatorInterval: moderatorInterval}
}

// Next picks the speaker for conv's current turn index, or reports that the
// conversation is over. With interleaving enabled the schedule is blocks of
// [moderator, interval×roster] repeating; without it, plain round-robin.
// A roster of one alternates that persona with moderator prompts.
func (s *Scheduler) Next(conv *types.Conversation) Selection {
	if conv.TurnIndex >= conv.MaxTurns {
		return Selection{Terminal: true}
	}

	roster := conv.Personas
	if s.moderatorInterval <= 0 {
		return Selection{Speaker: types.PersonaSpeaker(roster[conv.TurnIndex%len(roster)])}
	}

	blockLen := s.moderatorInterval*len(roster) + 1
	block := conv.TurnIndex / blockLen
	pos := conv.TurnIndex % blockLen

	if pos == 0 {
		questions := ParseGuideQuestions(conv.DiscussionGuide)
		question := ""
		if len(questions) > 0 {
			question = questions[block%len(questions)]
		}
		return Selection{
			Speaker:       types.ModeratorSpeaker(),
			GuideQuestion: question,
		}
	}

	return Selection{Speaker: types.PersonaSpeaker(roster[(pos-1)%len(roster)])}
}

// ParseGuideQuestions splits a free-text discussion guide into individual
// questions. Lines are the unit; leading enumeration ("1.", "2)", "-") is
// stripped, blank lines are dropped.
func ParseGuideQuestions(guide string) []string {
	var out []string
	for _, line := range strings.Split(guide, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeftFunc(line, func(r rune) bool {
			return unicode.IsDigit(r) || r == '.' || r == ')' || r == '-' || r == ' '
		})
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
