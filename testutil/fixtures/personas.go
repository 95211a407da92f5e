// Package fixtures 提供测试共用的领域数据构造器。
package fixtures

import (
	"fmt"
	"time"

	"github.com/microcrowd/engine/types"
)

// Persona 返回一个通过校验的完整 persona，id/name 可定制。
func Persona(id, name string) *types.Persona {
	return &types.Persona{
		ID:       id,
		Name:     name,
		Age:      30,
		Gender:   "Other",
		Location: "Test City",
		Occupation: &types.Occupation{
			Title:      "Tester",
			Industry:   "Testing",
			Experience: 5,
			Income:     "$50,000",
		},
		Personality: &types.Personality{
			Openness:          4.0,
			Conscientiousness: 3.5,
			Extraversion:      3.0,
			Agreeableness:     4.5,
			Neuroticism:       2.0,
		},
		PersonalityDescriptions: &types.PersonalityDescriptions{
			Openness:          "High openness",
			Conscientiousness: "Medium conscientiousness",
			Extraversion:      "Medium extraversion",
			Agreeableness:     "High agreeableness",
			Neuroticism:       "Low neuroticism",
		},
		Preferences: &types.Preferences{
			Interests: []string{"testing", "debugging"},
			Hobbies:   []string{"coding"},
			Values:    []string{"quality"},
			Lifestyle: "tech-focused",
		},
		Behaviors: &types.Behaviors{
			CommunicationStyle: "direct",
			DecisionMaking:     "analytical",
			TechnologyAdoption: "early adopter",
			ShoppingHabits:     []string{"research-focused"},
		},
		Goals: &types.Goals{
			ShortTerm:   []string{"fix bugs"},
			LongTerm:    []string{"improve systems"},
			Fears:       []string{"system failures"},
			Aspirations: []string{"perfect code"},
		},
		Background: &types.Background{
			Education:    "Computer Science",
			FamilyStatus: "Single",
			LifeStage:    "Career focused",
			Experiences:  []string{"software testing"},
		},
		AppliedFragments:         []string{"tech_enthusiast"},
		FragmentConfidenceScores: map[string]float64{"tech_enthusiast": 0.9},
		CommunicationPatterns:    []string{"asks technical questions"},
		ParticipationLevel:       types.ParticipationHigh,
		ResponseLengthTendency:   "moderate",
		ExpertiseAreas:           []string{"testing"},
		DiscussionGoals:          []string{"understand technical details"},
		DecisionFactors:          []string{"reliability", "performance"},
		PainPoints:               []string{"bugs", "poor documentation"},
		EmotionalTriggers:        []string{"system failures"},
		GeneratedSummary:         "A tech-focused individual passionate about quality and testing.",
		SourceData:               map[string]string{},
		CreatedAt:                time.Date(2025, 1, 21, 10, 0, 0, 0, time.UTC),
	}
}

// Roster 生成 n 个互不相同的 persona。
func Roster(n int) []*types.Persona {
	out := make([]*types.Persona, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Persona(fmt.Sprintf("persona-%d", i+1), fmt.Sprintf("Participant %d", i+1)))
	}
	return out
}

// Conversation 返回一个刚启动的会话状态，供存储层测试使用。
func Conversation(id string, roster int, maxTurns int) *types.Conversation {
	now := time.Now().UTC().Truncate(time.Second)
	return &types.Conversation{
		ID:              id,
		Topic:           "Test Product Feedback",
		ResearchGoal:    "Understand user preferences",
		DiscussionGuide: "1. What do you think about this product?\n2. How would you improve it?",
		Personas:        Roster(roster),
		ModeratorType:   types.ModeratorAI,
		MaxTurns:        maxTurns,
		TurnIndex:       0,
		Transcript:      []types.Utterance{},
		Status:          types.StatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
