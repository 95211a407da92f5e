package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPersona() *Persona {
	return &Persona{
		ID:       "test-persona-1",
		Name:     "Test User",
		Age:      30,
		Gender:   "Other",
		Location: "Test City",
		Occupation: &Occupation{
			Title:      "Tester",
			Industry:   "Testing",
			Experience: 5,
			Income:     "$50,000",
		},
		Personality: &Personality{
			Openness:          4.0,
			Conscientiousness: 3.5,
			Extraversion:      3.0,
			Agreeableness:     4.5,
			Neuroticism:       2.0,
		},
		PersonalityDescriptions: &PersonalityDescriptions{
			Openness:          "High openness",
			Conscientiousness: "Medium conscientiousness",
			Extraversion:      "Medium extraversion",
			Agreeableness:     "High agreeableness",
			Neuroticism:       "Low neuroticism",
		},
		Preferences: &Preferences{
			Interests: []string{"testing", "debugging"},
			Hobbies:   []string{"coding"},
			Values:    []string{"quality"},
			Lifestyle: "tech-focused",
		},
		Behaviors: &Behaviors{
			CommunicationStyle: "direct",
			DecisionMaking:     "analytical",
			TechnologyAdoption: "early adopter",
			ShoppingHabits:     []string{"research-focused"},
		},
		Goals: &Goals{
			ShortTerm:   []string{"fix bugs"},
			LongTerm:    []string{"improve systems"},
			Fears:       []string{"system failures"},
			Aspirations: []string{"perfect code"},
		},
		Background: &Background{
			Education:    "Computer Science",
			FamilyStatus: "Single",
			LifeStage:    "Career focused",
			Experiences:  []string{"software testing"},
		},
		AppliedFragments:         []string{"tech_enthusiast"},
		FragmentConfidenceScores: map[string]float64{"tech_enthusiast": 0.9},
		CommunicationPatterns:    []string{"asks technical questions"},
		ParticipationLevel:       ParticipationHigh,
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

func TestPersona_Validate_OK(t *testing.T) {
	require.NoError(t, validPersona().Validate())
}

func TestPersona_Validate_TraitOutOfScale(t *testing.T) {
	p := validPersona()
	p.Personality.Openness = 6.0

	err := p.Validate()
	require.Error(t, err)

	verr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrValidation, verr.Code)
	assert.Equal(t, "personality.openness", verr.Field)
}

func TestPersona_Validate_MissingNestedObjects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Persona)
		field  string
	}{
		{"occupation", func(p *Persona) { p.Occupation = nil }, "occupation"},
		{"personality", func(p *Persona) { p.Personality = nil }, "personality"},
		{"preferences", func(p *Persona) { p.Preferences = nil }, "preferences"},
		{"behaviors", func(p *Persona) { p.Behaviors = nil }, "behaviors"},
		{"goals", func(p *Persona) { p.Goals = nil }, "goals"},
		{"background", func(p *Persona) { p.Background = nil }, "background"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validPersona()
			tc.mutate(p)

			err := p.Validate()
			require.Error(t, err)

			verr, ok := err.(*Error)
			require.True(t, ok)
			assert.Equal(t, ErrValidation, verr.Code)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestPersona_Validate_RequiredIdentityFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Persona)
		field  string
	}{
		{"id", func(p *Persona) { p.ID = "" }, "id"},
		{"name", func(p *Persona) { p.Name = "" }, "name"},
		{"age", func(p *Persona) { p.Age = 0 }, "age"},
		{"gender", func(p *Persona) { p.Gender = "" }, "gender"},
		{"location", func(p *Persona) { p.Location = "" }, "location"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validPersona()
			tc.mutate(p)

			err := p.Validate()
			require.Error(t, err)
			assert.Equal(t, tc.field, err.(*Error).Field)
		})
	}
}

func TestPersona_Validate_FragmentConfidence(t *testing.T) {
	p := validPersona()
	p.FragmentConfidenceScores["tech_enthusiast"] = 1.2

	err := p.Validate()
	require.Error(t, err)
	assert.Equal(t, "fragment_confidence_scores.tech_enthusiast", err.(*Error).Field)

	p.FragmentConfidenceScores["tech_enthusiast"] = 1.0
	assert.NoError(t, p.Validate())
}

func TestPersona_Validate_ParticipationLevel(t *testing.T) {
	p := validPersona()
	p.ParticipationLevel = "extreme"

	err := p.Validate()
	require.Error(t, err)
	assert.Equal(t, "participation_level", err.(*Error).Field)

	// Empty is tolerated: the attribute is derived and may be absent.
	p.ParticipationLevel = ""
	assert.NoError(t, p.Validate())
}

func TestPersona_JSONRoundTrip(t *testing.T) {
	p := validPersona()

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded Persona
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NoError(t, decoded.Validate())
	assert.Equal(t, p.Personality.Agreeableness, decoded.Personality.Agreeableness)
	assert.Equal(t, p.Behaviors.ShoppingHabits, decoded.Behaviors.ShoppingHabits)
}
