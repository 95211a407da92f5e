package types

import (
	"fmt"
	"time"
)

// Personality trait scale bounds. The persona generation pipeline scores the
// five-factor model on a 1.0–5.0 scale.
const (
	TraitScaleMin = 1.0
	TraitScaleMax = 5.0
)

// ParticipationLevel is the ordinal engagement tendency of a persona.
type ParticipationLevel string

const (
	ParticipationLow    ParticipationLevel = "low"
	ParticipationMedium ParticipationLevel = "medium"
	ParticipationHigh   ParticipationLevel = "high"
)

// Occupation describes a persona's professional profile.
type Occupation struct {
	Title      string `json:"title"`
	Industry   string `json:"industry"`
	Experience int    `json:"experience"`
	Income     string `json:"income"`
}

// Personality holds the five-factor trait scores, each on the
// [TraitScaleMin, TraitScaleMax] scale.
type Personality struct {
	Openness          float64 `json:"openness"`
	Conscientiousness float64 `json:"conscientiousness"`
	Extraversion      float64 `json:"extraversion"`
	Agreeableness     float64 `json:"agreeableness"`
	Neuroticism       float64 `json:"neuroticism"`
}

// PersonalityDescriptions carries the human-readable rendering of each trait.
type PersonalityDescriptions struct {
	Openness          string `json:"openness"`
	Conscientiousness string `json:"conscientiousness"`
	Extraversion      string `json:"extraversion"`
	Agreeableness     string `json:"agreeableness"`
	Neuroticism       string `json:"neuroticism"`
}

// Preferences describes what a persona cares about outside of work.
type Preferences struct {
	Interests []string `json:"interests"`
	Hobbies   []string `json:"hobbies"`
	Values    []string `json:"values"`
	Lifestyle string   `json:"lifestyle"`
}

// Behaviors describes how a persona communicates and decides.
type Behaviors struct {
	CommunicationStyle string   `json:"communication_style"`
	DecisionMaking     string   `json:"decision_making"`
	TechnologyAdoption string   `json:"technology_adoption"`
	ShoppingHabits     []string `json:"shopping_habits"`
}

// Goals describes a persona's motivations and anxieties.
type Goals struct {
	ShortTerm   []string `json:"short_term"`
	LongTerm    []string `json:"long_term"`
	Fears       []string `json:"fears"`
	Aspirations []string `json:"aspirations"`
}

// Background describes a persona's history.
type Background struct {
	Education    string   `json:"education"`
	FamilyStatus string   `json:"family_status"`
	LifeStage    string   `json:"life_stage"`
	Experiences  []string `json:"experiences"`
}

// Persona is an immutable synthetic participant profile. It is composed once
// by the external persona-generation pipeline (fragments + confidence scores
// record that composition) and is read-only for the lifetime of any
// conversation it joins.
//
// The six nested objects are pointers so that a payload missing one of them
// is rejected during validation instead of being silently defaulted.
type Persona struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Age      int    `json:"age"`
	Gender   string `json:"gender"`
	Location string `json:"location"`

	Occupation              *Occupation              `json:"occupation"`
	Personality             *Personality             `json:"personality"`
	PersonalityDescriptions *PersonalityDescriptions `json:"personality_descriptions,omitempty"`
	Preferences             *Preferences             `json:"preferences"`
	Behaviors               *Behaviors               `json:"behaviors"`
	Goals                   *Goals                   `json:"goals"`
	Background              *Background              `json:"background"`

	AppliedFragments         []string           `json:"applied_fragments,omitempty"`
	FragmentConfidenceScores map[string]float64 `json:"fragment_confidence_scores,omitempty"`

	CommunicationPatterns  []string           `json:"communication_patterns,omitempty"`
	ParticipationLevel     ParticipationLevel `json:"participation_level"`
	ResponseLengthTendency string             `json:"response_length_tendency,omitempty"`
	ExpertiseAreas         []string           `json:"expertise_areas,omitempty"`
	DiscussionGoals        []string           `json:"discussion_goals,omitempty"`
	DecisionFactors        []string           `json:"decision_factors,omitempty"`
	PainPoints             []string           `json:"pain_points,omitempty"`
	EmotionalTriggers      []string           `json:"emotional_triggers,omitempty"`

	GeneratedSummary string            `json:"generated_summary,omitempty"`
	SourceData       map[string]string `json:"source_data,omitempty"`
	CreatedAt        time.Time         `json:"created_at,omitempty"`
}

// traitInScale reports whether a five-factor score is on the declared scale.
func traitInScale(v float64) bool {
	return v >= TraitScaleMin && v <= TraitScaleMax
}

// Validate checks that the persona record is complete and that every bounded
// value falls inside its declared range. It returns a field-detailed
// *Error with code ErrValidation on the first violation found.
func (p *Persona) Validate() error {
	if p == nil {
		return NewError(ErrValidation, "persona is nil")
	}
	if p.ID == "" {
		return NewFieldError(ErrValidation, "id", "persona id is required")
	}
	if p.Name == "" {
		return NewFieldError(ErrValidation, "name", "persona name is required")
	}
	if p.Age <= 0 {
		return NewFieldError(ErrValidation, "age", fmt.Sprintf("age must be positive, got %d", p.Age))
	}
	if p.Gender == "" {
		return NewFieldError(ErrValidation, "gender", "gender is required")
	}
	if p.Location == "" {
		return NewFieldError(ErrValidation, "location", "location is required")
	}

	if p.Occupation == nil {
		return NewFieldError(ErrValidation, "occupation", "occupation object is required")
	}
	if p.Occupation.Title == "" {
		return NewFieldError(ErrValidation, "occupation.title", "occupation title is required")
	}

	if p.Personality == nil {
		return NewFieldError(ErrValidation, "personality", "personality object is required")
	}
	traits := map[string]float64{
		"personality.openness":          p.Personality.Openness,
		"personality.conscientiousness": p.Personality.Conscientiousness,
		"personality.extraversion":      p.Personality.Extraversion,
		"personality.agreeableness":     p.Personality.Agreeableness,
		"personality.neuroticism":       p.Personality.Neuroticism,
	}
	for field, v := range traits {
		if !traitInScale(v) {
			return NewFieldError(ErrValidation, field,
				fmt.Sprintf("trait value %.2f outside scale [%.1f, %.1f]", v, TraitScaleMin, TraitScaleMax))
		}
	}

	if p.Preferences == nil {
		return NewFieldError(ErrValidation, "preferences", "preferences object is required")
	}
	if p.Behaviors == nil {
		return NewFieldError(ErrValidation, "behaviors", "behaviors object is required")
	}
	if p.Goals == nil {
		return NewFieldError(ErrValidation, "goals", "goals object is required")
	}
	if p.Background == nil {
		return NewFieldError(ErrValidation, "background", "background object is required")
	}

	for name, score := range p.FragmentConfidenceScores {
		if score < 0 || score > 1 {
			return NewFieldError(ErrValidation, "fragment_confidence_scores."+name,
				fmt.Sprintf("confidence score %.2f outside [0, 1]", score))
		}
	}

	switch p.ParticipationLevel {
	case ParticipationLow, ParticipationMedium, ParticipationHigh, "":
	default:
		return NewFieldError(ErrValidation, "participation_level",
			fmt.Sprintf("unknown participation level %q", p.ParticipationLevel))
	}

	return nil
}
