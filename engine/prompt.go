package engine

import (
	"fmt"
	"strings"

	"github.com/microcrowd/engine/llm"
	"github.com/microcrowd/engine/types"
)

// buildPersonaSystemPrompt renders the in-character instruction block for a
// roster persona. The trait scores are translated into concrete speaking
// directives so that divergent profiles produce divergent tone and content.
func buildPersonaSystemPrompt(conv *types.Conversation, p *types.Persona) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, a %d-year-old %s from %s.\n", p.Name, p.Age, strings.ToLower(p.Gender), p.Location)
	fmt.Fprintf(&b, "You work as %s in %s (%d years of experience, income %s).\n",
		p.Occupation.Title, p.Occupation.Industry, p.Occupation.Experience, p.Occupation.Income)

	if p.GeneratedSummary != "" {
		fmt.Fprintf(&b, "About you: %s\n", p.GeneratedSummary)
	}

	b.WriteString("\nYour personality:\n")
	for _, d := range traitDirectives(p.Personality) {
		fmt.Fprintf(&b, "- %s\n", d)
	}

	if p.Behaviors.CommunicationStyle != "" {
		fmt.Fprintf(&b, "\nCommunication style: %s.\n", p.Behaviors.CommunicationStyle)
	}
	if p.Behaviors.DecisionMaking != "" {
		fmt.Fprintf(&b, "You make decisions in a %s way.\n", p.Behaviors.DecisionMaking)
	}
	if len(p.ExpertiseAreas) > 0 {
		fmt.Fprintf(&b, "You know a lot about: %s.\n", strings.Join(p.ExpertiseAreas, ", "))
	}
	if len(p.DiscussionGoals) > 0 {
		fmt.Fprintf(&b, "In this discussion you want to: %s.\n", strings.Join(p.DiscussionGoals, "; "))
	}
	if len(p.PainPoints) > 0 {
		fmt.Fprintf(&b, "Things that frustrate you: %s.\n", strings.Join(p.PainPoints, ", "))
	}
	if len(p.EmotionalTriggers) > 0 {
		fmt.Fprintf(&b, "Topics that provoke a strong reaction from you: %s.\n", strings.Join(p.EmotionalTriggers, ", "))
	}
	if len(p.Preferences.Values) > 0 {
		fmt.Fprintf(&b, "You value %s.\n", strings.Join(p.Preferences.Values, ", "))
	}

	fmt.Fprintf(&b, "\nYou are taking part in a moderated focus group about %q. The research goal is: %s.\n",
		conv.Topic, conv.ResearchGoal)
	fmt.Fprintf(&b, "Stay fully in character. React to what the other participants and the moderator said. %s Speak in first person and do not mention that you are an AI or a persona.",
		lengthDirective(p))

	return b.String()
}

// traitDirectives maps five-factor scores to speaking directives.
// The mapping is deterministic so the same persona always receives the same
// instruction block.
func traitDirectives(t *types.Personality) []string {
	var out []string

	switch {
	case t.Openness >= 3.5:
		out = append(out, "You are curious and enjoy exploring new ideas; bring up possibilities others have not mentioned.")
	case t.Openness <= 2.5:
		out = append(out, "You prefer familiar, proven approaches and are skeptical of novelty for its own sake.")
	}

	switch {
	case t.Conscientiousness >= 3.5:
		out = append(out, "You are organized and detail-oriented; back your points with specifics.")
	case t.Conscientiousness <= 2.5:
		out = append(out, "You speak off the cuff and care more about the big picture than the details.")
	}

	switch {
	case t.Extraversion >= 3.5:
		out = append(out, "You are outspoken and energetic; jump in readily and keep the energy up.")
	case t.Extraversion <= 2.5:
		out = append(out, "You are reserved; speak only when you have something considered to add, and keep it brief.")
	}

	switch {
	case t.Agreeableness >= 3.5:
		out = append(out, "You look for common ground and acknowledge others' points before adding your own.")
	case t.Agreeableness <= 2.5:
		out = append(out, "You are blunt and willing to disagree openly when you see things differently.")
	}

	switch {
	case t.Neuroticism >= 3.5:
		out = append(out, "You voice worries and risks; point out what could go wrong.")
	case t.Neuroticism <= 2.5:
		out = append(out, "You stay calm and even-keeled, even when the discussion heats up.")
	}

	if len(out) == 0 {
		out = append(out, "You hold moderate views and express them plainly.")
	}
	return out
}

// lengthDirective derives the response length instruction from the persona's
// stated tendency, falling back to the extraversion score.
func lengthDirective(p *types.Persona) string {
	switch strings.ToLower(p.ResponseLengthTendency) {
	case "short", "brief":
		return "Answer in one or two sentences."
	case "long", "detailed", "verbose":
		return "Give a detailed answer of a short paragraph."
	case "moderate", "medium":
		return "Answer in two to four sentences."
	}
	if p.Personality != nil && p.Personality.Extraversion >= 3.5 {
		return "Answer in two to four sentences."
	}
	return "Answer in one or two sentences."
}

// buildModeratorSystemPrompt renders the moderator's steering instructions.
func buildModeratorSystemPrompt(conv *types.Conversation, guideQuestion string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are the moderator of a research focus group about %q.\n", conv.Topic)
	fmt.Fprintf(&b, "Research goal: %s\n", conv.ResearchGoal)
	if conv.DiscussionGuide != "" {
		fmt.Fprintf(&b, "Discussion guide:\n%s\n", conv.DiscussionGuide)
	}
	if guideQuestion != "" {
		fmt.Fprintf(&b, "\nSteer the group toward this question next: %s\n", guideQuestion)
	}
	b.WriteString("\nBriefly acknowledge the discussion so far if there is any, then pose the question to the group. Keep it to one or two sentences. Do not answer the question yourself.")

	return b.String()
}

// transcriptMessages converts the accumulated transcript into chat messages
// from the perspective of the upcoming speaker: their own past utterances
// become assistant messages, everyone else's become user messages prefixed
// with the speaker's name.
func transcriptMessages(conv *types.Conversation, speaker types.Speaker) []llm.Message {
	out := make([]llm.Message, 0, len(conv.Transcript))
	for i := range conv.Transcript {
		u := &conv.Transcript[i]
		if u.Speaker.Kind == speaker.Kind && u.Speaker.PersonaID == speaker.PersonaID {
			out = append(out, llm.Message{Role: llm.RoleAssistant, Content: u.Text})
			continue
		}
		out = append(out, llm.Message{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf("%s: %s", speakerLabel(u.Speaker), u.Text),
		})
	}
	return out
}

func speakerLabel(s types.Speaker) string {
	if s.Kind == types.SpeakerModerator {
		return "Moderator"
	}
	if s.Name != "" {
		return s.Name
	}
	return s.PersonaID
}
