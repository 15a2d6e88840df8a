package feedback

import (
	"fmt"
	"strings"

	"github.com/team-kosa-skynet/Morningstar-back-sub000/internal/domain"
)

// StaticPlan is the last rung of the plan ladder. It never fails and asks
// only role-agnostic questions so nothing leaks across roles.
func StaticPlan(role string, n int, seed int64) domain.Plan {
	texts := []string{
		"Walk me through your background and what draws you to this role.",
		"Tell me about a recent project you are proud of and your part in it.",
		"Describe a technically challenging problem you solved. What made it hard?",
		"How do you decide when code is ready to ship?",
		"Tell me about a time you had to learn a new technology quickly.",
		"How do you keep quality high when deadlines are tight?",
		"Design a system you would build to solve a recurring problem at your last job.",
		"What tradeoffs did you weigh in the most consequential technical decision you made?",
		"Walk me through how you debugged the worst production incident you have seen.",
		"What would you want to get better at in your next role, and how?",
	}
	plan := domain.Plan{JobRole: role, Seed: seed}
	for i := 0; i < n; i++ {
		plan.Questions = append(plan.Questions, domain.Question{
			Index:  i,
			Type:   domain.TypeForSlot(i, n),
			Text:   texts[i%len(texts)],
			Intent: "Assess how clearly the candidate reasons about their own work.",
			Guides: []string{
				"Names a concrete situation",
				"Explains their own decisions",
				"States the outcome",
			},
		})
	}
	return plan
}

// FallbackTip produces the templated coaching tip used when every provider
// fails mid-interview. It is generic on purpose.
func FallbackTip(qType domain.QuestionType) string {
	switch qType {
	case domain.QuestionTechnical:
		return "Good effort. Next time, anchor your answer in one concrete example and name the specific techniques you used."
	case domain.QuestionDesign:
		return "Good effort. Next time, state your assumptions up front and walk through the tradeoffs before committing to a design."
	case domain.QuestionTroubleshoot:
		return "Good effort. Next time, narrate your debugging steps in order and say how you confirmed the root cause."
	default:
		return "Good effort. Next time, structure your answer as situation, action, result to make it easier to follow."
	}
}

// FallbackNarrative assembles a report narrative directly from the facts
// bundle without any model call.
func FallbackNarrative(facts ReportFacts) Narrative {
	strengths := "You completed the session and gave answers across every question type."
	if len(facts.TopMetrics) > 0 {
		strengths = fmt.Sprintf("Your strongest areas were %s. Keep leaning on them in real interviews.", humanizeMetrics(facts.TopMetrics))
	}
	improve := "Focus on giving more structured, evidence-backed answers."
	if len(facts.BottomMetrics) > 0 {
		improve = fmt.Sprintf("The biggest gaps were in %s. Practice answers that target those skills directly.", humanizeMetrics(facts.BottomMetrics))
	}
	next := fmt.Sprintf("Review the per-question tips above, rehearse the weakest answers out loud, and run another %s session to measure the change.", facts.JobRole)
	return Narrative{Strengths: strengths, AreasToImprove: improve, NextSteps: next}
}

func humanizeMetrics(keys []string) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, strings.ReplaceAll(k, "_", " "))
	}
	return strings.Join(parts, " and ")
}

// DefaultGreeting is shared by both providers; greetings are deterministic
// so session start never waits on a model.
func DefaultGreeting(displayName string) string {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return "Welcome! I'm your interviewer today. Take a breath, and let's begin."
	}
	return fmt.Sprintf("Welcome, %s! I'm your interviewer today. Take a breath, and let's begin.", name)
}
