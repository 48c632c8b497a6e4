package interpreter

import (
	"fmt"
	"math"
	"strings"
)

const ClarificationThreshold = 0.7

const (
	QuestionNotUnderstood   = "I didn't understand that command. Could you please rephrase it?"
	QuestionMoreDetails     = "Could you specify more details, such as the crime type, location, or time period?"
	QuestionTimePeriod      = "What time period are you interested in? For example: today, this week, last month, or a date like 01/15/2024."
	QuestionLocation        = "Which location or sector should I search in?"
	QuestionMoreSpecific    = "Could you please provide more specific details?"
	questionMultipleCrimeFm = "I found multiple crime types: %s. Which one would you like to focus on?"
)

// Clarification reasons, used as metric labels.
const (
	ReasonUnknownIntent   = "unknown_intent"
	ReasonNoCoreEntities  = "no_core_entities"
	ReasonMultipleCrimes  = "multiple_crime_types"
	ReasonMissingTime     = "missing_time_range"
	ReasonMissingLocation = "missing_location"
	ReasonGeneric         = "generic"
)

func scoreConfidence(intent CommandIntent, entities CommandEntities, tokenCount int) float64 {
	score := 0.0
	if intent != IntentUnknown {
		score += 0.3
	}
	score += math.Min(0.4, 0.2*float64(entities.Count()))
	if tokenCount >= 4 {
		score += 0.2
	}
	if tokenCount >= 8 {
		score += 0.1
	}
	score = math.Min(score, 1.0)
	return math.Round(score*100) / 100
}

// Clarify returns the follow-up question for an intent and entity bag.
func Clarify(intent CommandIntent, entities CommandEntities) string {
	question, _ := clarify(intent, entities)
	return question
}

func clarify(intent CommandIntent, e CommandEntities) (string, string) {
	switch {
	case intent == IntentUnknown:
		return QuestionNotUnderstood, ReasonUnknownIntent
	case len(e.CrimeType) == 0 && e.Location == nil && e.TimeRange == nil:
		return QuestionMoreDetails, ReasonNoCoreEntities
	case len(e.CrimeType) > 1:
		return fmt.Sprintf(questionMultipleCrimeFm, strings.Join(e.CrimeType, ", ")), ReasonMultipleCrimes
	case e.TimeRange == nil:
		return QuestionTimePeriod, ReasonMissingTime
	case e.Location == nil:
		return QuestionLocation, ReasonMissingLocation
	default:
		return QuestionMoreSpecific, ReasonGeneric
	}
}

// ClarificationReason names the rule that produced cmd's question, or "" when
// cmd needs no clarification.
func ClarificationReason(cmd ParsedCommand) string {
	if !cmd.NeedsClarification {
		return ""
	}
	_, reason := clarify(cmd.Intent, cmd.Entities)
	return reason
}
