package interpreter

// classifyIntent walks the cascade top to bottom; the first rule that fires wins.
func classifyIntent(text string) CommandIntent {
	switch {
	case containsAny(text, searchTriggers):
		return classifySearch(text)
	case containsAny(text, filterTriggers):
		return IntentFilterCases
	case hasTemporalKeyword(text):
		return IntentTemporalQuery
	case hasLocationCue(text):
		return IntentLocationQuery
	case containsAny(text, suspectTriggers):
		return IntentSuspectQuery
	default:
		return IntentUnknown
	}
}

func classifySearch(text string) CommandIntent {
	switch {
	case hasCrimePhrase(text):
		return IntentCrimeTypeQuery
	case hasLocationCue(text):
		return IntentLocationQuery
	case hasTemporalKeyword(text):
		return IntentTemporalQuery
	default:
		return IntentSearchCases
	}
}
