package interpreter

import "strings"

// crimeTypes is matched in this order; the order of the result follows it.
var crimeTypes = []string{
	"armed robbery",
	"robbery",
	"burglary",
	"theft",
	"assault",
	"homicide",
	"fraud",
	"vandalism",
	"arson",
	"kidnapping",
	"drug trafficking",
	"cybercrime",
	"domestic violence",
}

type temporalEntry struct {
	phrase string
	days   int
	offset int
}

var temporalKeywords = []temporalEntry{
	{phrase: "today", days: 0},
	{phrase: "yesterday", days: 1},
	{phrase: "this week", days: 7},
	{phrase: "last week", days: 14, offset: 7},
	{phrase: "this month", days: 30},
	{phrase: "last month", days: 60, offset: 30},
	{phrase: "this year", days: 365},
}

var (
	searchTriggers   = []string{"show", "find", "search", "get"}
	filterTriggers   = []string{"filter", "narrow", "matching"}
	suspectTriggers  = []string{"suspect", "perpetrator"}
	locationCues     = []string{"in ", "near ", "at ", "around ", "sector", "district"}
	locationKeywords = map[string]struct{}{"sector": {}, "district": {}}
)

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "into": {}, "onto": {},
	"near": {}, "around": {}, "about": {}, "over": {}, "under": {}, "between": {},
	"show": {}, "find": {}, "search": {}, "get": {}, "all": {}, "any": {},
	"list": {}, "display": {}, "give": {}, "please": {}, "can": {}, "you": {},
	"want": {}, "need": {}, "are": {}, "was": {}, "were": {}, "has": {}, "have": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "what": {}, "where": {},
	"when": {}, "which": {}, "who": {}, "there": {}, "their": {}, "our": {},
}

// crimeForms pairs each vocabulary phrase with its regular plural.
var crimeForms = buildCrimeForms()

func buildCrimeForms() [][2]string {
	forms := make([][2]string, len(crimeTypes))
	for i, phrase := range crimeTypes {
		forms[i] = [2]string{phrase, pluralize(phrase)}
	}
	return forms
}

func pluralize(phrase string) string {
	n := len(phrase)
	switch {
	case n > 1 && phrase[n-1] == 'y' && !strings.ContainsRune("aeiou", rune(phrase[n-2])):
		return phrase[:n-1] + "ies"
	case strings.HasSuffix(phrase, "s"), strings.HasSuffix(phrase, "x"),
		strings.HasSuffix(phrase, "ch"), strings.HasSuffix(phrase, "sh"):
		return phrase + "es"
	default:
		return phrase + "s"
	}
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}

func hasCrimePhrase(text string) bool {
	for _, form := range crimeForms {
		if strings.Contains(text, form[0]) || strings.Contains(text, form[1]) {
			return true
		}
	}
	return false
}

func hasTemporalKeyword(text string) bool {
	for _, entry := range temporalKeywords {
		if strings.Contains(text, entry.phrase) {
			return true
		}
	}
	return false
}

func hasLocationCue(text string) bool {
	return containsAny(text, locationCues)
}

// CrimeTypes returns a copy of the crime vocabulary in match order.
func CrimeTypes() []string {
	out := make([]string, len(crimeTypes))
	copy(out, crimeTypes)
	return out
}
