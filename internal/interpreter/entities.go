package interpreter

import (
	"regexp"
	"strings"
	"time"
)

var (
	prepositionLocationPattern = regexp.MustCompile(`(?i)(?:in|near|at|around)\s+([a-z0-9\s]+?)(?:\s|$)`)
	sectorPattern              = regexp.MustCompile(`(?i)sector\s+(\d+)`)
	districtPattern            = regexp.MustCompile(`(?i)district\s+([a-z0-9\s]+?)(?:\s|$)`)
	suspectPattern             = regexp.MustCompile(`(?i)suspect\s+(?:named\s+)?([a-z\s]+?)(?:\s|$)`)
	caseIDPattern              = regexp.MustCompile(`(?i)case\s+(?:id\s+)?([a-z0-9-]+)`)
	nonAlphanumeric            = regexp.MustCompile(`[^a-z0-9]+`)
)

func extractEntities(text string, now time.Time) CommandEntities {
	return CommandEntities{
		CrimeType: extractCrimeTypes(text),
		Location:  extractLocation(text),
		TimeRange: extractTimeRange(text, now),
		Suspect:   extractSuspect(text),
		CaseID:    extractCaseID(text),
		Keywords:  extractKeywords(text),
	}
}

func extractCrimeTypes(text string) []string {
	var found []string
	for _, form := range crimeForms {
		if strings.Contains(text, form[0]) || strings.Contains(text, form[1]) {
			found = append(found, form[0])
		}
	}
	return found
}

// extractLocation tries the preposition pattern, then sector, then district.
// Only the first preposition match counts; when it captures the bare word
// "sector" or "district" the dedicated patterns take over.
func extractLocation(text string) *string {
	if m := prepositionLocationPattern.FindStringSubmatch(text); m != nil {
		loc := strings.TrimSpace(m[1])
		if _, structural := locationKeywords[loc]; !structural && loc != "" {
			return &loc
		}
	}
	if m := sectorPattern.FindStringSubmatch(text); m != nil {
		return trimmedCapture(m[1])
	}
	if m := districtPattern.FindStringSubmatch(text); m != nil {
		return trimmedCapture(m[1])
	}
	return nil
}

func extractSuspect(text string) *string {
	m := suspectPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return trimmedCapture(m[1])
}

func extractCaseID(text string) *string {
	m := caseIDPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return trimmedCapture(m[1])
}

func extractKeywords(text string) []string {
	var keywords []string
	seen := make(map[string]struct{})
	for _, token := range strings.Fields(text) {
		word := nonAlphanumeric.ReplaceAllString(token, "")
		if len(word) <= 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
	}
	return keywords
}

func trimmedCapture(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
