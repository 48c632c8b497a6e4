package interpreter

import (
	"encoding/json"
	"time"
)

type CommandIntent string

const (
	IntentSearchCases    CommandIntent = "search_cases"
	IntentFilterCases    CommandIntent = "filter_cases"
	IntentTemporalQuery  CommandIntent = "temporal_query"
	IntentLocationQuery  CommandIntent = "location_query"
	IntentSuspectQuery   CommandIntent = "suspect_query"
	IntentCrimeTypeQuery CommandIntent = "crime_type_query"
	IntentUnknown        CommandIntent = "unknown"
)

var knownIntents = map[CommandIntent]struct{}{
	IntentSearchCases:    {},
	IntentFilterCases:    {},
	IntentTemporalQuery:  {},
	IntentLocationQuery:  {},
	IntentSuspectQuery:   {},
	IntentCrimeTypeQuery: {},
	IntentUnknown:        {},
}

func (i CommandIntent) IsValid() bool {
	_, ok := knownIntents[i]
	return ok
}

// TimeRange is either a relative window (Relative set) or a single absolute
// date where Start equals End.
type TimeRange struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Relative string    `json:"relative,omitempty"`
}

// CommandEntities holds the values extracted from an utterance. A nil field
// means the extractor found nothing.
type CommandEntities struct {
	CrimeType []string   `json:"crimeType,omitempty"`
	Location  *string    `json:"location,omitempty"`
	TimeRange *TimeRange `json:"timeRange,omitempty"`
	Suspect   *string    `json:"suspect,omitempty"`
	CaseID    *string    `json:"caseId,omitempty"`
	Keywords  []string   `json:"keywords,omitempty"`
}

// Count returns the number of populated top-level fields.
func (e CommandEntities) Count() int {
	n := 0
	if len(e.CrimeType) > 0 {
		n++
	}
	if e.Location != nil {
		n++
	}
	if e.TimeRange != nil {
		n++
	}
	if e.Suspect != nil {
		n++
	}
	if e.CaseID != nil {
		n++
	}
	if len(e.Keywords) > 0 {
		n++
	}
	return n
}

// UnmarshalJSON maps empty lists to nil so decoded bags keep the
// absent-means-nil contract.
func (e *CommandEntities) UnmarshalJSON(data []byte) error {
	type plain CommandEntities
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if len(decoded.CrimeType) == 0 {
		decoded.CrimeType = nil
	}
	if len(decoded.Keywords) == 0 {
		decoded.Keywords = nil
	}
	*e = CommandEntities(decoded)
	return nil
}

type ParsedCommand struct {
	Intent                CommandIntent   `json:"intent"`
	Entities              CommandEntities `json:"entities"`
	Confidence            float64         `json:"confidence"`
	RawText               string          `json:"rawText"`
	NeedsClarification    bool            `json:"needsClarification"`
	ClarificationQuestion *string         `json:"clarificationQuestion,omitempty"`
}
