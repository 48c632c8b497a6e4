package searchcases

import (
	"crime-case-workers/internal/interpreter"
	"crime-case-workers/internal/workers/cases/search-cases/queries"
)

type Input struct {
	Command    interpreter.ParsedCommand `json:"command"`
	IndexName  string                    `json:"indexName,omitempty"`
	Pagination Pagination                `json:"pagination"`
}

type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
}

type Output struct {
	Cases     []queries.CaseHit `json:"cases"`
	TotalHits int64             `json:"totalHits"`
	MaxScore  float64           `json:"maxScore"`
	Took      int64             `json:"took"` // milliseconds
	Summary   string            `json:"summary"`
}
