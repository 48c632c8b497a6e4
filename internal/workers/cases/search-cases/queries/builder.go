package queries

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"crime-case-workers/internal/interpreter"
	"crime-case-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrMissingIndex = errors.New("index name is required")
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var keywordFields = []string{"title^3", "description^2", "evidence_summary"}

type CaseQuery struct {
	Index   string
	Command interpreter.ParsedCommand
	From    int
	Size    int
}

// BuildCaseQuery maps an interpreted command onto a search request against
// the published case index.
func BuildCaseQuery(cq CaseQuery) (*esapi.SearchRequest, error) {
	if cq.Index == "" {
		return nil, ErrMissingIndex
	}

	from, size := normalizePage(cq.From, cq.Size)

	body, err := json.Marshal(BuildCaseQueryBody(cq.Command))
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	return &esapi.SearchRequest{
		Index: []string{cq.Index},
		Body:  bytes.NewReader(body),
		From:  &from,
		Size:  &size,
	}, nil
}

func normalizePage(from, size int) (int, int) {
	if from < 0 {
		from = 0
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return from, size
}

// BuildCaseQueryBody returns the bool query for cmd. filter_cases commands
// place every clause in filter context so they do not affect scoring.
func BuildCaseQueryBody(cmd interpreter.ParsedCommand) map[string]interface{} {
	e := cmd.Entities
	clauses := []interface{}{}

	if len(e.CrimeType) > 0 {
		clauses = append(clauses, map[string]interface{}{
			"terms": map[string]interface{}{"crime_type": e.CrimeType},
		})
	}
	if e.Location != nil {
		clauses = append(clauses, map[string]interface{}{
			"match": map[string]interface{}{"location": *e.Location},
		})
	}
	if e.TimeRange != nil {
		clauses = append(clauses, map[string]interface{}{
			"range": map[string]interface{}{
				"date_reported": map[string]interface{}{
					"gte": e.TimeRange.Start.Format(models.DateLayout),
					"lte": e.TimeRange.End.Format(models.DateLayout),
				},
			},
		})
	}
	if e.Suspect != nil {
		clauses = append(clauses, map[string]interface{}{
			"match": map[string]interface{}{"primary_suspect": *e.Suspect},
		})
	}
	if e.CaseID != nil {
		clauses = append(clauses, map[string]interface{}{
			"term": map[string]interface{}{
				"case_number": map[string]interface{}{
					"value":            *e.CaseID,
					"case_insensitive": true,
				},
			},
		})
	}

	filter := []interface{}{
		map[string]interface{}{
			"term": map[string]interface{}{"workflow_stage": string(models.StagePublished)},
		},
	}
	boolQuery := map[string]interface{}{}

	if cmd.Intent == interpreter.IntentFilterCases {
		filter = append(filter, clauses...)
	} else if len(clauses) > 0 {
		boolQuery["must"] = clauses
	}
	boolQuery["filter"] = filter

	if len(e.Keywords) > 0 {
		keywordClause := map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  strings.Join(e.Keywords, " "),
				"fields": keywordFields,
				"type":   "best_fields",
			},
		}
		// keywords only rank results once structured clauses exist
		if _, hasMust := boolQuery["must"]; hasMust || cmd.Intent == interpreter.IntentFilterCases {
			boolQuery["should"] = []interface{}{keywordClause}
		} else {
			boolQuery["must"] = []interface{}{keywordClause}
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			map[string]interface{}{"date_reported": map[string]interface{}{"order": "desc"}},
			"_score",
		},
	}
}
