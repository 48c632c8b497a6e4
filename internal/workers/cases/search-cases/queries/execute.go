package queries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
)

var ErrIndexNotFound = errors.New("index does not exist")

type CaseHit struct {
	ID     string                 `json:"id"`
	Score  float64                `json:"score"`
	Source map[string]interface{} `json:"source"`
}

type QueryResult struct {
	Hits      []CaseHit
	TotalHits int64
	MaxScore  float64
	Took      int64
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			ID     string                 `json:"_id"`
			Score  *float64               `json:"_score"`
			Source map[string]interface{} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func Execute(ctx context.Context, esClient *elasticsearch.Client, cq CaseQuery) (*QueryResult, error) {
	req, err := BuildCaseQuery(cq)
	if err != nil {
		return nil, err
	}

	res, err := req.Do(ctx, esClient)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, cq.Index)
	}
	if res.IsError() {
		return nil, fmt.Errorf("search query failed: %s", res.String())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	result := &QueryResult{
		Hits:      make([]CaseHit, 0, len(r.Hits.Hits)),
		TotalHits: r.Hits.Total.Value,
		Took:      r.Took,
	}
	if r.Hits.MaxScore != nil {
		result.MaxScore = *r.Hits.MaxScore
	}
	for _, hit := range r.Hits.Hits {
		h := CaseHit{ID: hit.ID, Source: hit.Source}
		if hit.Score != nil {
			h.Score = *hit.Score
		}
		result.Hits = append(result.Hits, h)
	}

	return result, nil
}
