package searchcases

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "crime-case-workers/internal/common/errors"
	"crime-case-workers/internal/common/logger"
	"crime-case-workers/internal/interpreter"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var fixedNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func createTestConfig() *Config {
	return &Config{
		Timeout:      5 * time.Second,
		DefaultIndex: "cases",
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewTestLogger(t)
}

func parse(text string) interpreter.ParsedCommand {
	return interpreter.NewParser(interpreter.WithClock(func() time.Time { return fixedNow })).Parse(text)
}

// newFakeElasticsearch serves a canned response and records the request body.
func newFakeElasticsearch(t *testing.T, status int, body string, gotBody *string, gotPath *string) *elasticsearch.Client {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotBody != nil {
			raw, _ := io.ReadAll(r.Body)
			*gotBody = string(raw)
		}
		if gotPath != nil {
			*gotPath = r.URL.Path
		}
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)
	return client
}

const searchResponse = `{
	"took": 7,
	"hits": {
		"total": {"value": 2, "relation": "eq"},
		"max_score": null,
		"hits": [
			{"_id": "CR-2024-010", "_score": null, "_source": {"case_number": "CR-2024-010", "crime_type": "armed robbery"}},
			{"_id": "CR-2024-004", "_score": null, "_source": {"case_number": "CR-2024-004", "crime_type": "robbery"}}
		]
	}
}`

// ==========================
// Execute
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	var body, path string
	es := newFakeElasticsearch(t, http.StatusOK, searchResponse, &body, &path)
	h := NewHandler(createTestConfig(), es, createTestLogger(t))

	output, err := h.Execute(context.Background(), &Input{Command: parse("show me all armed robberies this month")})

	require.NoError(t, err)
	assert.Equal(t, int64(2), output.TotalHits)
	assert.Equal(t, int64(7), output.Took)
	require.Len(t, output.Cases, 2)
	assert.Equal(t, "CR-2024-010", output.Cases[0].ID)
	assert.Equal(t, "armed robbery", output.Cases[0].Source["crime_type"])
	assert.Equal(t, "Crime: armed robbery, robbery | Time: this month", output.Summary)

	assert.Equal(t, "/cases/_search", path)
	assert.Contains(t, body, `"crime_type":["armed robbery","robbery"]`)
	assert.Contains(t, body, `"workflow_stage":"published"`)
}

func TestHandler_Execute_CustomIndex(t *testing.T) {
	var path string
	es := newFakeElasticsearch(t, http.StatusOK, searchResponse, nil, &path)
	h := NewHandler(createTestConfig(), es, createTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{
		Command:    parse("find cases near sector 9 from last week"),
		IndexName:  "cases-archive",
		Pagination: Pagination{From: 20, Size: 10},
	})

	require.NoError(t, err)
	assert.Equal(t, "/cases-archive/_search", path)
}

func TestHandler_Execute_ClarificationRequired(t *testing.T) {
	h := NewHandler(createTestConfig(), nil, createTestLogger(t))
	input := &Input{Command: parse("at 9")}

	output, err := h.Execute(context.Background(), input)

	assert.Nil(t, output)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrClarificationRequired))

	stdErr := h.toStandardError(err, input)
	assert.Equal(t, apperrors.ErrCodeClarificationRequired, stdErr.Code)
	assert.Equal(t, interpreter.QuestionTimePeriod, stdErr.Metadata["clarificationQuestion"])
}

func TestHandler_Execute_IndexNotFound(t *testing.T) {
	es := newFakeElasticsearch(t, http.StatusNotFound, `{"error":{"type":"index_not_found_exception"},"status":404}`, nil, nil)
	h := NewHandler(createTestConfig(), es, createTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{Command: parse("show me all armed robberies this month")})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndexNotFound))
	assert.Equal(t, apperrors.ErrCodeIndexNotFound, h.toStandardError(err, &Input{}).Code)
}

func TestHandler_Execute_SearchFailure(t *testing.T) {
	es := newFakeElasticsearch(t, http.StatusBadRequest, `{"error":{"type":"parsing_exception"},"status":400}`, nil, nil)
	h := NewHandler(createTestConfig(), es, createTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{Command: parse("show me all armed robberies this month")})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSearchQueryFailed))

	stdErr := h.toStandardError(err, &Input{})
	assert.Equal(t, apperrors.ErrCodeSearchQueryFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}
