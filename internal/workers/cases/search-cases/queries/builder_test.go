package queries

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	"crime-case-workers/internal/interpreter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func parse(text string) interpreter.ParsedCommand {
	return interpreter.NewParser(interpreter.WithClock(func() time.Time { return fixedNow })).Parse(text)
}

func boolQuery(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return decoded["query"].(map[string]interface{})["bool"].(map[string]interface{})
}

func TestBuildCaseQueryBody_CrimeAndTime(t *testing.T) {
	bq := boolQuery(t, BuildCaseQueryBody(parse("show me all armed robberies this month")))

	must := bq["must"].([]interface{})
	require.Len(t, must, 2)

	terms := must[0].(map[string]interface{})["terms"].(map[string]interface{})
	assert.Equal(t, []interface{}{"armed robbery", "robbery"}, terms["crime_type"])

	rng := must[1].(map[string]interface{})["range"].(map[string]interface{})["date_reported"].(map[string]interface{})
	assert.Equal(t, "2024-05-16", rng["gte"])
	assert.Equal(t, "2024-06-15", rng["lte"])

	filter := bq["filter"].([]interface{})
	require.Len(t, filter, 1)
	assert.Equal(t, "published", filter[0].(map[string]interface{})["term"].(map[string]interface{})["workflow_stage"])

	should := bq["should"].([]interface{})
	mm := should[0].(map[string]interface{})["multi_match"].(map[string]interface{})
	assert.Equal(t, "armed robberies month", mm["query"])
	assert.Equal(t, []interface{}{"title^3", "description^2", "evidence_summary"}, mm["fields"])
}

func TestBuildCaseQueryBody_FilterIntentUsesFilterContext(t *testing.T) {
	cmd := parse("filter homicides in district 7 last month")
	require.Equal(t, interpreter.IntentFilterCases, cmd.Intent)

	bq := boolQuery(t, BuildCaseQueryBody(cmd))

	_, hasMust := bq["must"]
	assert.False(t, hasMust)
	filter := bq["filter"].([]interface{})
	assert.Greater(t, len(filter), 1)
}

func TestBuildCaseQueryBody_CaseIDAndSuspect(t *testing.T) {
	cmd := interpreter.ParsedCommand{Intent: interpreter.IntentSearchCases}
	caseID, suspect := "cr-2024-001", "lee"
	cmd.Entities.CaseID = &caseID
	cmd.Entities.Suspect = &suspect

	bq := boolQuery(t, BuildCaseQueryBody(cmd))
	must := bq["must"].([]interface{})
	require.Len(t, must, 2)

	assert.Equal(t, "lee", must[0].(map[string]interface{})["match"].(map[string]interface{})["primary_suspect"])
	term := must[1].(map[string]interface{})["term"].(map[string]interface{})["case_number"].(map[string]interface{})
	assert.Equal(t, "cr-2024-001", term["value"])
	assert.Equal(t, true, term["case_insensitive"])
}

func TestBuildCaseQueryBody_KeywordsOnly(t *testing.T) {
	cmd := interpreter.ParsedCommand{Intent: interpreter.IntentSearchCases}
	cmd.Entities.Keywords = []string{"stolen", "bicycle"}

	bq := boolQuery(t, BuildCaseQueryBody(cmd))
	must := bq["must"].([]interface{})
	require.Len(t, must, 1)
	assert.Contains(t, must[0], "multi_match")
	_, hasShould := bq["should"]
	assert.False(t, hasShould)
}

func TestBuildCaseQuery(t *testing.T) {
	_, err := BuildCaseQuery(CaseQuery{})
	assert.ErrorIs(t, err, ErrMissingIndex)

	req, err := BuildCaseQuery(CaseQuery{Index: "cases", Command: parse("show burglaries today"), Size: 500})
	require.NoError(t, err)
	assert.Equal(t, []string{"cases"}, req.Index)
	assert.Equal(t, 0, *req.From)
	assert.Equal(t, MaxPageSize, *req.Size)

	raw, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"sort"`)
}

func TestNormalizePage(t *testing.T) {
	from, size := normalizePage(-5, 0)
	assert.Equal(t, 0, from)
	assert.Equal(t, DefaultPageSize, size)
}
