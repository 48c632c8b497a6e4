package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(func() time.Time { return fixedNow })
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestParse_JSON(t *testing.T) {
	out, err := run(t, "", "parse", "show", "me", "all", "armed", "robberies", "this", "month", "-o", "json")
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "crime_type_query", got["intent"])
	assert.Equal(t, 0.9, got["confidence"])
	assert.Equal(t, "Crime: armed robbery, robbery | Time: this month", got["summary"])
	assert.Equal(t, false, got["needsClarification"])
}

func TestParse_YAML(t *testing.T) {
	out, err := run(t, "", "parse", "--output", "yaml", "at 9")
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "location_query", got["intent"])
	assert.Equal(t, true, got["needsClarification"])
	entities, ok := got["entities"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "9", entities["location"])
}

func TestParse_Text(t *testing.T) {
	out, err := run(t, "", "parse", "at", "9")
	require.NoError(t, err)

	assert.Contains(t, out, "location_query")
	assert.Contains(t, out, "summary:")
	assert.Contains(t, out, "Location: 9")
	assert.Contains(t, out, "What time period are you interested in?")
}

func TestParse_BadFormat(t *testing.T) {
	_, err := run(t, "", "parse", "-o", "xml", "robbery")
	assert.Error(t, err)
}

func TestParse_RequiresText(t *testing.T) {
	_, err := run(t, "", "parse")
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	out, err := run(t, "", "summary", "find cases near sector 9 from last week")
	require.NoError(t, err)
	assert.Equal(t, "Location: 9 | Time: last week\n", out)
}

func TestRepl(t *testing.T) {
	input := "show me all armed robberies this month\n\n   \nhello\n"
	out, err := run(t, input, "repl", "-o", "json")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "crime_type_query", first["intent"])
	assert.Equal(t, "unknown", second["intent"])
	assert.Equal(t, "General search", second["summary"])
}
