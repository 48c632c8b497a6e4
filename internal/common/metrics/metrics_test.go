package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}

func TestObserveCommand(t *testing.T) {
	before := counterValue(t, InterpreterCommands.WithLabelValues("location_query"))
	beforeClarify := counterValue(t, InterpreterClarifications.WithLabelValues("missing_location"))

	ObserveCommand("location_query", 0.9, "")
	ObserveCommand("location_query", 0.5, "missing_location")

	assert.Equal(t, before+2, counterValue(t, InterpreterCommands.WithLabelValues("location_query")))
	assert.Equal(t, beforeClarify+1, counterValue(t, InterpreterClarifications.WithLabelValues("missing_location")))
}
