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
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestRecordModeration(t *testing.T) {
	actions := counterValue(t, ModerationActions.WithLabelValues("dismiss", "post"))
	affected := counterValue(t, ReportsAffected.WithLabelValues("dismiss"))

	RecordModeration("dismiss", "post", 3)
	RecordModeration("dismiss", "post", 0)

	assert.Equal(t, actions+2, counterValue(t, ModerationActions.WithLabelValues("dismiss", "post")))
	assert.Equal(t, affected+3, counterValue(t, ReportsAffected.WithLabelValues("dismiss")))
}
