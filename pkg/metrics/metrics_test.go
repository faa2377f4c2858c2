package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetrics_RegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("mediqueue", reg)

	m.TokensBooked.WithLabelValues("Cardiology").Inc()
	m.TokenTransitions.WithLabelValues("serving").Add(2)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.TokensBooked.WithLabelValues("Cardiology")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.TokenTransitions.WithLabelValues("serving")))

	count, err := testutil.GatherAndCount(reg, "mediqueue_tokens_booked_total")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics("mediqueue", prometheus.NewRegistry())
		NewMetrics("mediqueue", prometheus.NewRegistry())
	})
}
