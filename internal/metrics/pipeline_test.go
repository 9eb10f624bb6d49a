package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterPipelineMetrics_Idempotent(t *testing.T) {
	RegisterPipelineMetrics()
	RegisterPipelineMetrics()

	PipelineRunsTotal.WithLabelValues("scheduler", "error").Inc()
	if v := testutil.ToFloat64(PipelineRunsTotal.WithLabelValues("scheduler", "error")); v < 1 {
		t.Errorf("expected counter >= 1, got %f", v)
	}
}

func TestRegisterEmbeddingMetrics_Idempotent(t *testing.T) {
	RegisterEmbeddingMetrics()
	RegisterEmbeddingMetrics()

	EmbeddingCacheTotal.WithLabelValues("hit").Inc()
	if v := testutil.ToFloat64(EmbeddingCacheTotal.WithLabelValues("hit")); v < 1 {
		t.Errorf("expected counter >= 1, got %f", v)
	}
}
