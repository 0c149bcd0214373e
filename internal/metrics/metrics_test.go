package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromRecordsStagesAndOutcome(t *testing.T) {
	t.Parallel()
	p := NewProm("wuinstall")
	p.ObserveStage("source", true, 12.5)
	p.ObserveStage("patch", false, 0.25)
	p.IncRetry("git clone")
	p.IncRetry("git clone")
	p.SetOutcome("installing", 1)
	p.SetOutcome("failed", 128)

	assert.Equal(t, 12.5, testutil.ToFloat64(p.stageDuration.WithLabelValues("source")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.stageStatus.WithLabelValues("source")))
	assert.Equal(t, 0.0, testutil.ToFloat64(p.stageStatus.WithLabelValues("patch")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.retries.WithLabelValues("git clone")))
	assert.Equal(t, 128.0, testutil.ToFloat64(p.exitCode))
	assert.Equal(t, 1, testutil.CollectAndCount(p.outcome), "only the last outcome is kept")
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()
	p := NewProm("wuinstall")
	p.ObserveStage("packages", true, 3)
	p.SetOutcome("installed", 0)

	path := filepath.Join(t.TempDir(), "wuinstall.prom")
	require.NoError(t, p.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `wuinstall_stage_duration_seconds{stage="packages"} 3`)
	assert.Contains(t, text, `wuinstall_outcome{state="installed"} 1`)
	assert.True(t, strings.Contains(text, "# HELP wuinstall_exit_code"))
}

func TestWriteTextfileBadPath(t *testing.T) {
	t.Parallel()
	p := NewProm("wuinstall")
	require.Error(t, p.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")))
}

func TestNoopSatisfiesInterface(t *testing.T) {
	t.Parallel()
	var m Metrics = Noop{}
	m.ObserveStage("x", true, 1)
	m.IncRetry("x")
	m.SetOutcome("installed", 0)
}
