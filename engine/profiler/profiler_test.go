package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTick_LogsPerInterval(t *testing.T) {
	var buf bytes.Buffer
	p := NewProfiler(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	logged := 0
	for i := 0; i < 180; i++ {
		if p.Tick(1.0/90, i/60) {
			logged++
		}
	}
	assert.Equal(t, 2, logged)
	assert.Contains(t, buf.String(), "frame stats")
	assert.Contains(t, buf.String(), "fps=")

	s := p.Stats()
	assert.InDelta(t, 90, s.FPS, 1)
	assert.InDelta(t, 90, s.Frames, 1)
	assert.Equal(t, 1, s.Switches)
}

func TestTick_FrameTimeNotWallTime(t *testing.T) {
	p := NewProfiler(WithLogger(slog.New(slog.DiscardHandler)), WithInterval(500*time.Millisecond))
	for i := 0; i < 9; i++ {
		require.False(t, p.Tick(0.05, 0))
	}
	assert.True(t, p.Tick(0.05, 0))
	assert.InDelta(t, 20, p.Stats().FPS, 1e-6)

	assert.False(t, p.Tick(0, 0), "zero deltas never complete an interval")
	assert.False(t, p.Tick(-1, 0))
}

func TestWithInterval_IgnoresNonPositive(t *testing.T) {
	p := NewProfiler(WithInterval(0), WithLogger(nil))
	assert.Equal(t, 1.0, p.updateInterval)
	assert.NotNil(t, p.logger)
}
