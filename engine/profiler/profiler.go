package profiler

import (
	"log/slog"
	"runtime"
	"time"
)

// Stats is one interval of frame and memory statistics.
type Stats struct {
	// FPS is frames per second of frame time, not wall time.
	FPS    float64
	Frames int
	// Switches is how many camera switches happened during the interval.
	Switches    int
	HeapMB      float64
	AllocRateMB float64
	GC          uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
	SysMB       float64
}

// Profiler tracks frame rate, camera switches and memory statistics.
// It is driven by frame deltas so replays faster than real time report their simulated rate.
// Outputs stats to the logger at a configurable interval.
type Profiler struct {
	logger         *slog.Logger
	frameCount     int
	elapsed        float64
	updateInterval float64
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	lastSwitches   int
	last           Stats
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second of frame time.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		logger:         slog.Default(),
		updateInterval: time.Second.Seconds(),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, camera switches, heap usage, allocation rate, GC count/pause times, total memory.
//
// Parameters:
//   - deltaTime: seconds since the previous frame
//   - switches: the director's running switch count
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(deltaTime float32, switches int) bool {
	p.frameCount++
	if deltaTime > 0 {
		p.elapsed += float64(deltaTime)
	}
	if p.elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	// Alloc: live heap; TotalAlloc: cumulative, tracks churn; Sys: process footprint
	s := Stats{
		FPS:      float64(p.frameCount) / p.elapsed,
		Frames:   p.frameCount,
		Switches: switches - p.lastSwitches,
		HeapMB:   float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:    float64(p.memStats.Sys) / 1024 / 1024,
		GC:       p.memStats.NumGC,
	}
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	s.AllocRateMB = float64(allocDelta) / 1024 / 1024 / p.elapsed

	if gcCount := p.memStats.NumGC; gcCount > 0 {
		// PauseNs is a circular buffer of last 256 GC pauses
		s.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > s.MaxPauseUs {
				s.MaxPauseUs = pause
			}
		}
	}

	p.logger.Info("frame stats",
		slog.Float64("fps", s.FPS),
		slog.Int("switches", s.Switches),
		slog.Float64("heap_mb", s.HeapMB),
		slog.Float64("alloc_rate_mb", s.AllocRateMB),
		slog.Uint64("gc", uint64(s.GC)),
		slog.Uint64("gc_last_us", s.LastPauseUs),
		slog.Uint64("gc_max_us", s.MaxPauseUs),
		slog.Float64("sys_mb", s.SysMB),
	)

	p.last = s
	p.frameCount = 0
	p.elapsed = 0
	p.lastGCCount = s.GC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.lastSwitches = switches
	return true
}

// Stats returns the statistics of the last completed interval.
func (p *Profiler) Stats() Stats {
	return p.last
}
