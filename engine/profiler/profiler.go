package profiler

import (
	"runtime"
	"time"

	"go.uber.org/zap"
)

// StageStats is the cost of one import stage.
type StageStats struct {
	// Name is the stage name (e.g., "buffers", "meshes").
	Name string
	// Duration is the wall time spent in the stage.
	Duration time.Duration
	// AllocBytes is the heap allocated while the stage ran (TotalAlloc delta).
	AllocBytes uint64
	// GCCount is the number of garbage collections that completed during the stage.
	GCCount uint32
}

// Profiler tracks per-stage timing and allocation statistics for one import.
// A nil *Profiler is valid and records nothing, so callers do not need to check whether profiling is on.
type Profiler struct {
	start    time.Time
	stages   []StageStats
	memStats runtime.MemStats
}

// NewProfiler creates a new Profiler. The total duration is measured from this call.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		start:    time.Now(),
		memStats: runtime.MemStats{},
	}
}

// Stage starts measuring a stage and returns the function that ends it.
// Stages are recorded in the order they end.
//
// Parameters:
//   - name: the stage name
//
// Returns:
//   - func(): call when the stage is done
func (p *Profiler) Stage(name string) func() {
	if p == nil {
		return func() {}
	}

	runtime.ReadMemStats(&p.memStats)
	startAlloc, startGC := p.memStats.TotalAlloc, p.memStats.NumGC
	startTime := time.Now()

	return func() {
		elapsed := time.Since(startTime)
		runtime.ReadMemStats(&p.memStats)
		p.stages = append(p.stages, StageStats{
			Name:       name,
			Duration:   elapsed,
			AllocBytes: p.memStats.TotalAlloc - startAlloc,
			GCCount:    p.memStats.NumGC - startGC,
		})
	}
}

// Stages returns the recorded stages.
//
// Returns:
//   - []StageStats: one entry per finished stage, or nil for a nil profiler
func (p *Profiler) Stages() []StageStats {
	if p == nil {
		return nil
	}
	return p.stages
}

// Total returns the time elapsed since the profiler was created.
func (p *Profiler) Total() time.Duration {
	if p == nil {
		return 0
	}
	return time.Since(p.start)
}

// Fields renders the recorded stages as log fields: one "<stage>" duration and one "<stage>_alloc_mb"
// value per stage, plus the total.
//
// Returns:
//   - []zap.Field: the fields, or nil for a nil profiler
func (p *Profiler) Fields() []zap.Field {
	if p == nil {
		return nil
	}
	fields := make([]zap.Field, 0, 2*len(p.stages)+1)
	for _, s := range p.stages {
		fields = append(fields,
			zap.Duration(s.Name, s.Duration),
			zap.Float64(s.Name+"_alloc_mb", float64(s.AllocBytes)/1024/1024),
		)
	}
	return append(fields, zap.Duration("total", p.Total()))
}
