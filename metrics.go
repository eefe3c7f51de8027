package stile

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordStage is called after each staging run.
	// written counts every temp file produced, rewritten the subset that
	// replaced an evicted on-disk file.
	RecordStage(written, rewritten int, duration time.Duration, err error)

	// RecordTempFile is called after each temporary file write.
	RecordTempFile(bytes int64, err error)

	// RecordMask is called after each mask evaluation.
	RecordMask(objectType string, selected, total int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordStage(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordTempFile(int64, error)                {}
func (NoopMetricsCollector) RecordMask(string, int, int)                {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	StageCount      atomic.Int64
	StageErrors     atomic.Int64
	StageTotalNanos atomic.Int64
	FilesWritten    atomic.Int64
	FilesRewritten  atomic.Int64
	TempFileBytes   atomic.Int64
	TempFileErrors  atomic.Int64
	MaskCount       atomic.Int64
	MaskSelected    atomic.Int64
	MaskRows        atomic.Int64
}

// RecordStage implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStage(written, rewritten int, duration time.Duration, err error) {
	b.StageCount.Add(1)
	b.StageTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.StageErrors.Add(1)
		return
	}
	b.FilesWritten.Add(int64(written))
	b.FilesRewritten.Add(int64(rewritten))
}

// RecordTempFile implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTempFile(bytes int64, err error) {
	if err != nil {
		b.TempFileErrors.Add(1)
		return
	}
	b.TempFileBytes.Add(bytes)
}

// RecordMask implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMask(_ string, selected, total int) {
	b.MaskCount.Add(1)
	b.MaskSelected.Add(int64(selected))
	b.MaskRows.Add(int64(total))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		StageCount:     b.StageCount.Load(),
		StageErrors:    b.StageErrors.Load(),
		StageAvgNanos:  b.getAvgStageNanos(),
		FilesWritten:   b.FilesWritten.Load(),
		FilesRewritten: b.FilesRewritten.Load(),
		TempFileBytes:  b.TempFileBytes.Load(),
		TempFileErrors: b.TempFileErrors.Load(),
		MaskCount:      b.MaskCount.Load(),
		MaskSelected:   b.MaskSelected.Load(),
		MaskRows:       b.MaskRows.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgStageNanos() int64 {
	count := b.StageCount.Load()
	if count == 0 {
		return 0
	}
	return b.StageTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	StageCount     int64
	StageErrors    int64
	StageAvgNanos  int64
	FilesWritten   int64
	FilesRewritten int64
	TempFileBytes  int64
	TempFileErrors int64
	MaskCount      int64
	MaskSelected   int64
	MaskRows       int64
}
