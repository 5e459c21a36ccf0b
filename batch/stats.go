package batch

import (
	"sync"
	"sync/atomic"
	"time"
)

// StatsCollector defines the interface for collecting metrics during batch processing.
// The StatsCollector is optional - if not provided, no statistics are collected.
type StatsCollector interface {
	// RecordItemRead is called for each item read from the source.
	RecordItemRead()

	// RecordItemFiltered is called when a prepare processor drops an item.
	RecordItemFiltered()

	// RecordItemsDropped is called with the size of each leftover bucket
	// discarded because of DropRemainder.
	RecordItemsDropped(n int)

	// RecordBatchStart is called when a batch starts processing.
	RecordBatchStart(batchSize int)

	// RecordBatchComplete is called when a batch completes processing.
	// duration is the time taken to process the batch.
	RecordBatchComplete(batchSize int, duration time.Duration)

	// RecordItemProcessed is called for each item that leaves the batch
	// processors without an error.
	RecordItemProcessed()

	// RecordItemError is called when an item encounters an error during processing.
	RecordItemError()

	// RecordSourceError is called when the source encounters an error.
	RecordSourceError()

	// RecordProcessorError is called when a processor encounters an error.
	RecordProcessorError()

	// GetStats returns a snapshot of the current statistics.
	GetStats() Stats
}

// Stats holds aggregated statistics about batch processing.
type Stats struct {
	// ItemsRead is the total number of items read from sources.
	ItemsRead uint64

	// ItemsFiltered is the number of items dropped by prepare processors.
	ItemsFiltered uint64

	// ItemsDropped is the number of items discarded with leftover buckets.
	ItemsDropped uint64

	// ItemsBatched is the total number of items that entered a batch.
	ItemsBatched uint64

	// BatchesStarted is the total number of batches that have started processing.
	BatchesStarted uint64

	// BatchesCompleted is the total number of batches that have completed processing.
	BatchesCompleted uint64

	// ItemsProcessed is the total number of items returned by the batch
	// processors without errors. A processor that merges its input into one
	// item, such as the one assembling a record batch, leaves one item per
	// batch, so this then counts batches rather than examples; use
	// ItemsBatched for the number of examples.
	ItemsProcessed uint64

	// ItemErrors is the total number of items that encountered errors.
	ItemErrors uint64

	// SourceErrors is the total number of errors from sources.
	SourceErrors uint64

	// ProcessorErrors is the total number of errors from processors.
	ProcessorErrors uint64

	// TotalProcessingTime is the cumulative time spent processing all batches.
	TotalProcessingTime time.Duration

	// MinBatchTime is the minimum time taken to process a batch.
	MinBatchTime time.Duration

	// MaxBatchTime is the maximum time taken to process a batch.
	MaxBatchTime time.Duration

	// MinBatchSize is the smallest batch size processed.
	MinBatchSize int

	// MaxBatchSize is the largest batch size processed.
	MaxBatchSize int

	// StartTime is when statistics collection began.
	StartTime time.Time

	// LastUpdateTime is when statistics were last updated.
	LastUpdateTime time.Time
}

// NoOpStatsCollector is a stats collector that discards all metrics.
// This is the default stats collector when none is specified.
type NoOpStatsCollector struct{}

// RecordItemRead implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordItemRead() {}

// RecordItemFiltered implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordItemFiltered() {}

// RecordItemsDropped implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordItemsDropped(int) {}

// RecordBatchStart implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordBatchStart(batchSize int) {}

// RecordBatchComplete implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordBatchComplete(batchSize int, duration time.Duration) {}

// RecordItemProcessed implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordItemProcessed() {}

// RecordItemError implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordItemError() {}

// RecordSourceError implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordSourceError() {}

// RecordProcessorError implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordProcessorError() {}

// GetStats implements the StatsCollector interface.
func (n *NoOpStatsCollector) GetStats() Stats {
	return Stats{}
}

// BasicStatsCollector is a simple in-memory implementation of StatsCollector.
// All operations are thread-safe, so one collector can be shared by the
// Batch runs of every epoch of a pipeline.
type BasicStatsCollector struct {
	mu    sync.RWMutex
	stats Stats

	// Atomic counters for lock-free updates
	itemsRead        uint64
	itemsFiltered    uint64
	itemsDropped     uint64
	itemsBatched     uint64
	batchesStarted   uint64
	batchesCompleted uint64
	itemsProcessed   uint64
	itemErrors       uint64
	sourceErrors     uint64
	processorErrors  uint64
}

// NewBasicStatsCollector creates a new BasicStatsCollector.
func NewBasicStatsCollector() *BasicStatsCollector {
	return &BasicStatsCollector{
		stats: Stats{
			StartTime:      time.Now(),
			LastUpdateTime: time.Now(),
			MinBatchTime:   time.Duration(1<<63 - 1), // Max duration as initial value
		},
	}
}

// RecordItemRead implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordItemRead() {
	atomic.AddUint64(&b.itemsRead, 1)
}

// RecordItemFiltered implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordItemFiltered() {
	atomic.AddUint64(&b.itemsFiltered, 1)
}

// RecordItemsDropped implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordItemsDropped(n int) {
	atomic.AddUint64(&b.itemsDropped, uint64(n))
}

// RecordBatchStart implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordBatchStart(batchSize int) {
	atomic.AddUint64(&b.batchesStarted, 1)
	atomic.AddUint64(&b.itemsBatched, uint64(batchSize))

	b.mu.Lock()
	defer b.mu.Unlock()

	b.stats.LastUpdateTime = time.Now()

	if batchSize < b.stats.MinBatchSize || b.stats.MinBatchSize == 0 {
		b.stats.MinBatchSize = batchSize
	}
	if batchSize > b.stats.MaxBatchSize {
		b.stats.MaxBatchSize = batchSize
	}
}

// RecordBatchComplete implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordBatchComplete(batchSize int, duration time.Duration) {
	atomic.AddUint64(&b.batchesCompleted, 1)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.stats.LastUpdateTime = time.Now()
	b.stats.TotalProcessingTime += duration

	if duration < b.stats.MinBatchTime {
		b.stats.MinBatchTime = duration
	}
	if duration > b.stats.MaxBatchTime {
		b.stats.MaxBatchTime = duration
	}
}

// RecordItemProcessed implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordItemProcessed() {
	atomic.AddUint64(&b.itemsProcessed, 1)
}

// RecordItemError implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordItemError() {
	atomic.AddUint64(&b.itemErrors, 1)
}

// RecordSourceError implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordSourceError() {
	atomic.AddUint64(&b.sourceErrors, 1)
}

// RecordProcessorError implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordProcessorError() {
	atomic.AddUint64(&b.processorErrors, 1)
}

// GetStats implements the StatsCollector interface.
// It returns a snapshot of the current statistics.
func (b *BasicStatsCollector) GetStats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stats := b.stats
	stats.ItemsRead = atomic.LoadUint64(&b.itemsRead)
	stats.ItemsFiltered = atomic.LoadUint64(&b.itemsFiltered)
	stats.ItemsDropped = atomic.LoadUint64(&b.itemsDropped)
	stats.ItemsBatched = atomic.LoadUint64(&b.itemsBatched)
	stats.BatchesStarted = atomic.LoadUint64(&b.batchesStarted)
	stats.BatchesCompleted = atomic.LoadUint64(&b.batchesCompleted)
	stats.ItemsProcessed = atomic.LoadUint64(&b.itemsProcessed)
	stats.ItemErrors = atomic.LoadUint64(&b.itemErrors)
	stats.SourceErrors = atomic.LoadUint64(&b.sourceErrors)
	stats.ProcessorErrors = atomic.LoadUint64(&b.processorErrors)

	if stats.BatchesCompleted == 0 {
		stats.MinBatchTime = 0
	}

	return stats
}

// AverageBatchTime returns the average time taken to process a batch.
// Returns 0 if no batches have been completed.
func (s *Stats) AverageBatchTime() time.Duration {
	if s.BatchesCompleted == 0 {
		return 0
	}
	return s.TotalProcessingTime / time.Duration(s.BatchesCompleted)
}

// AverageBatchSize returns the average number of items per batch.
// Returns 0 if no batches have been started.
func (s *Stats) AverageBatchSize() float64 {
	if s.BatchesStarted == 0 {
		return 0
	}
	return float64(s.ItemsBatched) / float64(s.BatchesStarted)
}

// FilterRate returns the percentage of read items dropped by prepare
// processors. Returns 0 if nothing has been read.
func (s *Stats) FilterRate() float64 {
	if s.ItemsRead == 0 {
		return 0
	}
	return float64(s.ItemsFiltered) / float64(s.ItemsRead) * 100
}

// Duration returns the total duration since statistics collection started.
func (s *Stats) Duration() time.Duration {
	return s.LastUpdateTime.Sub(s.StartTime)
}
