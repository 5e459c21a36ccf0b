package processor

import (
	"context"
	"time"

	"github.com/MasterOfBinary/ocrbatch/batch"
)

// StatsProcessor wraps another processor and records what it does to the
// items passing through: items it drops are counted as filtered, items it
// fails as errors and the rest as processed.
type StatsProcessor struct {
	// Processor is the wrapped processor that does the actual work.
	Processor batch.Processor

	// Stats is used to collect processing metrics.
	// If nil, no statistics are collected.
	Stats batch.StatsCollector

	// RecordAsBatch additionally records each call as one batch with
	// RecordBatchStart and RecordBatchComplete.
	RecordAsBatch bool
}

// Process implements the Processor interface.
func (p *StatsProcessor) Process(ctx context.Context, items []*batch.Item) ([]*batch.Item, error) {
	if p.Processor == nil {
		return items, nil
	}
	if p.Stats == nil {
		return p.Processor.Process(ctx, items)
	}

	startTime := time.Now()
	if p.RecordAsBatch {
		p.Stats.RecordBatchStart(len(items))
	}

	result, err := p.Processor.Process(ctx, items)

	for i := len(result); i < len(items); i++ {
		p.Stats.RecordItemFiltered()
	}
	for _, item := range result {
		if item.Error != nil {
			p.Stats.RecordItemError()
		} else {
			p.Stats.RecordItemProcessed()
		}
	}
	if err != nil {
		p.Stats.RecordProcessorError()
	}

	if p.RecordAsBatch {
		p.Stats.RecordBatchComplete(len(result), time.Since(startTime))
	}

	return result, err
}

// WrapWithStats wraps a processor with statistics collection.
//
//	stats := batch.NewBasicStatsCollector()
//	wrapped := processor.WrapWithStats(processor.NewKeepFilter(), stats, false)
func WrapWithStats(proc batch.Processor, stats batch.StatsCollector, recordAsBatch bool) *StatsProcessor {
	return &StatsProcessor{
		Processor:     proc,
		Stats:         stats,
		RecordAsBatch: recordAsBatch,
	}
}
