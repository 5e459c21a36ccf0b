package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/MasterOfBinary/ocrbatch/batch"
	"github.com/MasterOfBinary/ocrbatch/record"
)

// LoggingProcessor wraps another processor and logs each call: the number
// of items in and out, how many failed, and the shape of any assembled
// batches.
type LoggingProcessor struct {
	// Processor is the wrapped processor that does the actual work.
	Processor batch.Processor

	// Logger is used to log processing events.
	// If nil, no logging occurs.
	Logger batch.Logger

	// Name is used in log messages. If empty, the wrapped type is used.
	Name string
}

// Process implements the Processor interface by delegating to the wrapped processor
// and logging the operation.
func (p *LoggingProcessor) Process(ctx context.Context, items []*batch.Item) ([]*batch.Item, error) {
	if p.Processor == nil {
		return items, nil
	}
	if p.Logger == nil {
		return p.Processor.Process(ctx, items)
	}

	name := p.Name
	if name == "" {
		name = fmt.Sprintf("%T", p.Processor)
	}

	startTime := time.Now()
	result, err := p.Processor.Process(ctx, items)
	duration := time.Since(startTime)

	if err != nil {
		p.Logger.Error("Processor '%s' failed after %v: %v", name, duration, err)
		return result, err
	}

	var failed int
	for _, item := range result {
		if item.Error != nil {
			failed++
			continue
		}
		if b, ok := item.Data.(*record.Batch); ok {
			p.Logger.Debug("Processor '%s' assembled batch of %d at %dx%d", name, b.Size, b.Height, b.Width)
		}
	}
	p.Logger.Debug("Processor '%s' completed in %v: %d in, %d out, %d errors",
		name, duration, len(items), len(result), failed)

	return result, err
}

// WrapWithLogging wraps a processor with logging.
//
//	logger := batch.NewSimpleLogger(batch.LogLevelDebug)
//	wrapped := processor.WrapWithLogging(&processor.Assemble{}, logger, "assemble")
func WrapWithLogging(proc batch.Processor, logger batch.Logger, name string) *LoggingProcessor {
	return &LoggingProcessor{
		Processor: proc,
		Logger:    logger,
		Name:      name,
	}
}
