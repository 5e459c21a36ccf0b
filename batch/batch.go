package batch

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// closedDone is a pre-closed channel returned by Done when Go has not been
// called yet. This prevents callers from blocking on a nil channel.
var closedDone = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// BufferConfig configures the internal buffer sizes used by Batch.
// If not specified, default values are used.
type BufferConfig struct {
	// ItemBufferSize is the buffer size for the item channels between stages.
	// Default: DefaultItemBufferSize
	ItemBufferSize int

	// ErrorBufferSize is the buffer size for the error channel.
	// Default: DefaultErrorBufferSize
	ErrorBufferSize int
}

// BucketFunc maps a prepared item to the key of the bucket it joins.
type BucketFunc func(item *Item) int

// Batch reads items from a Source, prepares them concurrently, buckets them
// and processes each full bucket through the batch Processors. Any errors
// are wrapped in either a SourceError or a ProcessorError, so the caller
// can determine where the errors came from.
//
// To create a new Batch, call New. Creating one using &Batch{} will also work.
//
//	// The following are equivalent:
//	defaultBatch1 := &batch.Batch{}
//	defaultBatch2 := batch.New(nil)
//	defaultBatch3 := batch.New(batch.NewConstantConfig(&batch.ConfigValues{}))
//
// If Config is nil, a default configuration is used, where every item is
// processed as its own batch.
//
// Batch runs asynchronously after Go is called. When processing is complete,
// both the error channel returned from Go and the channel returned from Done
// are closed.
//
//	errs := b.Go(ctx, s, p)
//	for err := range errs {
//	  log.Print(err.Error())
//	}
//	// Now batch processing is done
type Batch struct {
	config       Config
	bufferConfig BufferConfig
	logger       Logger
	stats        StatsCollector
	concurrency  int
	bucketFunc   BucketFunc
	prepare      []Processor

	src        Source
	processors []Processor
	raw        chan *Item
	items      chan *Item
	done       chan struct{}

	mu      sync.Mutex
	running bool
	errs    chan error
}

// New creates a new Batch using the provided config. If config is nil,
// a default configuration is used.
func New(config Config) *Batch {
	return &Batch{
		config: config,
	}
}

// WithBufferConfig sets custom buffer sizes for the Batch.
// Panics if called after Go() has started.
func (b *Batch) WithBufferConfig(config BufferConfig) *Batch {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		panic("batch: WithBufferConfig cannot be called after Go() has started")
	}

	b.bufferConfig = config
	return b
}

// WithLogger sets a custom logger for the Batch.
// If not set, no logging occurs (uses NoOpLogger internally).
//
//	b := batch.New(config).WithLogger(batch.NewSimpleLogger(batch.LogLevelInfo))
//
// Panics if called after Go() has started.
func (b *Batch) WithLogger(logger Logger) *Batch {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		panic("batch: WithLogger cannot be called after Go() has started")
	}

	b.logger = logger
	return b
}

// WithStats sets a custom stats collector for the Batch.
// If not set, no statistics are collected (uses NoOpStatsCollector internally).
//
// Panics if called after Go() has started.
func (b *Batch) WithStats(stats StatsCollector) *Batch {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		panic("batch: WithStats cannot be called after Go() has started")
	}

	b.stats = stats
	return b
}

// WithConcurrency sets the number of goroutines that run the prepare
// processors. Values below 1 mean DefaultConcurrency. Whatever the
// concurrency, prepared items leave the stage in the order they were read.
//
// Panics if called after Go() has started.
func (b *Batch) WithConcurrency(n int) *Batch {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		panic("batch: WithConcurrency cannot be called after Go() has started")
	}

	b.concurrency = n
	return b
}

// WithBucketFunc sets the function that assigns prepared items to buckets.
// If not set, all items share one bucket.
//
// Panics if called after Go() has started.
func (b *Batch) WithBucketFunc(f BucketFunc) *Batch {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		panic("batch: WithBucketFunc cannot be called after Go() has started")
	}

	b.bucketFunc = f
	return b
}

// WithPrepare sets the processors applied to each item individually before
// bucketing. Nil processors are ignored.
//
// Panics if called after Go() has started.
func (b *Batch) WithPrepare(procs ...Processor) *Batch {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		panic("batch: WithPrepare cannot be called after Go() has started")
	}

	b.prepare = nonNil(procs)
	return b
}

// Item represents a single data item flowing through the batch pipeline.
type Item struct {
	// ID is a unique identifier for the item, assigned in read order
	// starting from zero. It must not be modified by processors.
	ID uint64

	// Data holds the payload being processed. It is safe for processors to modify.
	Data interface{}

	// Error is set by processors to indicate a failure specific to this item.
	Error error
}

// Source reads items that are to be batch processed.
type Source interface {
	// Read reads items from a data source and returns two channels:
	// one for items, and one for errors.
	//
	// Read must create both channels (never return nil channels), and must
	// close them when reading is finished or when context is canceled.
	Read(ctx context.Context) (<-chan interface{}, <-chan error)
}

// Processor processes items. Prepare processors receive one item per call;
// batch processors receive a whole bucket.
type Processor interface {
	// Process applies operations to a slice of items.
	// It may modify item data or set item.Error on individual items.
	//
	// Process should respect context cancellation.
	// It returns the modified slice of items and a processor-wide error, if any.
	Process(ctx context.Context, items []*Item) ([]*Item, error)
}

// Go starts batch processing asynchronously and returns an error channel.
//
// Go must only be called once at a time. Calling Go again while a batch is
// already running will cause a panic. Once Done is closed, Go may be called
// again, for example to make another pass over a Source.
//
// Context cancellation:
//   - Go does not immediately stop processing when the context is canceled.
//   - Any items already read from the Source are still bucketed and passed
//     to the batch processors, which should return early on a done context.
func (b *Batch) Go(ctx context.Context, s Source, procs ...Processor) <-chan error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		panic("Concurrent calls to Batch.Go are not allowed")
	}

	if b.config == nil {
		b.config = NewConstantConfig(nil)
	}
	if b.logger == nil {
		b.logger = &NoOpLogger{}
	}
	if b.stats == nil {
		b.stats = &NoOpStatsCollector{}
	}

	b.running = true

	if s == nil {
		b.errs = make(chan error, 1)
		b.done = make(chan struct{})
		b.errs <- errors.New("source cannot be nil")
		close(b.errs)
		close(b.done)
		b.running = false
		return b.errs
	}

	b.src = s
	b.processors = nonNil(procs)

	itemBuf := b.bufferConfig.ItemBufferSize
	if itemBuf <= 0 {
		itemBuf = DefaultItemBufferSize
	}
	errBuf := b.bufferConfig.ErrorBufferSize
	if errBuf <= 0 {
		errBuf = DefaultErrorBufferSize
	}

	b.raw = make(chan *Item, itemBuf)
	b.items = make(chan *Item, itemBuf)
	b.errs = make(chan error, errBuf)
	b.done = make(chan struct{})

	b.logger.Info("Starting batch processing with %d prepare and %d batch processor(s)",
		len(b.prepare), len(b.processors))

	go b.doReader(ctx)
	go b.doPrepare(ctx)
	go b.doProcessors(ctx)

	return b.errs
}

// Done returns a channel that is closed when batch processing is complete.
func (b *Batch) Done() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.done == nil {
		return closedDone
	}
	return b.done
}

func nonNil(procs []Processor) []Processor {
	out := make([]Processor, 0, len(procs))
	for _, p := range procs {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// doReader reads items from the Source, numbers them in read order and
// forwards them to the prepare stage. Source errors are wrapped in a
// SourceError and forwarded to the error channel.
func (b *Batch) doReader(ctx context.Context) {
	defer close(b.raw)

	b.logger.Debug("Starting source reader")
	out, errs := b.src.Read(ctx)

	if out == nil || errs == nil {
		b.logger.Error("Invalid source implementation: returned nil channel(s)")
		b.errs <- errors.New("invalid source implementation: returned nil channel(s)")
		return
	}

	var outClosed, errsClosed bool
	var id uint64
	for !outClosed || !errsClosed {
		select {
		case data, ok := <-out:
			if !ok {
				outClosed = true
				continue
			}
			b.raw <- &Item{
				ID:   id,
				Data: data,
			}
			b.stats.RecordItemRead()
			id++

		case err, ok := <-errs:
			if !ok {
				errsClosed = true
				continue
			}
			b.logger.Error("Source error: %v", err)
			b.stats.RecordSourceError()
			b.errs <- &SourceError{Err: err}
		}
	}

	b.logger.Info("Source reading complete. Total items read: %d", id)
}

// doPrepare runs the prepare processors on each item using a bounded pool
// of workers. A result slot is queued for every item in read order, and
// results are forwarded by draining the slots in that same order, so the
// output order never depends on which worker finishes first.
func (b *Batch) doPrepare(ctx context.Context) {
	defer close(b.items)

	if len(b.prepare) == 0 {
		for item := range b.raw {
			b.items <- item
		}
		return
	}

	workers := b.concurrency
	if workers < 1 {
		workers = DefaultConcurrency
	}

	type job struct {
		item   *Item
		result chan []*Item
	}
	jobs := make(chan job, workers)
	slots := make(chan chan []*Item, workers)

	go func() {
		defer close(jobs)
		defer close(slots)
		for item := range b.raw {
			result := make(chan []*Item, 1)
			jobs <- job{item: item, result: result}
			slots <- result
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				j.result <- b.prepareItem(ctx, j.item)
			}
		}()
	}

	for slot := range slots {
		prepared := <-slot
		if len(prepared) == 0 {
			b.stats.RecordItemFiltered()
			continue
		}
		for _, item := range prepared {
			if item.Error != nil {
				b.logger.Debug("Item %d error: %v", item.ID, item.Error)
				b.stats.RecordItemError()
				b.errs <- &ProcessorError{Err: item.Error}
				continue
			}
			b.items <- item
		}
	}

	wg.Wait()
}

// prepareItem runs the prepare processors on a single item. It returns the
// surviving items, which is empty when a processor filtered the item out.
func (b *Batch) prepareItem(ctx context.Context, item *Item) []*Item {
	items := []*Item{item}
	for _, proc := range b.prepare {
		var err error
		items, err = proc.Process(ctx, items)
		if err != nil {
			item.Error = err
			return []*Item{item}
		}
		if len(items) == 0 {
			return nil
		}
		for _, it := range items {
			if it.Error != nil {
				return items
			}
		}
	}
	return items
}

// doProcessors assigns prepared items to buckets and flushes each bucket as
// soon as it is full. Once the prepare stage is exhausted it flushes the
// remaining buckets in ascending key order, or drops them if the config
// says so, and then signals completion by closing the error and done
// channels.
func (b *Batch) doProcessors(ctx context.Context) {
	var batchCount uint64
	buckets := make(map[int][]*Item)

	b.logger.Debug("Starting batch processor")

	for item := range b.items {
		config := fixConfig(b.config.Get())

		key := 0
		if b.bucketFunc != nil {
			key = b.bucketFunc(item)
		}

		buckets[key] = append(buckets[key], item)
		if uint64(len(buckets[key])) >= config.BatchSize {
			batchCount++
			b.processBatch(ctx, buckets[key], batchCount, key)
			delete(buckets, key)
		}
	}

	config := fixConfig(b.config.Get())
	keys := make([]int, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Ints(keys)

	for _, key := range keys {
		if config.DropRemainder {
			b.logger.Debug("Dropping %d item(s) left in bucket %d", len(buckets[key]), key)
			b.stats.RecordItemsDropped(len(buckets[key]))
			continue
		}
		batchCount++
		b.processBatch(ctx, buckets[key], batchCount, key)
	}

	b.logger.Info("Batch processing complete. Total batches: %d", batchCount)

	b.mu.Lock()
	close(b.errs)
	close(b.done)
	b.running = false
	b.mu.Unlock()
}

// processBatch runs one bucket through the batch processors in sequence,
// forwarding processor-wide and per-item errors to the error channel.
func (b *Batch) processBatch(ctx context.Context, items []*Item, batchNum uint64, key int) {
	batchSize := len(items)
	b.logger.Debug("Processing batch %d from bucket %d with %d items", batchNum, key, batchSize)
	b.stats.RecordBatchStart(batchSize)
	startTime := time.Now()

	for i, proc := range b.processors {
		var err error
		items, err = proc.Process(ctx, items)
		if err != nil {
			b.logger.Error("Batch %d: processor %d error: %v", batchNum, i+1, err)
			b.stats.RecordProcessorError()
			b.errs <- &ProcessorError{Err: err}
		}
	}

	var successCount, errorCount int
	for _, item := range items {
		if item.Error != nil {
			errorCount++
			b.logger.Debug("Batch %d: item %d error: %v", batchNum, item.ID, item.Error)
			b.stats.RecordItemError()
			b.errs <- &ProcessorError{Err: item.Error}
		} else {
			successCount++
			b.stats.RecordItemProcessed()
		}
	}

	duration := time.Since(startTime)
	b.stats.RecordBatchComplete(batchSize, duration)
	b.logger.Debug("Batch %d complete: %d successful, %d errors, duration: %v",
		batchNum, successCount, errorCount, duration)
}
