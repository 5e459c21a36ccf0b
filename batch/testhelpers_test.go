package batch_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MasterOfBinary/ocrbatch/batch"
)

// testSource emits predefined items with optional delay and final error.
type testSource struct {
	Items   []interface{}
	Delay   time.Duration
	WithErr error
}

func (s *testSource) Read(ctx context.Context) (<-chan interface{}, <-chan error) {
	out := make(chan interface{})
	errs := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errs)
		for _, item := range s.Items {
			if s.Delay > 0 {
				time.Sleep(s.Delay)
			}
			select {
			case <-ctx.Done():
				return
			case out <- item:
			}
		}
		if s.WithErr != nil {
			errs <- s.WithErr
		}
	}()
	return out, errs
}

// nilSource breaks the Source contract by returning nil channels.
type nilSource struct{}

func (nilSource) Read(context.Context) (<-chan interface{}, <-chan error) {
	return nil, nil
}

// collectProcessor records the data of every batch it sees.
type collectProcessor struct {
	mu      sync.Mutex
	batches [][]interface{}
	Err     error
}

func (p *collectProcessor) Process(ctx context.Context, items []*batch.Item) ([]*batch.Item, error) {
	data := make([]interface{}, len(items))
	for i, item := range items {
		data[i] = item.Data
	}
	p.mu.Lock()
	p.batches = append(p.batches, data)
	p.mu.Unlock()
	return items, p.Err
}

func (p *collectProcessor) Batches() [][]interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.batches
}

// errorPerItemProcessor marks every item whose data is a multiple of
// FailEvery as failed.
type errorPerItemProcessor struct {
	FailEvery int
}

func (p *errorPerItemProcessor) Process(ctx context.Context, items []*batch.Item) ([]*batch.Item, error) {
	for _, item := range items {
		if n, ok := item.Data.(int); ok && p.FailEvery > 0 && n%p.FailEvery == 0 {
			item.Error = fmt.Errorf("fail item %d", n)
		}
	}
	return items, nil
}

// processorFunc adapts a function to the Processor interface.
type processorFunc func(ctx context.Context, items []*batch.Item) ([]*batch.Item, error)

func (f processorFunc) Process(ctx context.Context, items []*batch.Item) ([]*batch.Item, error) {
	return f(ctx, items)
}

func ints(n int) []interface{} {
	out := make([]interface{}, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func drain(errs <-chan error) []error {
	var out []error
	for err := range errs {
		out = append(out, err)
	}
	return out
}
