package processor

import (
	"context"

	"github.com/MasterOfBinary/ocrbatch/batch"
	"github.com/MasterOfBinary/ocrbatch/record"
)

// Channel is a Processor that sends every assembled *record.Batch to an
// output channel. Items with errors, and items holding anything else, are
// ignored.
//
// Ownership of the output channel remains with the caller. Because the
// processor is unaware of when the overall pipeline has finished, it does not
// close the channel.
type Channel struct {
	// Output receives the batches. If nil, the processor does nothing.
	Output chan<- *record.Batch
}

// Process implements the Processor interface by forwarding batches to the
// Output channel until the context is canceled.
func (p *Channel) Process(ctx context.Context, items []*batch.Item) ([]*batch.Item, error) {
	if len(items) == 0 || p.Output == nil {
		return items, nil
	}

	for _, item := range items {
		if item.Error != nil {
			continue
		}
		b, ok := item.Data.(*record.Batch)
		if !ok {
			continue
		}

		select {
		case <-ctx.Done():
			return items, ctx.Err()
		case p.Output <- b:
		}
	}

	return items, nil
}
