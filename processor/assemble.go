package processor

import (
	"context"

	"github.com/pkg/errors"

	"github.com/MasterOfBinary/ocrbatch/batch"
	"github.com/MasterOfBinary/ocrbatch/record"
)

// Assemble is a Processor that merges a bucket of *record.Example items
// into a single item holding a *record.Batch. The new item takes the ID of
// the first example. Items with errors are left out of the batch and
// returned alongside it.
type Assemble struct{}

// Process implements the Processor interface. If the examples cannot be
// assembled, the items are returned unchanged along with the error.
func (p *Assemble) Process(ctx context.Context, items []*batch.Item) ([]*batch.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	select {
	case <-ctx.Done():
		return items, ctx.Err()
	default:
	}

	var (
		examples []*record.Example
		failed   []*batch.Item
		first    *batch.Item
	)
	for _, item := range items {
		if item.Error != nil {
			failed = append(failed, item)
			continue
		}
		ex, ok := item.Data.(*record.Example)
		if !ok {
			return items, errors.Errorf("assemble: item %d holds %T, not an example", item.ID, item.Data)
		}
		if first == nil {
			first = item
		}
		examples = append(examples, ex)
	}

	if len(examples) == 0 {
		return items, nil
	}

	b, err := record.Assemble(examples)
	if err != nil {
		return items, errors.Wrapf(err, "assemble batch at item %d", first.ID)
	}

	return append([]*batch.Item{{ID: first.ID, Data: b}}, failed...), nil
}
