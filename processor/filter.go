package processor

import (
	"context"

	"github.com/MasterOfBinary/ocrbatch/batch"
	"github.com/MasterOfBinary/ocrbatch/record"
)

// FilterFunc is a function that decides whether an item should be included in the output.
// Return true to keep the item, false to filter it out.
type FilterFunc func(item *batch.Item) bool

// Filter is a processor that filters items based on a predicate function.
// Filtered items are excluded from further processing without an error.
type Filter struct {
	// Predicate returns true for items that should be kept.
	// If nil, no filtering occurs (all items pass through).
	Predicate FilterFunc
}

// NewKeepFilter returns a Filter that drops parsed examples whose
// keep-decision is false. Items holding anything other than a
// *record.Example pass through.
func NewKeepFilter() *Filter {
	return &Filter{
		Predicate: func(item *batch.Item) bool {
			ex, ok := item.Data.(*record.Example)
			return !ok || ex.Keep
		},
	}
}

// Process implements the Processor interface by filtering items according
// to the predicate. Items that already carry an error are always kept so
// their error still reaches the caller.
func (p *Filter) Process(_ context.Context, items []*batch.Item) ([]*batch.Item, error) {
	if len(items) == 0 || p.Predicate == nil {
		return items, nil
	}

	result := make([]*batch.Item, 0, len(items))
	for _, item := range items {
		if item.Error != nil {
			result = append(result, item)
			continue
		}

		if p.Predicate(item) {
			result = append(result, item)
		}
	}

	return result, nil
}
