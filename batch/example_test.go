package batch_test

import (
	"context"
	"fmt"

	"github.com/MasterOfBinary/ocrbatch/batch"
)

// printProcessor prints the data of each batch it receives.
type printProcessor struct{}

func (printProcessor) Process(ctx context.Context, items []*batch.Item) ([]*batch.Item, error) {
	data := make([]interface{}, len(items))
	for i, item := range items {
		data[i] = item.Data
	}
	fmt.Println(data)
	return items, nil
}

func Example() {
	words := []interface{}{"a", "bb", "cc", "ddd", "e", "ff", "ggg", "h"}

	// Group words by length, three to a batch.
	b := batch.New(batch.NewConstantConfig(&batch.ConfigValues{BatchSize: 3})).
		WithBucketFunc(func(item *batch.Item) int {
			return len(item.Data.(string))
		})

	errs := b.Go(context.Background(), &testSource{Items: words}, printProcessor{})
	for err := range errs {
		fmt.Println("error:", err)
	}

	// Output:
	// [bb cc ff]
	// [a e h]
	// [ddd ggg]
}
