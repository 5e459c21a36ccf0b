package pipeline

import (
	"sort"

	"github.com/MasterOfBinary/ocrbatch/batch"
	"github.com/MasterOfBinary/ocrbatch/record"
)

// BucketIndex returns the bucket of width for the ascending boundaries b:
// the i with b[i-1] <= width < b[i], where b[-1] and b[len(b)] stand for
// minus and plus infinity. There are len(b)+1 buckets.
func BucketIndex(boundaries []int, width int) int {
	return sort.Search(len(boundaries), func(i int) bool {
		return boundaries[i] > width
	})
}

// bucketByWidth returns a batch.BucketFunc that buckets examples by their
// width field.
func bucketByWidth(boundaries []int) batch.BucketFunc {
	return func(item *batch.Item) int {
		ex, ok := item.Data.(*record.Example)
		if !ok {
			return 0
		}
		return BucketIndex(boundaries, int(ex.Width))
	}
}
