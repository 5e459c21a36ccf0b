// Package batch contains the core batching engine. The main type is Batch,
// which can be created using New. It reads items from a Source, runs each
// item through the prepare Processors on a bounded pool of goroutines,
// groups the prepared items into buckets, and runs every full bucket
// through the batch Processors.
//
// The stages of one run look like this:
//
//	Source -> prepare (N workers, read order kept) -> bucket -> batch processors
//
// Prepare processors see one item at a time. They may replace the item's
// Data, drop the item by returning an empty slice, or fail it by setting
// item.Error. Failed items never reach a bucket; their errors are sent on
// the error channel returned by Go.
//
// Bucketing is controlled by an optional BucketFunc that maps an item to a
// bucket key. Items are appended to their bucket in the order they leave
// the prepare stage, and a bucket is flushed as one batch as soon as it
// holds BatchSize items. When the Source is exhausted, the remaining
// non-empty buckets are flushed in ascending key order unless
// DropRemainder is set. Without a BucketFunc every item goes to bucket 0,
// which gives plain sequential batching.
//
// Batch processors run sequentially, one batch at a time, so batches leave
// the engine in flush order:
//
//	b.Go(ctx, source, processor1, processor2, processor3)
//
// The configuration is reloaded for every item. This allows dynamic Config
// implementations to change the batch size during processing.
package batch
