// Package processor contains the batch.Processor implementations that turn
// raw records into training batches:
//
// - Parse: decodes each record into a *record.Example
// - Filter: drops items failing a predicate; NewKeepFilter drops examples
//   whose keep-decision is false
// - Assemble: merges a bucket of examples into one *record.Batch item
// - Channel: delivers assembled batches to a channel
// - LoggingProcessor and StatsProcessor: wrap any processor with logging
//   or statistics
//
// Parse and Filter are meant to run as prepare processors, one item at a
// time; Assemble and Channel run on whole buckets.
//
//	b := batch.New(config).
//	    WithPrepare(&processor.Parse{Parser: parser}, processor.NewKeepFilter()).
//	    WithBucketFunc(bucketByWidth)
//	errs := b.Go(ctx, src, &processor.Assemble{}, &processor.Channel{Output: out})
package processor
