// Package pipeline assembles the batch engine, the record source and the
// processors into the two input pipelines used for training and inference,
// and exposes their output as a pull-based Stream.
//
// The Stream Concept:
//
// A Stream hides the asynchronous stages behind a synchronous API. The
// caller asks for the next batch with Next and receives io.EOF once the
// pipeline is exhausted. Internally every stage is a goroutine connected to
// the next by a channel:
//
//	Records -> Parse (N workers) -> Keep -> bucket by width -> Assemble -> shuffle -> Stream
//
// Pipelines:
//
//   - NewBucketed: the training pipeline. Examples outside the width and
//     length thresholds are dropped, the rest are grouped by width into
//     buckets, and full buckets become batches padded to their own widest
//     image. Batches are shuffled and the files are read again for every
//     epoch.
//
//   - NewThreaded: the inference pipeline. Records are parsed in parallel
//     and grouped into batches in file order. Nothing is filtered,
//     bucketed, shuffled or repeated.
//
// The first error ends a Stream: it is returned by Next from then on.
package pipeline
