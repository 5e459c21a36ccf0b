// Package ocrbatch is the input pipeline for training and evaluating a
// sequence-recognition (OCR) model. It reads framed records holding
// serialized examples, decodes and normalizes their images, filters them by
// size, groups them into width buckets and delivers padded batches with
// sparse label tensors.
//
// The work is split across packages, leaves first:
//
//   - tfrecord: length-delimited, CRC-protected record framing
//   - example: the protocol-buffer Example payload of each record
//   - sparse: sparse label tensors and their serialized form
//   - preprocess: grayscale decode, normalization and height padding
//   - record: the record schema, the class vocabulary and batch assembly
//   - batch: the generic engine; a Source feeds ordered parallel prepare
//     processors, keyed buckets and a batch processor chain
//   - source and processor: the record Source and the processors that
//     parse, filter, assemble and deliver batches
//   - pipeline: NewBucketed and NewThreaded, returning a pull-based Stream
//
// A training loop usually only needs the pipeline package:
//
//	s, err := pipeline.NewBucketed(ctx, pipeline.Config{
//	    BaseDir:      "/data/train",
//	    FilePatterns: []string{"*.tfrecord"},
//	    BatchSize:    32,
//	    NumEpoch:     10,
//	})
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	for {
//	    b, err := s.Next(ctx)
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    train(b)
//	}
package ocrbatch
