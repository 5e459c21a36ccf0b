// Package source contains batch.Source implementations for record input:
//
// - Records: reads framed records lazily from a list of files
// - Slice: emits records already held in memory
//
// Glob resolves file patterns against a base directory into the ordered
// path list consumed by Records.
//
// Each source handles context cancellation and closes both of its channels
// when it is done. The items it emits are Record values.
//
//	paths, err := source.Glob("/data/train", []string{"*.tfrecord"})
//	if err != nil {
//	    return err
//	}
//	out, errs := (&source.Records{Paths: paths}).Read(ctx)
package source
