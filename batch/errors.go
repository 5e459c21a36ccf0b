package batch

import "fmt"

// ProcessorError is returned when a processor fails, or when a prepare
// processor marks an item as failed.
type ProcessorError struct {
	Err error
}

func (e ProcessorError) Error() string {
	return fmt.Sprintf("processor error: %v", e.Err)
}

func (e ProcessorError) Unwrap() error {
	return e.Err
}

// SourceError is returned when a source fails.
type SourceError struct {
	Err error
}

func (e SourceError) Error() string {
	return fmt.Sprintf("source error: %v", e.Err)
}

func (e SourceError) Unwrap() error {
	return e.Err
}

// IgnoreErrors starts a goroutine that reads errors from errs but ignores
// them. The error channel returned by Go is buffered but finite, so it must
// always be drained:
//
//	// NOTE: bad - this can block the pipeline once the buffer fills!
//	_ = b.Go(ctx, s, p)
//
// Instead, IgnoreErrors can be used to safely throw away all errors:
//
//	IgnoreErrors(b.Go(ctx, s, p))
func IgnoreErrors(errs <-chan error) {
	// nil channels always block, so check for nil first to avoid a goroutine
	// leak
	if errs != nil {
		go func() {
			for range errs {
			}
		}()
	}
}
