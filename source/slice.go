package source

import "context"

// Slice is a Source that emits in-memory record payloads in order, each
// wrapped in a Record. The payloads are not copied.
type Slice struct {
	Data [][]byte
}

// Read implements the batch.Source interface. The error channel never
// carries an error.
func (s *Slice) Read(ctx context.Context) (<-chan interface{}, <-chan error) {
	out := make(chan interface{})
	errs := make(chan error)

	go func() {
		defer close(out)
		defer close(errs)

		for i, data := range s.Data {
			select {
			case <-ctx.Done():
				return
			case out <- Record{Index: i, Data: data}:
			}
		}
	}()

	return out, errs
}
