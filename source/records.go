package source

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/MasterOfBinary/ocrbatch/tfrecord"
)

// defaultRecordBuffer is the capacity of the output channel created by
// Records.Read when BufferSize is zero.
const defaultRecordBuffer = 16

// Records is a Source that reads framed records from Paths in order. Files
// are opened one at a time as reading reaches them, so a Records value can
// be read again to make another pass over the same files.
//
// Reading stops at the first error, which is sent on the error channel: a
// file that cannot be opened, a truncated record or a checksum mismatch.
// Corrupt records are never skipped.
type Records struct {
	// Paths lists the files to read, in reading order.
	Paths []string

	// SkipChecksums disables CRC verification of the framing.
	SkipChecksums bool

	// BufferSize controls the size of the output buffer.
	// If zero or negative, defaultRecordBuffer is used.
	BufferSize int
}

// Read implements the batch.Source interface. Every item it emits is a
// Record.
func (s *Records) Read(ctx context.Context) (<-chan interface{}, <-chan error) {
	bufSize := defaultRecordBuffer
	if s.BufferSize > 0 {
		bufSize = s.BufferSize
	}
	out := make(chan interface{}, bufSize)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		for _, path := range s.Paths {
			if err := s.readFile(ctx, path, out); err != nil {
				if ctx.Err() != nil {
					return
				}
				errs <- err
				return
			}
		}
	}()

	return out, errs
}

func (s *Records) readFile(ctx context.Context, path string, out chan<- interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open record file")
	}
	defer f.Close()

	r := tfrecord.NewReader(f)
	r.SkipChecksums = s.SkipChecksums

	for index := 0; ; index++ {
		data, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, path)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- Record{Path: path, Index: index, Data: data}:
		}
	}
}
