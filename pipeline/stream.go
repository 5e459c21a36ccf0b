package pipeline

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/MasterOfBinary/ocrbatch/batch"
	"github.com/MasterOfBinary/ocrbatch/processor"
	"github.com/MasterOfBinary/ocrbatch/record"
)

// ErrClosed is returned by Next after Close.
var ErrClosed = errors.New("pipeline: stream closed")

// Stream delivers the batches of a running pipeline. Create one with
// NewBucketed or NewThreaded; it must be closed to release its goroutines
// unless it has been read to the end.
type Stream struct {
	id     string
	logger batch.Logger
	out    <-chan *record.Batch
	cancel context.CancelFunc

	// keepStats counts the examples the keep filter passes and drops.
	keepStats *batch.BasicStatsCollector

	// mu protects the following variables
	mu     sync.Mutex
	err    error
	closed bool
}

// newStream creates a Stream whose stages run under a child of ctx. The
// caller starts the stages and sets out.
func newStream(ctx context.Context, cfg Config) (*Stream, context.Context) {
	id := uuid.New().String()

	logger := cfg.Logger
	if logger == nil {
		logger = &batch.NoOpLogger{}
	}
	if l, ok := logger.(*batch.SimpleLogger); ok {
		logger = l.WithPrefix(id)
	}

	ctx, cancel := context.WithCancel(ctx)
	return &Stream{
		id:        id,
		logger:    logger,
		cancel:    cancel,
		keepStats: batch.NewBasicStatsCollector(),
	}, ctx
}

// ID returns the unique ID of the stream, used to tag its log lines.
func (s *Stream) ID() string {
	return s.id
}

// KeepStats returns the counts of the threshold filter so far:
// ItemsProcessed holds the examples kept and ItemsFiltered the examples
// dropped. It is zero for a threaded stream, which does not filter.
func (s *Stream) KeepStats() batch.Stats {
	return s.keepStats.GetStats()
}

// Next returns the next batch. It returns io.EOF once the pipeline is
// exhausted and the first pipeline error from then on if one occurred.
// If ctx is done, ctx.Err() is returned and the stream stays usable.
func (s *Stream) Next(ctx context.Context) (*record.Batch, error) {
	if s == nil {
		return nil, errors.New("pipeline: called Next on nil Stream")
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if s.err != nil {
		err := s.err
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case b, ok := <-s.out:
		if ok {
			return b, nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return nil, io.EOF
}

// Close stops the pipeline and waits for its stages to finish. It can be
// called multiple times with no problems.
func (s *Stream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	for range s.out {
	}
	return nil
}

// fail records err as the stream error unless one is already set, and
// stops the remaining stages.
func (s *Stream) fail(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
	s.cancel()
}

// runEpochs makes up to numEpoch passes over src, or unlimited passes if
// numEpoch is zero, and closes out when done. A pass that yields no batch
// ends the run.
func (s *Stream) runEpochs(ctx context.Context, engine *batch.Batch, src batch.Source, numEpoch int, out chan<- *record.Batch) {
	defer close(out)

	for epoch := 1; numEpoch == 0 || epoch <= numEpoch; epoch++ {
		s.logger.Debug("Starting epoch %d", epoch)

		n, err := s.pass(ctx, engine, src, out)
		if err != nil {
			s.logger.Error("Epoch %d failed: %v", epoch, err)
			s.fail(err)
			return
		}
		if err := ctx.Err(); err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if !closed {
				s.logger.Error("Epoch %d interrupted: %v", epoch, err)
				s.fail(err)
			}
			return
		}

		kept := s.keepStats.GetStats()
		s.logger.Info("Epoch %d produced %d batch(es); %d example(s) kept, %d filtered so far",
			epoch, n, kept.ItemsProcessed, kept.ItemsFiltered)
		if n == 0 {
			s.logger.Info("Epoch %d was empty, ending stream", epoch)
			return
		}
	}
}

// pass runs one engine over the source and forwards every batch it
// produces to out. It returns the number of batches forwarded and the first
// error; the first error cancels the rest of the pass.
func (s *Stream) pass(ctx context.Context, b *batch.Batch, src batch.Source, out chan<- *record.Batch) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	batches := make(chan *record.Batch)
	assemble := processor.WrapWithLogging(&processor.Assemble{}, s.logger, "assemble")
	errs := b.Go(ctx, src, assemble, &processor.Channel{Output: batches})

	var (
		n     int
		first error
	)
	for errs != nil {
		select {
		case bt := <-batches:
			if first != nil {
				continue
			}
			select {
			case out <- bt:
				n++
			case <-ctx.Done():
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if first == nil && ctx.Err() == nil {
				first = err
				cancel()
			}
		}
	}

	return n, first
}
