package pipeline

import (
	"context"
	"math/rand"

	"github.com/MasterOfBinary/ocrbatch/record"
)

// shuffle forwards batches from in to out through a buffer of size
// batches. Once the buffer is full, each incoming batch replaces a randomly
// chosen buffered one, which is emitted. When in is closed the rest of the
// buffer is emitted in random order. A size of 1 or less keeps the order.
// out is closed on return.
func shuffle(ctx context.Context, in <-chan *record.Batch, out chan<- *record.Batch, size int, rng *rand.Rand) {
	defer close(out)

	send := func(b *record.Batch) bool {
		select {
		case out <- b:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if size < 1 {
		size = 1
	}
	buf := make([]*record.Batch, 0, size)

	for b := range in {
		if len(buf) < size {
			buf = append(buf, b)
			continue
		}
		i := rng.Intn(size)
		next := buf[i]
		buf[i] = b
		if !send(next) {
			drain(in)
			return
		}
	}

	rng.Shuffle(len(buf), func(i, j int) {
		buf[i], buf[j] = buf[j], buf[i]
	})
	for _, b := range buf {
		if !send(b) {
			return
		}
	}
}

func drain(in <-chan *record.Batch) {
	for range in {
	}
}
