package pipeline

import (
	"context"
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"github.com/MasterOfBinary/ocrbatch/batch"
	"github.com/MasterOfBinary/ocrbatch/processor"
	"github.com/MasterOfBinary/ocrbatch/record"
	"github.com/MasterOfBinary/ocrbatch/source"
)

// NewBucketed starts the training pipeline over the files matched by
// cfg.FilePatterns. Each epoch parses every record on cfg.NumThreads
// workers, drops the examples outside the thresholds, groups the rest into
// width buckets and emits each full bucket as a batch; the leftover buckets
// are emitted as short batches at the end of the epoch unless
// cfg.DropRemainder is set. Batches pass through a shuffle buffer before
// they reach the Stream.
//
// Files matching no pattern are not an error: the Stream is simply empty.
// An invalid config or a malformed pattern is.
func NewBucketed(ctx context.Context, cfg Config) (*Stream, error) {
	cfg, paths, err := prepare(cfg)
	if err != nil {
		return nil, err
	}

	s, ctx := newStream(ctx, cfg)
	s.logger.Info("Bucketed pipeline over %d file(s): batch size %d, boundaries %v, %d worker(s)",
		len(paths), cfg.BatchSize, cfg.Boundaries, cfg.NumThreads)

	parser := &record.Parser{
		Training:        true,
		WidthThreshold:  cfg.WidthThreshold,
		LengthThreshold: cfg.LengthThreshold,
		Strict:          cfg.Strict,
	}
	keep := processor.WrapWithStats(processor.NewKeepFilter(), s.keepStats, false)
	engine := newEngine(cfg, s.logger, &processor.Parse{Parser: parser}, keep).
		WithBucketFunc(bucketByWidth(cfg.Boundaries))
	src := &source.Records{Paths: paths, SkipChecksums: cfg.SkipChecksums}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	batches := make(chan *record.Batch)
	out := make(chan *record.Batch)
	s.out = out

	go s.runEpochs(ctx, engine, src, cfg.NumEpoch, batches)
	go shuffle(ctx, batches, out, cfg.ShuffleBuffer, rand.New(rand.NewSource(seed)))

	return s, nil
}

// NewThreaded starts the inference pipeline: one pass over the matched
// files, records parsed on cfg.NumThreads workers, batches of cfg.BatchSize
// in file order with a possibly smaller last batch.
func NewThreaded(ctx context.Context, cfg Config) (*Stream, error) {
	cfg, paths, err := prepare(cfg)
	if err != nil {
		return nil, err
	}
	cfg.DropRemainder = false

	s, ctx := newStream(ctx, cfg)
	s.logger.Info("Threaded pipeline over %d file(s): batch size %d, %d worker(s)",
		len(paths), cfg.BatchSize, cfg.NumThreads)

	engine := newEngine(cfg, s.logger, &processor.Parse{Parser: &record.Parser{Strict: cfg.Strict}})
	src := &source.Records{Paths: paths, SkipChecksums: cfg.SkipChecksums}

	out := make(chan *record.Batch)
	s.out = out

	go s.runEpochs(ctx, engine, src, 1, out)

	return s, nil
}

// prepare validates cfg, applies the defaults and resolves the file
// patterns.
func prepare(cfg Config) (Config, []string, error) {
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	cfg = cfg.withDefaults()

	paths, err := source.Glob(cfg.BaseDir, cfg.FilePatterns)
	if err != nil {
		return cfg, nil, errors.Wrap(ErrConfig, err.Error())
	}
	return cfg, paths, nil
}

// newEngine builds the batch engine shared by every epoch of a stream.
func newEngine(cfg Config, logger batch.Logger, prepare ...batch.Processor) *batch.Batch {
	b := batch.New(batch.NewConstantConfig(&batch.ConfigValues{
		BatchSize:     uint64(cfg.BatchSize),
		DropRemainder: cfg.DropRemainder,
	})).
		WithConcurrency(cfg.NumThreads).
		WithLogger(logger).
		WithPrepare(prepare...).
		WithBufferConfig(batch.BufferConfig{
			ItemBufferSize:  cfg.BufferSize,
			ErrorBufferSize: cfg.BufferSize,
		})

	if cfg.Stats != nil {
		b.WithStats(cfg.Stats)
	}
	return b
}
