package pipeline

import (
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/MasterOfBinary/ocrbatch/batch"
)

const (
	// DefaultNumThreads is the number of parse workers used when
	// Config.NumThreads is zero.
	DefaultNumThreads = 4

	// DefaultBatchSize is the batch size used when Config.BatchSize is zero.
	DefaultBatchSize = 32
)

// DefaultBoundaries are the width bucket boundaries used when
// Config.Boundaries is empty.
var DefaultBoundaries = []int{32, 64, 96, 128, 160, 192, 224, 256}

// ErrConfig is wrapped by every configuration error.
var ErrConfig = errors.New("invalid pipeline config")

// Config configures a pipeline. Zero values select the defaults; NewThreaded
// only reads BaseDir, FilePatterns, NumThreads, BatchSize, Strict,
// SkipChecksums and the logging and stats fields.
type Config struct {
	// BaseDir is joined with every pattern in FilePatterns.
	BaseDir string `json:"baseDir"`

	// FilePatterns are glob patterns naming the record files.
	FilePatterns []string `json:"filePatterns"`

	// NumThreads is the number of parse workers. Zero means
	// DefaultNumThreads; a negative value means one worker per physical
	// core.
	NumThreads int `json:"numThreads"`

	// BatchSize is the number of examples per batch. Zero means
	// DefaultBatchSize.
	BatchSize int `json:"batchSize"`

	// Boundaries are the ascending width bucket boundaries. Empty means
	// DefaultBoundaries.
	Boundaries []int `json:"boundaries"`

	// WidthThreshold drops training examples wider than it. Zero disables
	// the check: it does not mean "keep only examples of width 0 or less",
	// so there is no way to drop every example by width.
	WidthThreshold int `json:"widthThreshold"`

	// LengthThreshold drops training examples with more labels than it.
	// Zero disables the check in the same way as WidthThreshold.
	LengthThreshold int `json:"lengthThreshold"`

	// NumEpoch is the number of passes over the files. Zero repeats until
	// the Stream is closed.
	NumEpoch int `json:"numEpoch"`

	// ShuffleBuffer is the number of batches held by the shuffle stage.
	// Zero means BatchSize.
	ShuffleBuffer int `json:"shuffleBuffer"`

	// Seed seeds the shuffle. Zero seeds from the clock.
	Seed int64 `json:"seed"`

	// DropRemainder drops the partial batches left in the buckets at the
	// end of every epoch.
	DropRemainder bool `json:"dropRemainder"`

	// Strict rejects records whose labels disagree with their length or
	// fall outside the class vocabulary.
	Strict bool `json:"strict"`

	// SkipChecksums disables CRC verification of the record framing.
	SkipChecksums bool `json:"skipChecksums"`

	// BufferSize is the capacity of the engine's channels between stages
	// and of its error channel. Zero means batch.DefaultItemBufferSize and
	// batch.DefaultErrorBufferSize.
	BufferSize int `json:"bufferSize"`

	// LogLevel creates a SimpleLogger at that level when Logger is nil
	// and LogLevel is not empty.
	LogLevel string `json:"logLevel"`

	// Logger receives pipeline and engine logs.
	Logger batch.Logger `json:"-"`

	// Stats collects engine statistics across all epochs.
	Stats batch.StatsCollector `json:"-"`
}

// LoadConfig decodes a JSON config and validates it. Unknown fields are an
// error.
func LoadConfig(r io.Reader) (Config, error) {
	var c Config
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, errors.Wrap(err, "decode pipeline config")
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks c for values no default can repair.
func (c Config) Validate() error {
	switch {
	case c.BatchSize < 0:
		return errors.Wrapf(ErrConfig, "batch size %d is not positive", c.BatchSize)
	case c.WidthThreshold < 0:
		return errors.Wrapf(ErrConfig, "width threshold %d is negative", c.WidthThreshold)
	case c.LengthThreshold < 0:
		return errors.Wrapf(ErrConfig, "length threshold %d is negative", c.LengthThreshold)
	case c.NumEpoch < 0:
		return errors.Wrapf(ErrConfig, "epoch count %d is negative", c.NumEpoch)
	case c.ShuffleBuffer < 0:
		return errors.Wrapf(ErrConfig, "shuffle buffer %d is negative", c.ShuffleBuffer)
	case c.BufferSize < 0:
		return errors.Wrapf(ErrConfig, "buffer size %d is negative", c.BufferSize)
	}

	for i := 1; i < len(c.Boundaries); i++ {
		if c.Boundaries[i] <= c.Boundaries[i-1] {
			return errors.Wrapf(ErrConfig, "boundaries %v are not strictly ascending", c.Boundaries)
		}
	}

	for _, p := range c.FilePatterns {
		if _, err := filepath.Match(p, ""); err != nil {
			return errors.Wrapf(ErrConfig, "file pattern %q: %v", p, err)
		}
	}

	if c.LogLevel != "" {
		if _, err := batch.ParseLogLevel(c.LogLevel); err != nil {
			return errors.Wrapf(ErrConfig, "%v", err)
		}
	}

	return nil
}

// withDefaults returns a copy of c with zero values replaced by defaults.
// c must be valid.
func (c Config) withDefaults() Config {
	c.NumThreads = numWorkers(c.NumThreads)
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if len(c.Boundaries) == 0 {
		c.Boundaries = append([]int(nil), DefaultBoundaries...)
	}
	if c.ShuffleBuffer == 0 {
		c.ShuffleBuffer = c.BatchSize
	}
	if c.Logger == nil && c.LogLevel != "" {
		level, _ := batch.ParseLogLevel(c.LogLevel)
		c.Logger = batch.NewSimpleLogger(level)
	}
	return c
}
