package batch

// Default buffer sizes for channels used in batch processing.
const (
	// DefaultItemBufferSize is the default buffer size for the channels
	// between the reader, the prepare stage and the bucketing stage.
	DefaultItemBufferSize = 100

	// DefaultErrorBufferSize is the default buffer size for the error channel.
	// This should be large enough to handle bursts of errors without blocking.
	DefaultErrorBufferSize = 100

	// DefaultConcurrency is the number of prepare workers used when none is
	// configured.
	DefaultConcurrency = 1
)
