package source

// Record is one raw record emitted by a source.
type Record struct {
	// Path is the file the record was read from. Empty for in-memory
	// records.
	Path string

	// Index is the position of the record within its file, or within the
	// slice for in-memory records.
	Index int

	// Data is the record payload with the framing removed.
	Data []byte
}
