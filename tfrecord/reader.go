package tfrecord

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

const (
	headerSize = 12
	footerSize = 4

	// DefaultMaxRecordSize bounds the length a single record may declare.
	// Lengths above it are treated as corruption instead of being allocated.
	DefaultMaxRecordSize = 1 << 30
)

// ErrCorrupt is wrapped by every error caused by malformed framing: short
// reads inside a record, checksum mismatches and absurd lengths.
var ErrCorrupt = errors.New("tfrecord: corrupt record")

// Reader reads records sequentially from an io.Reader.
type Reader struct {
	r      *bufio.Reader
	header [headerSize]byte
	footer [footerSize]byte
	count  uint64

	// SkipChecksums disables CRC verification of lengths and payloads.
	SkipChecksums bool

	// MaxRecordSize overrides DefaultMaxRecordSize when positive.
	MaxRecordSize uint64
}

// NewReader returns a Reader that reads records from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r: bufio.NewReader(r),
	}
}

// Next returns the next record. It returns io.EOF when the input ends
// cleanly on a record boundary. The returned slice is owned by the caller.
func (r *Reader) Next() ([]byte, error) {
	n, err := io.ReadFull(r.r, r.header[:])
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "record %d: short header (%d bytes): %v", r.count, n, err)
	}

	length := binary.LittleEndian.Uint64(r.header[:8])
	if !r.SkipChecksums {
		want := binary.LittleEndian.Uint32(r.header[8:])
		if got := maskedCRC(r.header[:8]); got != want {
			return nil, errors.Wrapf(ErrCorrupt, "record %d: length checksum %#x, want %#x", r.count, got, want)
		}
	}

	limit := r.MaxRecordSize
	if limit == 0 {
		limit = DefaultMaxRecordSize
	}
	if length > limit {
		return nil, errors.Wrapf(ErrCorrupt, "record %d: length %d exceeds limit %d", r.count, length, limit)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r.r, data); err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "record %d: short payload: %v", r.count, err)
	}
	if _, err := io.ReadFull(r.r, r.footer[:]); err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "record %d: short footer: %v", r.count, err)
	}
	if !r.SkipChecksums {
		want := binary.LittleEndian.Uint32(r.footer[:])
		if got := maskedCRC(data); got != want {
			return nil, errors.Wrapf(ErrCorrupt, "record %d: payload checksum %#x, want %#x", r.count, got, want)
		}
	}

	r.count++
	return data, nil
}

// Count returns the number of records read successfully so far.
func (r *Reader) Count() uint64 {
	return r.count
}
