package tfrecord

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Writer appends framed records to an io.Writer. It does no buffering of
// its own; wrap the destination in a bufio.Writer for large outputs.
type Writer struct {
	w      io.Writer
	header [headerSize]byte
	footer [footerSize]byte
}

// NewWriter returns a Writer that writes records to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write frames data as one record.
func (w *Writer) Write(data []byte) error {
	binary.LittleEndian.PutUint64(w.header[:8], uint64(len(data)))
	binary.LittleEndian.PutUint32(w.header[8:], maskedCRC(w.header[:8]))
	binary.LittleEndian.PutUint32(w.footer[:], maskedCRC(data))

	if _, err := w.w.Write(w.header[:]); err != nil {
		return errors.Wrap(err, "write record header")
	}
	if _, err := w.w.Write(data); err != nil {
		return errors.Wrap(err, "write record payload")
	}
	if _, err := w.w.Write(w.footer[:]); err != nil {
		return errors.Wrap(err, "write record footer")
	}
	return nil
}
