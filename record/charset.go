package record

import (
	"strings"

	"github.com/pkg/errors"
)

// Charset lists the output classes in index order.
const Charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// ErrUnknownClass is returned when text contains a character outside
// Charset or a label index has no character.
var ErrUnknownClass = errors.New("record: unknown class")

// NumClasses returns the number of output classes.
func NumClasses() int {
	return len(Charset)
}

// EncodeText maps each character of s to its class index.
func EncodeText(s string) ([]int64, error) {
	labels := make([]int64, 0, len(s))
	for i, r := range s {
		idx := strings.IndexRune(Charset, r)
		if idx < 0 {
			return nil, errors.Wrapf(ErrUnknownClass, "character %q at offset %d", r, i)
		}
		labels = append(labels, int64(idx))
	}
	return labels, nil
}

// DecodeLabels maps class indices back to text.
func DecodeLabels[T ~int32 | ~int64](labels []T) (string, error) {
	var sb strings.Builder
	sb.Grow(len(labels))
	for i, l := range labels {
		if l < 0 || int(l) >= len(Charset) {
			return "", errors.Wrapf(ErrUnknownClass, "label %d at position %d", l, i)
		}
		sb.WriteByte(Charset[int(l)])
	}
	return sb.String(), nil
}
