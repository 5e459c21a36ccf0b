// Package record parses the training records of the OCR dataset into
// Examples and assembles Examples into padded Batches.
//
// Every record payload is an Example message with these features:
//
//	image/encoded   bytes   compressed single-channel image   default ""
//	image/labels    int64s  class indices, variable length    default []
//	image/width     int64   image width in pixels             default 1
//	image/filename  bytes   source path                       default ""
//	text/string     bytes   human-readable text               default ""
//	text/length     int64   number of label symbols           default 1
package record

import (
	"math"

	"github.com/pkg/errors"

	"github.com/MasterOfBinary/ocrbatch/example"
	"github.com/MasterOfBinary/ocrbatch/preprocess"
	"github.com/MasterOfBinary/ocrbatch/sparse"
)

// Feature keys of a record.
const (
	KeyImage    = "image/encoded"
	KeyLabels   = "image/labels"
	KeyWidth    = "image/width"
	KeyFilename = "image/filename"
	KeyText     = "text/string"
	KeyLength   = "text/length"
)

// ErrSchema is wrapped by errors about features of the wrong kind or size,
// and by Strict-mode label checks.
var ErrSchema = errors.New("record: schema mismatch")

// Example is one parsed training example.
type Example struct {
	// Image is the preprocessed image, one row taller than the encoded one.
	Image *preprocess.Image

	// Width is the width recorded in the record, used for bucketing and
	// for computing sequence lengths after the convolutional stack.
	Width int32

	// Labels holds the class indices of Text.
	Labels []int64

	// Label is Labels in serialized sparse form, ready for batching.
	Label sparse.Serialized

	// Length is the recorded number of label symbols.
	Length int64

	Text     string
	Filename string

	// Keep reports whether the example passed the size thresholds. It is
	// always true outside training mode.
	Keep bool
}

// Fields are the raw values of a record, used to build one with Encode.
type Fields struct {
	Image    []byte
	Labels   []int64
	Width    int64
	Filename string
	Text     string
	Length   int64
}

// Encode serializes f as a record payload.
func Encode(f Fields) []byte {
	return example.Encode(example.Features{
		KeyImage:    example.BytesFeature(f.Image),
		KeyLabels:   example.Int64Feature(f.Labels...),
		KeyWidth:    example.Int64Feature(f.Width),
		KeyFilename: example.StringFeature(f.Filename),
		KeyText:     example.StringFeature(f.Text),
		KeyLength:   example.Int64Feature(f.Length),
	})
}

// Parser decodes records. The zero value parses in inference mode without
// any filtering.
type Parser struct {
	// Training enables the keep-decision. Without it every example is kept.
	Training bool

	// WidthThreshold is the largest width kept in training mode. Zero
	// disables the check rather than keeping only widths of 0 or less.
	WidthThreshold int

	// LengthThreshold is the largest label length kept in training mode.
	// Zero disables the check rather than keeping only lengths of 0 or
	// less.
	LengthThreshold int

	// Strict rejects records whose label count differs from text/length or
	// whose labels are not valid classes.
	Strict bool
}

// Parse decodes one record payload, decodes and preprocesses its image and
// computes the keep-decision.
func (p *Parser) Parse(data []byte) (*Example, error) {
	features, err := example.Decode(data)
	if err != nil {
		return nil, err
	}

	encoded, err := bytesFeature(features, KeyImage, nil)
	if err != nil {
		return nil, err
	}
	labels, err := int64List(features, KeyLabels)
	if err != nil {
		return nil, err
	}
	width, err := int64Feature(features, KeyWidth, 1)
	if err != nil {
		return nil, err
	}
	if width < math.MinInt32 || width > math.MaxInt32 {
		return nil, errors.Wrapf(ErrSchema, "%s: %d does not fit in 32 bits", KeyWidth, width)
	}
	filename, err := bytesFeature(features, KeyFilename, nil)
	if err != nil {
		return nil, err
	}
	text, err := bytesFeature(features, KeyText, nil)
	if err != nil {
		return nil, err
	}
	length, err := int64Feature(features, KeyLength, 1)
	if err != nil {
		return nil, err
	}

	if p.Strict {
		if err := checkLabels(labels, length); err != nil {
			return nil, errors.Wrapf(err, "record %q", filename)
		}
	}

	gray, err := preprocess.Decode(encoded)
	if err != nil {
		return nil, errors.Wrapf(err, "record %q", filename)
	}

	ex := &Example{
		Image:    preprocess.Preprocess(gray),
		Width:    int32(width),
		Labels:   labels,
		Label:    sparse.Serialize(sparse.FromDense(labels)),
		Length:   length,
		Text:     string(text),
		Filename: string(filename),
		Keep:     true,
	}
	if p.Training {
		ex.Keep = p.KeepInput(ex.Width, ex.Length)
	}
	return ex, nil
}

// KeepInput reports whether an example of the given width and label length
// is within the configured thresholds. With no thresholds it is always
// true.
func (p *Parser) KeepInput(width int32, length int64) bool {
	keep := true
	if p.WidthThreshold > 0 {
		keep = keep && int64(width) <= int64(p.WidthThreshold)
	}
	if p.LengthThreshold > 0 {
		keep = keep && length <= int64(p.LengthThreshold)
	}
	return keep
}

func checkLabels(labels []int64, length int64) error {
	if int64(len(labels)) != length {
		return errors.Wrapf(ErrSchema, "%d labels, text/length is %d", len(labels), length)
	}
	for i, l := range labels {
		if l < 0 || l >= int64(NumClasses()) {
			return errors.Wrapf(ErrSchema, "label %d at position %d is not in [0, %d)", l, i, NumClasses())
		}
	}
	return nil
}

// lookup returns the named feature, treating a feature with no list as
// missing.
func lookup(features example.Features, key string) *example.Feature {
	f, ok := features[key]
	if !ok || f == nil || f.Kind == example.KindNone {
		return nil
	}
	return f
}

func bytesFeature(features example.Features, key string, def []byte) ([]byte, error) {
	f := lookup(features, key)
	if f == nil {
		return def, nil
	}
	if f.Kind != example.KindBytes || len(f.Bytes) != 1 {
		return nil, errors.Wrapf(ErrSchema, "%s: want 1 bytes value, got %d of %s", key, f.Len(), f.Kind)
	}
	return f.Bytes[0], nil
}

func int64Feature(features example.Features, key string, def int64) (int64, error) {
	f := lookup(features, key)
	if f == nil {
		return def, nil
	}
	if f.Kind != example.KindInt64 || len(f.Int64s) != 1 {
		return 0, errors.Wrapf(ErrSchema, "%s: want 1 int64 value, got %d of %s", key, f.Len(), f.Kind)
	}
	return f.Int64s[0], nil
}

func int64List(features example.Features, key string) ([]int64, error) {
	f := lookup(features, key)
	if f == nil {
		return nil, nil
	}
	if f.Kind != example.KindInt64 {
		return nil, errors.Wrapf(ErrSchema, "%s: want int64 values, got %s", key, f.Kind)
	}
	return f.Int64s, nil
}
