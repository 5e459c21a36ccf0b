// Package example decodes and encodes the protocol-buffer payload carried by
// each training record:
//
//	message Example  { Features features = 1; }
//	message Features { map<string, Feature> feature = 1; }
//	message Feature  {
//	  oneof kind {
//	    BytesList bytes_list = 1;
//	    FloatList float_list = 2;
//	    Int64List int64_list = 3;
//	  }
//	}
//
// The codec works directly on the wire format, so no generated message
// types are needed. Repeated scalars are accepted both packed and unpacked.
package example

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// ErrMalformed is wrapped by every decoding failure.
var ErrMalformed = errors.New("example: malformed payload")

// Kind identifies which list a Feature holds.
type Kind int

const (
	// KindNone is a feature with no list set.
	KindNone Kind = iota
	// KindBytes is a list of byte strings.
	KindBytes
	// KindFloat is a list of float32 values.
	KindFloat
	// KindInt64 is a list of int64 values.
	KindInt64
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBytes:
		return "bytes_list"
	case KindFloat:
		return "float_list"
	case KindInt64:
		return "int64_list"
	default:
		return "unknown"
	}
}

// Feature is one named value list of an Example. Only the slice matching
// Kind is meaningful.
type Feature struct {
	Kind   Kind
	Bytes  [][]byte
	Floats []float32
	Int64s []int64
}

// Len returns the number of values in the feature.
func (f *Feature) Len() int {
	switch f.Kind {
	case KindBytes:
		return len(f.Bytes)
	case KindFloat:
		return len(f.Floats)
	case KindInt64:
		return len(f.Int64s)
	default:
		return 0
	}
}

// Features maps feature names to values.
type Features map[string]*Feature

// BytesFeature returns a bytes_list feature.
func BytesFeature(values ...[]byte) *Feature {
	return &Feature{Kind: KindBytes, Bytes: values}
}

// StringFeature returns a bytes_list feature holding UTF-8 strings.
func StringFeature(values ...string) *Feature {
	b := make([][]byte, len(values))
	for i, v := range values {
		b[i] = []byte(v)
	}
	return BytesFeature(b...)
}

// Int64Feature returns an int64_list feature.
func Int64Feature(values ...int64) *Feature {
	return &Feature{Kind: KindInt64, Int64s: values}
}

// FloatFeature returns a float_list feature.
func FloatFeature(values ...float32) *Feature {
	return &Feature{Kind: KindFloat, Floats: values}
}

// Decode parses a serialized Example. Unknown fields are skipped.
func Decode(b []byte) (Features, error) {
	features := make(Features)
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if num != 1 || typ != protowire.BytesType {
			return nil
		}
		return decodeFeatures(v, features)
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode example")
	}
	return features, nil
}

func decodeFeatures(b []byte, features Features) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if num != 1 || typ != protowire.BytesType {
			return nil
		}

		var (
			key     string
			feature = &Feature{}
		)
		err := walk(v, func(num protowire.Number, typ protowire.Type, v []byte) error {
			if typ != protowire.BytesType {
				return nil
			}
			switch num {
			case 1:
				key = string(v)
			case 2:
				feature = &Feature{}
				return decodeFeature(v, feature)
			}
			return nil
		})
		if err != nil {
			return errors.Wrapf(err, "feature %q", key)
		}

		// Map entries that repeat a key replace the earlier value.
		features[key] = feature
		return nil
	})
}

func decodeFeature(b []byte, f *Feature) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if typ != protowire.BytesType {
			return nil
		}
		var kind Kind
		switch num {
		case 1:
			kind = KindBytes
		case 2:
			kind = KindFloat
		case 3:
			kind = KindInt64
		default:
			return nil
		}
		if f.Kind != kind {
			*f = Feature{Kind: kind}
		}
		return decodeList(v, f)
	})
}

func decodeList(b []byte, f *Feature) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return errors.Wrap(ErrMalformed, protowire.ParseError(n).Error())
		}
		b = b[n:]

		if num != 1 {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return errors.Wrap(ErrMalformed, protowire.ParseError(n).Error())
			}
			b = b[n:]
			continue
		}

		switch {
		case f.Kind == KindBytes && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return errors.Wrap(ErrMalformed, protowire.ParseError(n).Error())
			}
			f.Bytes = append(f.Bytes, append([]byte(nil), v...))
			b = b[n:]

		case f.Kind == KindInt64 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return errors.Wrap(ErrMalformed, protowire.ParseError(n).Error())
			}
			f.Int64s = append(f.Int64s, int64(v))
			b = b[n:]

		case f.Kind == KindInt64 && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return errors.Wrap(ErrMalformed, protowire.ParseError(n).Error())
			}
			for len(packed) > 0 {
				v, m := protowire.ConsumeVarint(packed)
				if m < 0 {
					return errors.Wrap(ErrMalformed, protowire.ParseError(m).Error())
				}
				f.Int64s = append(f.Int64s, int64(v))
				packed = packed[m:]
			}
			b = b[n:]

		case f.Kind == KindFloat && typ == protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return errors.Wrap(ErrMalformed, protowire.ParseError(n).Error())
			}
			f.Floats = append(f.Floats, math.Float32frombits(v))
			b = b[n:]

		case f.Kind == KindFloat && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return errors.Wrap(ErrMalformed, protowire.ParseError(n).Error())
			}
			if len(packed)%4 != 0 {
				return errors.Wrapf(ErrMalformed, "packed float list of %d bytes", len(packed))
			}
			for len(packed) > 0 {
				v, m := protowire.ConsumeFixed32(packed)
				if m < 0 {
					return errors.Wrap(ErrMalformed, protowire.ParseError(m).Error())
				}
				f.Floats = append(f.Floats, math.Float32frombits(v))
				packed = packed[m:]
			}
			b = b[n:]

		default:
			return errors.Wrapf(ErrMalformed, "%s value with wire type %d", f.Kind, typ)
		}
	}
	return nil
}

// walk calls fn for every top-level field of a message.
func walk(b []byte, fn func(num protowire.Number, typ protowire.Type, v []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return errors.Wrap(ErrMalformed, protowire.ParseError(n).Error())
		}
		b = b[n:]

		m := protowire.ConsumeFieldValue(num, typ, b)
		if m < 0 {
			return errors.Wrap(ErrMalformed, protowire.ParseError(m).Error())
		}

		var v []byte
		if typ == protowire.BytesType {
			v, _ = protowire.ConsumeBytes(b[:m])
		}
		if err := fn(num, typ, v); err != nil {
			return err
		}
		b = b[m:]
	}
	return nil
}

// Encode serializes features as an Example. Keys are written in sorted
// order so equal inputs always produce equal bytes.
func Encode(features Features) []byte {
	keys := make([]string, 0, len(features))
	for k := range features {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var body []byte
	for _, k := range keys {
		var entry []byte
		entry = protowire.AppendTag(entry, 1, protowire.BytesType)
		entry = protowire.AppendString(entry, k)
		entry = protowire.AppendTag(entry, 2, protowire.BytesType)
		entry = protowire.AppendBytes(entry, encodeFeature(features[k]))

		body = protowire.AppendTag(body, 1, protowire.BytesType)
		body = protowire.AppendBytes(body, entry)
	}

	var out []byte
	out = protowire.AppendTag(out, 1, protowire.BytesType)
	out = protowire.AppendBytes(out, body)
	return out
}

func encodeFeature(f *Feature) []byte {
	if f == nil {
		return nil
	}

	var (
		list  []byte
		field protowire.Number
	)
	switch f.Kind {
	case KindBytes:
		field = 1
		for _, v := range f.Bytes {
			list = protowire.AppendTag(list, 1, protowire.BytesType)
			list = protowire.AppendBytes(list, v)
		}
	case KindFloat:
		field = 2
		var packed []byte
		for _, v := range f.Floats {
			packed = protowire.AppendFixed32(packed, math.Float32bits(v))
		}
		list = protowire.AppendTag(list, 1, protowire.BytesType)
		list = protowire.AppendBytes(list, packed)
	case KindInt64:
		field = 3
		var packed []byte
		for _, v := range f.Int64s {
			packed = protowire.AppendVarint(packed, uint64(v))
		}
		list = protowire.AppendTag(list, 1, protowire.BytesType)
		list = protowire.AppendBytes(list, packed)
	default:
		return nil
	}

	var out []byte
	out = protowire.AppendTag(out, field, protowire.BytesType)
	out = protowire.AppendBytes(out, list)
	return out
}
