// Package sparse holds variable-length integer sequences as coordinate
// lists. A single example's label is a rank-1 tensor; a batch of labels is
// the rank-2 tensor obtained by stacking per-example tensors along a new
// leading batch dimension.
//
// Labels travel through the pipeline in Serialized form so that examples
// stay self-contained values until they are grouped, and DeserializeMany
// merges a group back into one batch tensor.
package sparse

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// ErrInvalid is wrapped by errors about inconsistent tensors or serialized
// data that cannot be decoded.
var ErrInvalid = errors.New("sparse: invalid tensor")

// Integer is the set of value types a Tensor may hold.
type Integer interface {
	~int32 | ~int64
}

// Tensor is a sparse integer tensor. Values[i] is located at Indices[i],
// which has one coordinate per dimension of Shape.
type Tensor[T Integer] struct {
	Indices [][]int64
	Values  []T
	Shape   []int64
}

// FromDense returns the rank-1 tensor holding values at positions
// 0..len(values)-1.
func FromDense(values []int64) *Tensor[int64] {
	t := &Tensor[int64]{
		Indices: make([][]int64, len(values)),
		Values:  append([]int64(nil), values...),
		Shape:   []int64{int64(len(values))},
	}
	for i := range values {
		t.Indices[i] = []int64{int64(i)}
	}
	return t
}

// Rank returns the number of dimensions.
func (t *Tensor[T]) Rank() int {
	return len(t.Shape)
}

// Validate checks that every value has an in-bounds coordinate of the
// right rank.
func (t *Tensor[T]) Validate() error {
	if len(t.Indices) != len(t.Values) {
		return errors.Wrapf(ErrInvalid, "%d indices for %d values", len(t.Indices), len(t.Values))
	}
	for i, idx := range t.Indices {
		if len(idx) != len(t.Shape) {
			return errors.Wrapf(ErrInvalid, "index %d has rank %d, want %d", i, len(idx), len(t.Shape))
		}
		for d, c := range idx {
			if c < 0 || c >= t.Shape[d] {
				return errors.Wrapf(ErrInvalid, "index %d coordinate %d out of range [0, %d)", i, c, t.Shape[d])
			}
		}
	}
	return nil
}

// Row returns, in order, the values whose leading coordinate is row.
func (t *Tensor[T]) Row(row int64) []T {
	var out []T
	for i, idx := range t.Indices {
		if len(idx) > 0 && idx[0] == row {
			out = append(out, t.Values[i])
		}
	}
	return out
}

// Cast converts the values of t to another integer width. Values that do
// not fit are truncated, like a numeric conversion.
func Cast[To, From Integer](t *Tensor[From]) *Tensor[To] {
	out := &Tensor[To]{
		Indices: t.Indices,
		Values:  make([]To, len(t.Values)),
		Shape:   t.Shape,
	}
	for i, v := range t.Values {
		out.Values[i] = To(v)
	}
	return out
}

// Serialized is the self-contained byte form of a tensor. It is safe to
// copy and concatenate into batches.
type Serialized []byte

const (
	fieldRank    protowire.Number = 1
	fieldIndices protowire.Number = 2
	fieldValues  protowire.Number = 3
	fieldShape   protowire.Number = 4
)

// Serialize encodes t.
func Serialize(t *Tensor[int64]) Serialized {
	var indices, values, shape []byte
	for _, idx := range t.Indices {
		for _, c := range idx {
			indices = protowire.AppendVarint(indices, uint64(c))
		}
	}
	for _, v := range t.Values {
		values = protowire.AppendVarint(values, uint64(v))
	}
	for _, s := range t.Shape {
		shape = protowire.AppendVarint(shape, uint64(s))
	}

	var out []byte
	out = protowire.AppendTag(out, fieldRank, protowire.VarintType)
	out = protowire.AppendVarint(out, uint64(len(t.Shape)))
	out = protowire.AppendTag(out, fieldIndices, protowire.BytesType)
	out = protowire.AppendBytes(out, indices)
	out = protowire.AppendTag(out, fieldValues, protowire.BytesType)
	out = protowire.AppendBytes(out, values)
	out = protowire.AppendTag(out, fieldShape, protowire.BytesType)
	out = protowire.AppendBytes(out, shape)
	return out
}

// Decode reverses Serialize.
func (s Serialized) Decode() (*Tensor[int64], error) {
	var (
		rank                   uint64
		indices, values, shape []int64
		b                      = []byte(s)
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, errors.Wrap(ErrInvalid, protowire.ParseError(n).Error())
		}
		b = b[n:]

		switch {
		case num == fieldRank && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, errors.Wrap(ErrInvalid, protowire.ParseError(n).Error())
			}
			rank = v
			b = b[n:]
		case (num == fieldIndices || num == fieldValues || num == fieldShape) && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, errors.Wrap(ErrInvalid, protowire.ParseError(n).Error())
			}
			list, err := unpack(packed)
			if err != nil {
				return nil, err
			}
			switch num {
			case fieldIndices:
				indices = list
			case fieldValues:
				values = list
			case fieldShape:
				shape = list
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, errors.Wrap(ErrInvalid, protowire.ParseError(n).Error())
			}
			b = b[n:]
		}
	}

	if uint64(len(shape)) != rank {
		return nil, errors.Wrapf(ErrInvalid, "shape has %d dims, rank is %d", len(shape), rank)
	}
	if uint64(len(indices)) != uint64(len(values))*rank {
		return nil, errors.Wrapf(ErrInvalid, "%d coordinates for %d values of rank %d", len(indices), len(values), rank)
	}

	t := &Tensor[int64]{
		Indices: make([][]int64, len(values)),
		Values:  values,
		Shape:   shape,
	}
	for i := range values {
		t.Indices[i] = indices[i*int(rank) : (i+1)*int(rank)]
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func unpack(b []byte) ([]int64, error) {
	var out []int64
	for len(b) > 0 {
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return nil, errors.Wrap(ErrInvalid, protowire.ParseError(n).Error())
		}
		out = append(out, int64(v))
		b = b[n:]
	}
	return out, nil
}

// DeserializeMany decodes each serialized tensor and stacks them into one
// tensor with a new leading dimension. Element i of items becomes row i;
// its coordinates are prefixed with i. The resulting shape is
// [len(items), max dim 0, max dim 1, ...]. All items must share a rank.
func DeserializeMany(items []Serialized) (*Tensor[int64], error) {
	out := &Tensor[int64]{}
	rank := -1

	for row, s := range items {
		t, err := s.Decode()
		if err != nil {
			return nil, errors.Wrapf(err, "item %d", row)
		}

		if rank < 0 {
			rank = t.Rank()
			out.Shape = make([]int64, rank+1)
		} else if t.Rank() != rank {
			return nil, errors.Wrapf(ErrInvalid, "item %d has rank %d, want %d", row, t.Rank(), rank)
		}

		for d, s := range t.Shape {
			if s > out.Shape[d+1] {
				out.Shape[d+1] = s
			}
		}
		for i, idx := range t.Indices {
			coord := make([]int64, 0, rank+1)
			coord = append(coord, int64(row))
			coord = append(coord, idx...)
			out.Indices = append(out.Indices, coord)
			out.Values = append(out.Values, t.Values[i])
		}
	}

	if rank < 0 {
		out.Shape = []int64{0}
	}
	out.Shape[0] = int64(len(items))
	return out, nil
}
