package record

import (
	"github.com/pkg/errors"

	"github.com/MasterOfBinary/ocrbatch/preprocess"
	"github.com/MasterOfBinary/ocrbatch/sparse"
)

// Batch is a group of examples ready for the model. Images are padded with
// zeros at the bottom and right to the largest height and width in the
// batch; all other slices have one entry per example.
type Batch struct {
	Size   int
	Height int
	Width  int

	// Images holds Size images of Height x Width, row-major.
	Images []float32

	Widths    []int32
	Labels    *sparse.Tensor[int32]
	Lengths   []int64
	Texts     []string
	Filenames []string
}

// Image returns a view of the i-th padded image.
func (b *Batch) Image(i int) *preprocess.Image {
	n := b.Height * b.Width
	return &preprocess.Image{
		Height: b.Height,
		Width:  b.Width,
		Pix:    b.Images[i*n : (i+1)*n],
	}
}

// Assemble pads and stacks examples into a Batch and merges their
// serialized labels into one sparse tensor.
func Assemble(examples []*Example) (*Batch, error) {
	if len(examples) == 0 {
		return nil, errors.New("assemble batch: no examples")
	}

	b := &Batch{
		Size:      len(examples),
		Widths:    make([]int32, len(examples)),
		Lengths:   make([]int64, len(examples)),
		Texts:     make([]string, len(examples)),
		Filenames: make([]string, len(examples)),
	}
	labels := make([]sparse.Serialized, len(examples))

	for i, ex := range examples {
		if ex.Image.Height > b.Height {
			b.Height = ex.Image.Height
		}
		if ex.Image.Width > b.Width {
			b.Width = ex.Image.Width
		}
		b.Widths[i] = ex.Width
		b.Lengths[i] = ex.Length
		b.Texts[i] = ex.Text
		b.Filenames[i] = ex.Filename
		labels[i] = ex.Label
	}

	b.Images = make([]float32, b.Size*b.Height*b.Width)
	for i, ex := range examples {
		dst := b.Image(i)
		for y := 0; y < ex.Image.Height; y++ {
			copy(dst.Row(y), ex.Image.Row(y))
		}
	}

	merged, err := sparse.DeserializeMany(labels)
	if err != nil {
		return nil, errors.Wrap(err, "assemble batch labels")
	}
	b.Labels = sparse.Cast[int32](merged)
	return b, nil
}
