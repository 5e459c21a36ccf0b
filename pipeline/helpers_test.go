package pipeline_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/MasterOfBinary/ocrbatch/pipeline"
	"github.com/MasterOfBinary/ocrbatch/record"
	"github.com/MasterOfBinary/ocrbatch/tfrecord"
)

type sample struct {
	text  string
	width int
}

// writeDataset writes one record file holding samples and returns its path.
func writeDataset(t testing.TB, dir, name string, samples ...sample) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := tfrecord.NewWriter(f)
	for _, s := range samples {
		var img bytes.Buffer
		if err := png.Encode(&img, image.NewGray(image.Rect(0, 0, s.width, 31))); err != nil {
			t.Fatal(err)
		}
		labels, err := record.EncodeText(s.text)
		if err != nil {
			t.Fatal(err)
		}
		data := record.Encode(record.Fields{
			Image:    img.Bytes(),
			Labels:   labels,
			Width:    int64(s.width),
			Filename: s.text + ".png",
			Text:     s.text,
			Length:   int64(len(labels)),
		})
		if err := w.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	return path
}

// readAll reads a stream to the end and closes it.
func readAll(t testing.TB, s *pipeline.Stream) ([]*record.Batch, error) {
	t.Helper()
	defer s.Close()

	var out []*record.Batch
	for {
		b, err := s.Next(context.Background())
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
}
