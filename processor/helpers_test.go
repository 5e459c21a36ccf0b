package processor_test

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"
	"testing"

	"github.com/MasterOfBinary/ocrbatch/batch"
	"github.com/MasterOfBinary/ocrbatch/record"
)

// captureLogger records every message it is given.
type captureLogger struct {
	mu       sync.Mutex
	messages []string
}

func (c *captureLogger) Log(level batch.LogLevel, format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, level.String()+" "+fmt.Sprintf(format, args...))
}
func (c *captureLogger) Debug(format string, args ...interface{}) {
	c.Log(batch.LogLevelDebug, format, args...)
}
func (c *captureLogger) Info(format string, args ...interface{}) {
	c.Log(batch.LogLevelInfo, format, args...)
}
func (c *captureLogger) Warn(format string, args ...interface{}) {
	c.Log(batch.LogLevelWarn, format, args...)
}
func (c *captureLogger) Error(format string, args ...interface{}) {
	c.Log(batch.LogLevelError, format, args...)
}

func (c *captureLogger) getMessages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]string, len(c.messages))
	copy(result, c.messages)
	return result
}

// processorFunc adapts a function to the batch.Processor interface.
type processorFunc func(context.Context, []*batch.Item) ([]*batch.Item, error)

func (f processorFunc) Process(ctx context.Context, items []*batch.Item) ([]*batch.Item, error) {
	return f(ctx, items)
}

// makeRecord encodes a record for text with a blank image of the given
// width and height 31.
func makeRecord(t testing.TB, text string, width int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, width, 31))); err != nil {
		t.Fatal(err)
	}
	labels, err := record.EncodeText(text)
	if err != nil {
		t.Fatal(err)
	}
	return record.Encode(record.Fields{
		Image:    buf.Bytes(),
		Labels:   labels,
		Width:    int64(width),
		Filename: text + ".png",
		Text:     text,
		Length:   int64(len(labels)),
	})
}

func parsed(t testing.TB, text string, width int) *record.Example {
	t.Helper()
	ex, err := (&record.Parser{}).Parse(makeRecord(t, text, width))
	if err != nil {
		t.Fatal(err)
	}
	return ex
}
