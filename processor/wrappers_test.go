package processor_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MasterOfBinary/ocrbatch/batch"
	"github.com/MasterOfBinary/ocrbatch/processor"
)

func TestLoggingProcessor(t *testing.T) {
	t.Run("logs batch shape", func(t *testing.T) {
		logger := &captureLogger{}
		wrapped := processor.WrapWithLogging(&processor.Assemble{}, logger, "assemble")

		items := []*batch.Item{
			{Data: parsed(t, "ab", 30)},
			{Data: parsed(t, "cd", 40)},
		}
		if _, err := wrapped.Process(context.Background(), items); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		msgs := strings.Join(logger.getMessages(), "\n")
		for _, want := range []string{
			"'assemble' assembled batch of 2 at 32x40",
			"2 in, 1 out, 0 errors",
		} {
			if !strings.Contains(msgs, want) {
				t.Errorf("missing %q in:\n%s", want, msgs)
			}
		}
	})

	t.Run("logs failures", func(t *testing.T) {
		logger := &captureLogger{}
		failing := processorFunc(func(ctx context.Context, items []*batch.Item) ([]*batch.Item, error) {
			return items, errors.New("boom")
		})

		_, err := processor.WrapWithLogging(failing, logger, "").Process(context.Background(), nil)
		if err == nil {
			t.Fatal("expected error")
		}
		msgs := logger.getMessages()
		if len(msgs) != 1 || !strings.HasPrefix(msgs[0], "ERROR") || !strings.Contains(msgs[0], "boom") {
			t.Errorf("unexpected messages: %v", msgs)
		}
	})

	t.Run("nil logger and processor", func(t *testing.T) {
		items := []*batch.Item{{Data: 1}}
		result, err := (&processor.LoggingProcessor{}).Process(context.Background(), items)
		if err != nil || len(result) != 1 {
			t.Errorf("got %v, %v", result, err)
		}

		result, err = processor.WrapWithLogging(processor.NewKeepFilter(), nil, "").Process(context.Background(), items)
		if err != nil || len(result) != 1 {
			t.Errorf("got %v, %v", result, err)
		}
	})
}

func TestStatsProcessor(t *testing.T) {
	t.Run("counts filtered items", func(t *testing.T) {
		stats := batch.NewBasicStatsCollector()
		drop := parsed(t, "cd", 30)
		drop.Keep = false
		items := []*batch.Item{
			{Data: parsed(t, "ab", 30)},
			{Data: drop},
			{Data: "x", Error: errors.New("bad")},
		}

		result, err := processor.WrapWithStats(processor.NewKeepFilter(), stats, true).Process(context.Background(), items)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result) != 2 {
			t.Fatalf("got %d items, want 2", len(result))
		}

		s := stats.GetStats()
		if s.ItemsFiltered != 1 || s.ItemErrors != 1 || s.ItemsProcessed != 1 {
			t.Errorf("filtered %d errors %d processed %d, want 1 each", s.ItemsFiltered, s.ItemErrors, s.ItemsProcessed)
		}
		if s.BatchesStarted != 1 || s.BatchesCompleted != 1 {
			t.Errorf("batches %d/%d, want 1/1", s.BatchesStarted, s.BatchesCompleted)
		}
	})

	t.Run("processor error", func(t *testing.T) {
		stats := batch.NewBasicStatsCollector()
		failing := processorFunc(func(ctx context.Context, items []*batch.Item) ([]*batch.Item, error) {
			return items, errors.New("boom")
		})

		if _, err := processor.WrapWithStats(failing, stats, false).Process(context.Background(), nil); err == nil {
			t.Fatal("expected error")
		}
		if got := stats.GetStats().ProcessorErrors; got != 1 {
			t.Errorf("ProcessorErrors = %d, want 1", got)
		}
	})

	t.Run("nil stats", func(t *testing.T) {
		items := []*batch.Item{{Data: 1}}
		result, err := processor.WrapWithStats(processor.NewKeepFilter(), nil, true).Process(context.Background(), items)
		if err != nil || len(result) != 1 {
			t.Errorf("got %v, %v", result, err)
		}
	})
}
