package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type fakeProvider struct {
	failTexts map[string]int // remaining failures per text
	calls     int
}

func (f *fakeProvider) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if remaining, ok := f.failTexts[text]; ok && remaining > 0 {
		f.failTexts[text] = remaining - 1
		return nil, errors.New("provider unavailable")
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeProvider) Dimensions() int { return 3 }

func TestEmbedBatchProgress(t *testing.T) {
	provider := &fakeProvider{}
	batcher := NewBatchEmbedder(provider, 1000)

	texts := []string{"a", "b", "c"}
	var progress []string
	vectors, errs := batcher.EmbedBatch(context.Background(), texts, func(done, total int) {
		progress = append(progress, fmt.Sprintf("%d/%d", done, total))
	})

	for i, err := range errs {
		if err != nil {
			t.Errorf("item %d: unexpected error %v", i, err)
		}
		if vectors[i] == nil {
			t.Errorf("item %d: missing vector", i)
		}
	}

	want := []string{"1/3", "2/3", "3/3"}
	if len(progress) != len(want) {
		t.Fatalf("progress calls = %d, want %d", len(progress), len(want))
	}
	for i := range want {
		if progress[i] != want[i] {
			t.Errorf("progress[%d] = %s, want %s", i, progress[i], want[i])
		}
	}
}

func TestEmbedBatchRetriesOnce(t *testing.T) {
	provider := &fakeProvider{failTexts: map[string]int{"flaky": 1}}
	batcher := NewBatchEmbedder(provider, 1000)

	vectors, errs := batcher.EmbedBatch(context.Background(), []string{"flaky"}, nil)
	if errs[0] != nil {
		t.Fatalf("expected retry to succeed, got %v", errs[0])
	}
	if vectors[0] == nil {
		t.Fatal("expected vector after retry")
	}
}

func TestEmbedBatchIsolatesFailures(t *testing.T) {
	provider := &fakeProvider{failTexts: map[string]int{"bad": 99}}
	batcher := NewBatchEmbedder(provider, 1000)

	texts := []string{"good1", "bad", "good2"}
	vectors, errs := batcher.EmbedBatch(context.Background(), texts, nil)

	if errs[0] != nil || errs[2] != nil {
		t.Errorf("healthy items should not fail: %v, %v", errs[0], errs[2])
	}
	if errs[1] == nil {
		t.Error("expected item 1 to record an error")
	}
	if vectors[1] != nil {
		t.Error("failed item must not carry a vector")
	}
	if vectors[0] == nil || vectors[2] == nil {
		t.Error("healthy items must carry vectors")
	}
}

func TestEmbedAllAborts(t *testing.T) {
	provider := &fakeProvider{failTexts: map[string]int{"bad": 99}}
	batcher := NewBatchEmbedder(provider, 1000)

	_, err := batcher.EmbedAll(context.Background(), []string{"good", "bad"}, nil)
	if err == nil {
		t.Fatal("expected EmbedAll to surface the item error")
	}
}
