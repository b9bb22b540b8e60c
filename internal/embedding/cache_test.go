package embedding

import (
	"context"
	"testing"
)

func TestCache_GetSet(t *testing.T) {
	c := NewCache(2)
	if _, ok := c.Get("a"); ok {
		t.Error("empty cache should miss")
	}
	c.Set("a", []float32{1})
	if v, ok := c.Get("a"); !ok || v[0] != 1 {
		t.Error("expected cached value for a")
	}
}

func TestCache_Eviction(t *testing.T) {
	c := NewCache(2)
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	c.Set("c", []float32{3})
	if _, ok := c.Get("a"); ok {
		t.Error("a should have been evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("b should still be cached")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should still be cached")
	}
	if c.Len() != 2 {
		t.Errorf("Len=%d, want 2", c.Len())
	}
}

func TestCache_LRUOrder(t *testing.T) {
	c := NewCache(2)
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	c.Get("a") // touch a so b becomes the oldest
	c.Set("c", []float32{3})
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted after a was touched")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should still be cached")
	}
}

type countingEmbedder struct {
	*MockEmbedder
	calls int
}

func (e *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	return e.MockEmbedder.Embed(ctx, text)
}

func TestCachedEmbedder(t *testing.T) {
	inner := &countingEmbedder{MockEmbedder: NewMockEmbedder(8)}
	cached := NewCachedEmbedder(inner, 10)
	ctx := context.Background()

	v1, err := cached.Embed(ctx, "backend developer")
	if err != nil {
		t.Fatal(err)
	}
	v2, err := cached.Embed(ctx, "backend developer")
	if err != nil {
		t.Fatal(err)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.calls)
	}
	for i := range v1 {
		if v1[i] != v2[i] {
			t.Fatal("cached embedding differs from original")
		}
	}
}

func TestCachedEmbedder_BatchMixesHitsAndMisses(t *testing.T) {
	cached := NewCachedEmbedder(NewMockEmbedder(8), 10)
	ctx := context.Background()

	if _, err := cached.Embed(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	vecs, err := cached.EmbedBatch(ctx, []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(vecs))
	}
	direct, _ := NewMockEmbedder(8).Embed(ctx, "b")
	for i := range direct {
		if vecs[1][i] != direct[i] {
			t.Fatal("batch miss embedding differs from direct embedding")
		}
	}
}
