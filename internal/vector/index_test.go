package vector

import (
	"math"
	"path/filepath"
	"testing"
)

func TestFlatIndex_AddSearch(t *testing.T) {
	idx, err := NewFlatIndex(3)
	if err != nil {
		t.Fatal(err)
	}

	vecs := [][]float32{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 1, 0},
	}
	if err := idx.Add(vecs); err != nil {
		t.Fatal(err)
	}
	if idx.Size() != 3 {
		t.Errorf("Size=%d", idx.Size())
	}

	hits, err := idx.Search([]float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Ordinal != 0 {
		t.Errorf("closest hit should be ordinal 0, got %d", hits[0].Ordinal)
	}
	if hits[0].Distance != 0 {
		t.Errorf("identical vector should have distance 0, got %f", hits[0].Distance)
	}
	if hits[1].Ordinal != 1 {
		t.Errorf("second hit should be ordinal 1, got %d", hits[1].Ordinal)
	}
}

func TestFlatIndex_SearchOrdering(t *testing.T) {
	idx, _ := NewFlatIndex(2)
	_ = idx.Add([][]float32{{0, 5}, {1, 0}, {0, 1}, {2, 0}})

	hits, err := idx.Search([]float32{1, 0}, 4)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Distance < hits[i-1].Distance {
			t.Errorf("hits out of order at %d: %f < %f", i, hits[i].Distance, hits[i-1].Distance)
		}
	}
}

func TestFlatIndex_DimensionMismatch(t *testing.T) {
	idx, _ := NewFlatIndex(3)
	if err := idx.Add([][]float32{{1, 0}}); err == nil {
		t.Error("expected error adding 2-dim vector to 3-dim index")
	}
	if _, err := idx.Search([]float32{1, 0}, 1); err == nil {
		t.Error("expected error searching with 2-dim query")
	}
}

func TestFlatIndex_EmptySearch(t *testing.T) {
	idx, _ := NewFlatIndex(2)
	hits, err := idx.Search([]float32{1, 0}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits from empty index, got %d", len(hits))
	}
}

func TestFlatIndex_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.index")

	idx, _ := NewFlatIndex(2)
	vecs := [][]float32{{1, 0}, {0.5, 0.5}, {0, 1}}
	if err := idx.Add(vecs); err != nil {
		t.Fatal(err)
	}
	if err := idx.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, _ := NewFlatIndex(2)
	if err := loaded.Load(path); err != nil {
		t.Fatal(err)
	}
	if loaded.Size() != 3 {
		t.Fatalf("expected 3 vectors after load, got %d", loaded.Size())
	}

	orig, _ := idx.Search([]float32{1, 0}, 3)
	round, _ := loaded.Search([]float32{1, 0}, 3)
	for i := range orig {
		if orig[i].Ordinal != round[i].Ordinal {
			t.Errorf("hit %d: ordinal %d != %d", i, orig[i].Ordinal, round[i].Ordinal)
		}
		if math.Abs(orig[i].Distance-round[i].Distance) > 1e-9 {
			t.Errorf("hit %d: distance %f != %f", i, orig[i].Distance, round[i].Distance)
		}
	}
}

func TestFlatIndex_LoadMissingFile(t *testing.T) {
	idx, _ := NewFlatIndex(2)
	if err := idx.Load(filepath.Join(t.TempDir(), "missing.index")); err == nil {
		t.Error("expected error loading missing index file")
	}
}

func TestFlatIndex_LoadDimensionMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.index")
	idx, _ := NewFlatIndex(4)
	_ = idx.Add([][]float32{{1, 2, 3, 4}})
	if err := idx.Save(path); err != nil {
		t.Fatal(err)
	}

	other, _ := NewFlatIndex(2)
	if err := other.Load(path); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		want     float64
	}{
		{"zero distance", 0, 1.0},
		{"unit distance", 1, 0.5},
		{"large distance", 99, 0.01},
		{"infinite distance", math.Inf(1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.distance)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity(%f)=%f, want %f", tt.distance, got, tt.want)
			}
		})
	}
}

func TestL2Distance(t *testing.T) {
	if d := L2Distance([]float32{0, 0}, []float32{3, 4}); math.Abs(d-5) > 1e-9 {
		t.Errorf("L2Distance=%f, want 5", d)
	}
	if d := L2Distance([]float32{1}, []float32{1, 2}); !math.IsInf(d, 1) {
		t.Errorf("mismatched lengths should give +Inf, got %f", d)
	}
}
