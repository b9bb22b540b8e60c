// Package vector provides an append-only, exact-distance flat vector index.
package vector

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FlatIndex is an in-memory flat index over fixed-dimension float32 vectors.
// Search is an exact O(n·d) scan by squared L2 distance. Vectors are addressed
// by ordinal append position; there is no deletion (rebuild the index instead).
type FlatIndex struct {
	dimensions int
	vectors    [][]float32
	mu         sync.RWMutex
}

// Hit is a single index scan result.
type Hit struct {
	Ordinal  int
	Distance float64
}

// NewFlatIndex creates a flat index with the given dimension.
func NewFlatIndex(dimensions int) (*FlatIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &FlatIndex{
		dimensions: dimensions,
		vectors:    make([][]float32, 0),
	}, nil
}

// Dimensions returns the vector dimension.
func (x *FlatIndex) Dimensions() int {
	return x.dimensions
}

// Add appends vectors to the index in order.
func (x *FlatIndex) Add(vectors [][]float32) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, v := range vectors {
		if len(v) != x.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(v), x.dimensions)
		}
		vec := make([]float32, x.dimensions)
		copy(vec, v)
		x.vectors = append(x.vectors, vec)
	}
	return nil
}

// Search returns the k nearest vectors by L2 distance, closest first.
// Ties keep append order (stable sort), so repeated scans are deterministic.
func (x *FlatIndex) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != x.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), x.dimensions)
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	if k <= 0 || len(x.vectors) == 0 {
		return nil, nil
	}
	hits := make([]Hit, len(x.vectors))
	for i, vec := range x.vectors {
		hits[i] = Hit{Ordinal: i, Distance: L2Distance(query, vec)}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Size returns the number of vectors in the index.
func (x *FlatIndex) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.vectors)
}

// Reset drops all vectors. Used by full rebuilds and snapshot loads.
func (x *FlatIndex) Reset() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.vectors = x.vectors[:0]
}

// Save persists the index to path. Directory is created if needed.
// Format: dimension (4), n (4), then n raw little-endian float32 vectors.
func (x *FlatIndex) Save(path string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, uint32(x.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(x.vectors))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for _, vec := range x.vectors {
		if _, err := f.Write(float32SliceToBytes(vec)); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// Load reads the index from path and replaces the in-memory contents.
// Dimensions must match the index's own. A missing file is an error: snapshot
// loads require both halves to be present.
func (x *FlatIndex) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()
	var dim, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return fmt.Errorf("read dimensions: %w", err)
	}
	if int(dim) != x.dimensions {
		return fmt.Errorf("dimension mismatch: file has %d, index expects %d", dim, x.dimensions)
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("read count: %w", err)
	}
	vectors := make([][]float32, 0, n)
	buf := make([]byte, x.dimensions*4)
	for i := uint32(0); i < n; i++ {
		if _, err := readFull(f, buf); err != nil {
			return fmt.Errorf("read vector %d: %w", i, err)
		}
		vectors = append(vectors, bytesToFloat32Slice(buf))
	}
	x.mu.Lock()
	x.vectors = vectors
	x.mu.Unlock()
	return nil
}

func readFull(f *os.File, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := f.Read(buf[total:])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
