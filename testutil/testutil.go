package testutil

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/hupe1980/docarray/document"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float32 in a loop).
func (r *RNG) FillUniform(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float32()
	}
}

// UniformVectors generates random vectors with values in range [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.Float32()
		}
		vectors[i] = vec
	}

	return vectors
}

var words = []string{"hello", "world", "doc", "array", "offset", "chunk", "match", "vector"}

// Text returns n random words joined by spaces.
func (r *RNG) Text(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := ""
	for i := range n {
		if i > 0 {
			s += " "
		}
		s += words[r.rand.Intn(len(words))]
	}
	return s
}

// Docs generates num documents with ids "d0".."d<num-1>", random text, a
// "i" tag holding the position as float64 and dim-dimensional embeddings.
// With dim == 0 no embedding is set.
func (r *RNG) Docs(num, dim int) []*document.Document {
	var vecs [][]float32
	if dim > 0 {
		vecs = r.UniformVectors(num, dim)
	}
	docs := make([]*document.Document, num)
	for i := range num {
		d := document.New(
			document.WithID(fmt.Sprintf("d%d", i)),
			document.WithText(r.Text(3)),
			document.WithTags(map[string]any{"i": float64(i)}),
		)
		if vecs != nil {
			d.Embedding = vecs[i]
		}
		docs[i] = d
	}
	return docs
}

// NestedDocs generates num root documents, each with chunks chunk
// documents whose ids are "<root>/c<j>".
func (r *RNG) NestedDocs(num, chunks, dim int) []*document.Document {
	docs := r.Docs(num, dim)
	for _, d := range docs {
		for j := range chunks {
			c := document.New(
				document.WithID(fmt.Sprintf("%s/c%d", d.ID, j)),
				document.WithText(r.Text(2)),
			)
			if dim > 0 {
				c.Embedding = make([]float32, dim)
				r.FillUniform(c.Embedding)
			}
			document.WithChunks(c)(d)
		}
	}
	return docs
}

// IDs returns the ids of docs in order.
func IDs(docs []*document.Document) []string {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids
}
