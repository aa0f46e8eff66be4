// Package index holds the embedded segments of the document in memory and
// answers nearest-neighbour queries over them.
package index

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"time"

	"github.com/a-h/policychat/rag"
	"github.com/philippgille/chromem-go"
	"github.com/tmc/langchaingo/embeddings"
)

const collectionName = "segments"

// Index is read-only once built.
type Index struct {
	collection *chromem.Collection
	segments   []rag.Segment
	dimension  int
	builtAt    time.Time
}

type Result struct {
	Segment rag.Segment
	// Similarity is the cosine similarity to the query, higher is closer.
	Similarity float32
}

// Build embeds every segment and returns the index. Either all segments are
// indexed or an error wrapping rag.ErrIndexing is returned.
func Build(ctx context.Context, segments []rag.Segment, embedder embeddings.Embedder) (*Index, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: the document produced no segments", rag.ErrIndexing)
	}

	texts := make([]string, len(segments))
	for i, s := range segments {
		texts[i] = s.Text
	}
	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to embed segments: %w", rag.ErrIndexing, err)
	}
	if len(vectors) != len(segments) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", rag.ErrIndexing, len(segments), len(vectors))
	}
	dimension := len(vectors[0])
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: segment %d has an empty embedding", rag.ErrIndexing, i)
		}
		if len(v) != dimension {
			return nil, fmt.Errorf("%w: segment %d has dimension %d, expected %d", rag.ErrIndexing, i, len(v), dimension)
		}
	}

	db := chromem.NewDB()
	embed := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.EmbedQuery(ctx, text)
	}
	collection, err := db.CreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create collection: %w", rag.ErrIndexing, err)
	}
	docs := make([]chromem.Document, len(segments))
	for i, s := range segments {
		docs[i] = chromem.Document{
			ID: strconv.Itoa(i),
			Metadata: map[string]string{
				"page":   strconv.Itoa(s.Page),
				"offset": strconv.Itoa(s.Offset),
			},
			Embedding: vectors[i],
			Content:   s.Text,
		}
	}
	if err = collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("%w: failed to add segments: %w", rag.ErrIndexing, err)
	}

	return &Index{
		collection: collection,
		segments:   slices.Clone(segments),
		dimension:  dimension,
		builtAt:    time.Now(),
	}, nil
}

// Len returns the number of indexed segments.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.segments)
}

func (idx *Index) Dimension() int {
	if idx == nil {
		return 0
	}
	return idx.dimension
}

func (idx *Index) BuiltAt() time.Time {
	if idx == nil {
		return time.Time{}
	}
	return idx.builtAt
}

// Query returns the k segments most similar to vector, most similar first.
// Segments with equal similarity are returned in document order. Fewer than
// k results are returned only when the index holds fewer than k segments,
// and a nil index returns no results.
func (idx *Index) Query(ctx context.Context, vector []float32, k int) ([]Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", rag.ErrConfiguration, k)
	}
	if idx.Len() == 0 {
		return nil, nil
	}
	if len(vector) != idx.dimension {
		return nil, fmt.Errorf("query vector has dimension %d, expected %d", len(vector), idx.dimension)
	}

	// Rank every segment so that ties at the k boundary are resolved by
	// document order rather than by the collection's internal order.
	matches, err := idx.collection.QueryEmbedding(ctx, vector, idx.collection.Count(), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}
	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		i, err := strconv.Atoi(m.ID)
		if err != nil || i < 0 || i >= len(idx.segments) {
			return nil, fmt.Errorf("collection returned unknown segment %q", m.ID)
		}
		results = append(results, Result{
			Segment:    idx.segments[i],
			Similarity: m.Similarity,
		})
	}
	slices.SortStableFunc(results, func(a, b Result) int {
		if a.Similarity != b.Similarity {
			if a.Similarity > b.Similarity {
				return -1
			}
			return 1
		}
		return a.Segment.Index - b.Segment.Index
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}
