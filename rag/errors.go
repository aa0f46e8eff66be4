// Package rag holds the types and errors shared by the retrieval pipeline.
package rag

import "errors"

var (
	// ErrConfiguration is returned for invalid settings, such as chunk
	// overlap that is not smaller than the chunk size, or a missing API key.
	ErrConfiguration = errors.New("configuration error")

	// ErrIndexing is returned when the source document cannot be loaded,
	// chunked or embedded into an index.
	ErrIndexing = errors.New("indexing error")

	// ErrRetrievalUnavailable is returned when there is no index to retrieve from.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrGeneration is returned when the embedding or language model call
	// fails or times out while answering a question.
	ErrGeneration = errors.New("generation error")

	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("validation error")
)
