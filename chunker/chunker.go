// Package chunker splits document text into overlapping segments.
package chunker

import (
	"fmt"
	"strings"

	"github.com/a-h/policychat/rag"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	DefaultSize    = 1500
	DefaultOverlap = 300
)

// DefaultSeparators are tried in order when choosing where to end a segment:
// paragraph, line, word, then sentence.
var DefaultSeparators = []string{"\n\n", "\n", " ", "."}

type Option func(*Chunker)

// WithSeparators overrides DefaultSeparators.
func WithSeparators(separators ...string) Option {
	return func(c *Chunker) {
		c.separators = separators
	}
}

// New creates a Chunker producing segments of at most size runes, where
// consecutive segments share exactly overlap runes.
func New(size, overlap int, opts ...Option) (c Chunker, err error) {
	if size <= 0 {
		return c, fmt.Errorf("%w: chunk size must be positive, got %d", rag.ErrConfiguration, size)
	}
	if overlap < 0 {
		return c, fmt.Errorf("%w: chunk overlap must not be negative, got %d", rag.ErrConfiguration, overlap)
	}
	if overlap >= size {
		return c, fmt.Errorf("%w: chunk overlap %d must be less than chunk size %d", rag.ErrConfiguration, overlap, size)
	}
	c = Chunker{
		size:       size,
		overlap:    overlap,
		separators: DefaultSeparators,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c, nil
}

type Chunker struct {
	size       int
	overlap    int
	separators []string
}

func (c Chunker) Size() int    { return c.size }
func (c Chunker) Overlap() int { return c.overlap }

// Split divides text into segments covering all of it. Whitespace-only text
// produces no segments.
func (c Chunker) Split(text string) (segments []rag.Segment) {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	runes := []rune(text)
	var start int
	for {
		end := start + c.size
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = c.cut(runes, start, end)
		}
		segments = append(segments, rag.Segment{
			Index:  len(segments),
			Offset: start,
			Text:   string(runes[start:end]),
		})
		if end == len(runes) {
			return segments
		}
		start = end - c.overlap
	}
}

// cut returns the end of the segment that starts at start and may not pass
// limit. The end is placed just after the last occurrence of the most
// preferred separator found. Ends at or before start+overlap are rejected,
// since the next segment would not move forward.
func (c Chunker) cut(runes []rune, start, limit int) int {
	lowest := start + c.overlap + 1
	for _, sep := range c.separators {
		sr := []rune(sep)
		if len(sr) == 0 {
			continue
		}
		for end := limit; end >= lowest && end-len(sr) >= start; end-- {
			if hasSuffix(runes[start:end], sr) {
				return end
			}
		}
	}
	return limit
}

func hasSuffix(s, suffix []rune) bool {
	if len(suffix) > len(s) {
		return false
	}
	offset := len(s) - len(suffix)
	for i, r := range suffix {
		if s[offset+i] != r {
			return false
		}
	}
	return true
}

// SplitText implements textsplitter.TextSplitter.
func (c Chunker) SplitText(text string) ([]string, error) {
	segments := c.Split(text)
	texts := make([]string, len(segments))
	for i, s := range segments {
		texts[i] = s.Text
	}
	return texts, nil
}

var _ textsplitter.TextSplitter = Chunker{}
