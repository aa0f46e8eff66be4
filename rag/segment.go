package rag

// Segment is a contiguous span of the source document.
type Segment struct {
	// Index is the position of the segment in document order.
	Index int
	// Offset is the rune offset of the first character of Text in the document.
	Offset int
	// Page is the 1-based source page the segment starts on, or 0 if the
	// source has no pages.
	Page int
	Text string
}
