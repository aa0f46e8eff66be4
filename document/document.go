// Package document loads the source document into pages.
package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
)

// pageSeparator is placed between pages when they are joined.
const pageSeparator = "\n\n"

type Page struct {
	// Number is 1-based for paged formats such as PDF, and 0 otherwise.
	Number int
	Text   string
}

type Document struct {
	Path  string
	Pages []Page
}

// Load reads the file at path. PDF files produce one page per PDF page,
// HTML files are reduced to their text, and anything else is read as text.
func Load(ctx context.Context, path string) (doc Document, err error) {
	f, err := os.Open(path)
	if err != nil {
		return doc, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	var docs []schema.Document
	paged := false
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		stat, err := f.Stat()
		if err != nil {
			return doc, fmt.Errorf("failed to stat document: %w", err)
		}
		docs, err = documentloaders.NewPDF(f, stat.Size()).Load(ctx)
		if err != nil {
			return doc, fmt.Errorf("failed to load PDF: %w", err)
		}
		paged = true
	case ".html", ".htm":
		docs, err = documentloaders.NewHTML(f).Load(ctx)
		if err != nil {
			return doc, fmt.Errorf("failed to load HTML: %w", err)
		}
	default:
		docs, err = documentloaders.NewText(f).Load(ctx)
		if err != nil {
			return doc, fmt.Errorf("failed to load text: %w", err)
		}
	}

	doc.Path = path
	doc.Pages = make([]Page, len(docs))
	for i, d := range docs {
		doc.Pages[i].Text = d.PageContent
		if paged {
			doc.Pages[i].Number = i + 1
		}
	}
	return doc, nil
}

// Text joins the pages, separated by a blank line.
func (d Document) Text() string {
	var sb strings.Builder
	for i, p := range d.Pages {
		if i > 0 {
			sb.WriteString(pageSeparator)
		}
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// PageAt returns the number of the page containing the rune at offset in Text.
func (d Document) PageAt(offset int) int {
	var start int
	page := 0
	for _, p := range d.Pages {
		if start > offset {
			break
		}
		page = p.Number
		start += len([]rune(p.Text)) + len([]rune(pageSeparator))
	}
	return page
}
