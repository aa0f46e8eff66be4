package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/a-h/policychat/chunker"
	"github.com/a-h/policychat/document"
	"gopkg.in/yaml.v3"
)

type SegmentsCommand struct {
	Document     string `arg:"" optional:"" help:"The document to split." default:"policy.pdf"`
	ChunkSize    int    `help:"The maximum number of characters in a segment." env:"CHUNK_SIZE" default:"1500"`
	ChunkOverlap int    `help:"The number of characters shared by consecutive segments." env:"CHUNK_OVERLAP" default:"300"`
}

type segmentOutput struct {
	Index  int    `yaml:"index"`
	Page   int    `yaml:"page,omitempty"`
	Offset int    `yaml:"offset"`
	Length int    `yaml:"length"`
	Text   string `yaml:"text"`
}

// Run prints the segments without embedding them, to check chunking
// settings against a document.
func (c SegmentsCommand) Run(ctx context.Context) (err error) {
	return c.write(ctx, os.Stdout)
}

func (c SegmentsCommand) write(ctx context.Context, w io.Writer) (err error) {
	chunks, err := chunker.New(c.ChunkSize, c.ChunkOverlap)
	if err != nil {
		return err
	}
	doc, err := document.Load(ctx, c.Document)
	if err != nil {
		return err
	}
	segments := chunks.Split(doc.Text())
	output := make([]segmentOutput, len(segments))
	for i, s := range segments {
		output[i] = segmentOutput{
			Index:  s.Index,
			Page:   doc.PageAt(s.Offset),
			Offset: s.Offset,
			Length: len([]rune(s.Text)),
			Text:   s.Text,
		}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err = enc.Encode(output); err != nil {
		return fmt.Errorf("failed to encode segments: %w", err)
	}
	return enc.Close()
}
