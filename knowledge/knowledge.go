// Package knowledge owns the index built from the policy document and
// replaces it when the document changes.
package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/a-h/policychat/chunker"
	"github.com/a-h/policychat/document"
	"github.com/a-h/policychat/index"
	"github.com/a-h/policychat/rag"
	"github.com/fsnotify/fsnotify"
	"github.com/tmc/langchaingo/embeddings"
)

const DefaultDebounce = 500 * time.Millisecond

func New(log *slog.Logger, path string, c chunker.Chunker, embedder embeddings.Embedder) *Base {
	return &Base{
		Log:      log,
		Debounce: DefaultDebounce,
		path:     path,
		chunker:  c,
		embedder: embedder,
	}
}

type Base struct {
	Log *slog.Logger
	// Debounce is how long Watch waits for changes to settle before rebuilding.
	Debounce time.Duration

	path     string
	chunker  chunker.Chunker
	embedder embeddings.Embedder

	// building serialises Load.
	building sync.Mutex
	current  atomic.Pointer[index.Index]
}

// Index returns the current index, or nil if none has been built.
func (b *Base) Index() *index.Index {
	return b.current.Load()
}

// Load builds a new index from the document and swaps it in. On failure the
// previous index stays in place and the error wraps rag.ErrIndexing.
func (b *Base) Load(ctx context.Context) error {
	b.building.Lock()
	defer b.building.Unlock()

	start := time.Now()
	doc, err := document.Load(ctx, b.path)
	if err != nil {
		return fmt.Errorf("%w: %w", rag.ErrIndexing, err)
	}
	segments := b.chunker.Split(doc.Text())
	for i := range segments {
		segments[i].Page = doc.PageAt(segments[i].Offset)
	}
	idx, err := index.Build(ctx, segments, b.embedder)
	if err != nil {
		return err
	}
	b.current.Store(idx)
	b.Log.Info("knowledge base loaded",
		slog.String("path", b.path),
		slog.Int("pages", len(doc.Pages)),
		slog.Int("segments", idx.Len()),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// Watch rebuilds the index whenever the document is written, created or
// renamed, until ctx is done. Failed rebuilds are logged and the previous
// index is kept.
func (b *Base) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create document watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(b.path)); err != nil {
		return fmt.Errorf("failed to watch document directory: %w", err)
	}

	var reload <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(b.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			b.Log.Debug("document changed", slog.String("op", event.Op.String()))
			reload = time.After(b.Debounce)
		case <-reload:
			reload = nil
			if err := b.Load(ctx); err != nil {
				b.Log.Error("failed to reload knowledge base", slog.Any("error", err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			b.Log.Warn("document watcher error", slog.Any("error", err))
		}
	}
}
