// Package inbox scans payment slips dropped into a directory.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zombor/boleto-reader/internal/slip"
)

// DefaultSettle is how long a file must stay unchanged before it is read
const DefaultSettle = time.Second

// Processor scans and records one document
type Processor interface {
	ProcessDocument(ctx context.Context, filename string, data []byte, contentType, password string) (*slip.Slip, error)
}

// Watcher feeds new files in a directory to a Processor
type Watcher struct {
	dir       string
	processor Processor
	settle    time.Duration
	fsw       *fsnotify.Watcher
}

// NewWatcher starts watching dir. Files are processed once no write has been
// seen for settle.
func NewWatcher(dir string, processor Processor, settle time.Duration) (*Watcher, error) {
	if settle <= 0 {
		settle = DefaultSettle
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating inbox directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	return &Watcher{dir: dir, processor: processor, settle: settle, fsw: fsw}, nil
}

// Run handles events until ctx is cancelled or the watcher is closed
func (w *Watcher) Run(ctx context.Context) error {
	ready := make(chan string)
	done := make(chan struct{})
	pending := make(map[string]*time.Timer)
	defer func() {
		close(done)
		for _, t := range pending {
			t.Stop()
		}
	}()

	slog.Info("Watching inbox", "dir", w.dir)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !supported(ev.Name) {
				continue
			}
			// Restart the settle timer on every write so half-copied files are not read
			if t, ok := pending[ev.Name]; ok {
				t.Reset(w.settle)
				continue
			}
			path := ev.Name
			pending[path] = time.AfterFunc(w.settle, func() {
				select {
				case ready <- path:
				case <-done:
				}
			})

		case path := <-ready:
			// A timer reset after firing can deliver the same path twice
			if _, ok := pending[path]; !ok {
				continue
			}
			delete(pending, path)
			w.process(ctx, path)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Inbox watcher error", "error", err)
		}
	}
}

func (w *Watcher) process(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("Failed to read inbox file", "path", path, "error", err)
		return
	}

	name := filepath.Base(path)
	result, err := w.processor.ProcessDocument(ctx, name, data, slip.ContentTypeFor(name), "")
	if err != nil {
		slog.Error("Failed to process inbox file", "path", path, "error", err)
		return
	}
	if result.Found {
		slog.Info("Inbox slip read", "file", name, "kind", result.Kind, "line", result.Display)
	} else {
		slog.Info("Inbox file has no digit line", "file", name, "pages", result.Pages)
	}
}

// Close stops watching the directory
func (w *Watcher) Close() error {
	if err := w.fsw.Close(); err != nil && !errors.Is(err, fsnotify.ErrClosed) {
		return err
	}
	return nil
}

func supported(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	return slip.ContentTypeFor(path) != "application/octet-stream"
}
