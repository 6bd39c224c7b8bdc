// Package watch reports changes to the recipe files in a content root.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/opskrifter/internal/content"
	"github.com/starford/opskrifter/internal/sse"
)

const settleDelay = 100 * time.Millisecond

// Callback is called after a content file changes.
// kind is one of sse.KindCreated, sse.KindUpdated, sse.KindDeleted.
type Callback func(kind, slug string)

// Watch starts an fsnotify watcher on root and reports changes to content
// files until ctx is cancelled. Editors often emit several write events for
// one save; writes are settled after a short quiet period and a change is
// only reported when the file's checksum differs from the last one seen.
func Watch(ctx context.Context, root string, logger *slog.Logger, cb Callback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return fmt.Errorf("watch: add %s: %w", root, err)
	}

	sums := initialChecksums(root, logger)
	logger.Info("watcher: started", slog.String("root", root), slog.Int("files", len(sums)))

	emit := func(kind, slug string) {
		logger.Debug("watcher: change", slog.String("slug", slug), slog.String("op", kind))
		if cb != nil {
			cb(kind, slug)
		}
	}

	// Writes are collected and settled after a short quiet period so a
	// file is read once its writer is done with it.
	pending := make(map[string]string) // slug -> absolute path
	var settleTimer *time.Timer
	var settleCh <-chan time.Time

	scheduleSettle := func() {
		if settleTimer == nil {
			settleTimer = time.NewTimer(settleDelay)
			settleCh = settleTimer.C
		} else {
			settleTimer.Reset(settleDelay)
		}
	}

	settle := func() {
		for slug, path := range pending {
			delete(pending, slug)
			data, readErr := os.ReadFile(path)
			if readErr != nil {
				if !errors.Is(readErr, fs.ErrNotExist) {
					logger.Warn("watcher: read failed", slog.String("slug", slug), slog.String("error", readErr.Error()))
				}
				continue
			}
			sum := checksum(data)
			prev, known := sums[slug]
			if known && prev == sum {
				continue
			}
			sums[slug] = sum
			if known {
				emit(sse.KindUpdated, slug)
			} else {
				emit(sse.KindCreated, slug)
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			if settleTimer != nil {
				settleTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-settleCh:
			settle()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			name := filepath.Base(ev.Name)
			if !content.IsContentName(name) {
				continue
			}
			slug := content.SlugFromFilename(name)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				pending[slug] = ev.Name
				scheduleSettle()

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// Rename fires on the old path only; the new name arrives
				// as its own Create event.
				delete(pending, slug)
				if _, known := sums[slug]; !known {
					continue
				}
				delete(sums, slug)
				emit(sse.KindDeleted, slug)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// initialChecksums records the current content so the first write of an
// unchanged file is not reported.
func initialChecksums(root string, logger *slog.Logger) map[string]string {
	sums := make(map[string]string)
	entries, err := os.ReadDir(root)
	if err != nil {
		logger.Warn("watcher: initial scan failed", slog.String("error", err.Error()))
		return sums
	}
	for _, e := range entries {
		if e.IsDir() || !content.IsContentName(e.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(root, e.Name()))
		if err != nil {
			continue
		}
		sums[content.SlugFromFilename(e.Name())] = checksum(data)
	}
	return sums
}

func checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
