// Package source supplies the gallery with media items from a
// directory tree: scan to a MediaItem list, path to URL resolution,
// move-to-trash, and an fsnotify watcher that triggers refresh when
// files change.
package source

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"photogrid/internal/logging"
	"photogrid/internal/mediatypes"
	"photogrid/internal/metrics"
)

const (
	// TrashDir is the hidden directory deleted items move into.
	// Dot-prefixed entries are skipped by scans, so trashed items
	// disappear from the collection without leaving the disk.
	TrashDir = ".trash"

	// URLPrefix is prepended to escaped item paths when resolving
	// content URLs.
	URLPrefix = "/media/"

	// watcher events are coalesced so a burst of writes triggers a
	// single refresh
	watchDebounce = 500 * time.Millisecond
)

// Source scans a media directory and watches it for changes.
type Source struct {
	mediaDir string

	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	stopOnce sync.Once
	onChange func()
}

// New returns a Source rooted at mediaDir.
func New(mediaDir string) *Source {
	return &Source{
		mediaDir: mediaDir,
		stopChan: make(chan struct{}),
	}
}

// List walks the media directory and returns one Item per media file.
// Hidden entries (dot-prefixed files and directories, including the
// trash) are skipped. Order is walk order; callers sort.
func (s *Source) List() ([]mediatypes.Item, error) {
	start := time.Now()
	var items []mediatypes.Item

	err := filepath.WalkDir(s.mediaDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Warn("Error accessing path %s: %v", p, err)
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && p != s.mediaDir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(d.Name()))
		kind := mediatypes.KindForExt(ext)
		if kind == mediatypes.KindOther {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logging.Warn("Error reading info for %s: %v", p, err)
			return nil
		}
		relPath, err := filepath.Rel(s.mediaDir, p)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		items = append(items, mediatypes.Item{
			Path:       relPath,
			Name:       d.Name(),
			URL:        s.ResolveURL(relPath),
			ModTime:    info.ModTime(),
			CreateTime: createTime(info),
			Size:       info.Size(),
			Kind:       kind,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.mediaDir, err)
	}

	metrics.SourceScansTotal.Inc()
	metrics.SourceItems.Set(float64(len(items)))
	metrics.SourceScanDuration.Set(time.Since(start).Seconds())
	logging.Debug("Scanned %d items in %v", len(items), time.Since(start))
	return items, nil
}

// ResolveURL maps a logical item path to its loadable content URL.
func (s *Source) ResolveURL(itemPath string) string {
	escaped := url.PathEscape(itemPath)
	// keep path separators readable in the URL
	escaped = strings.ReplaceAll(escaped, "%2F", "/")
	return URLPrefix + escaped
}

// FilePath maps a logical item path back to its absolute location on
// disk, rejecting escapes from the media directory.
func (s *Source) FilePath(itemPath string) (string, error) {
	clean := path.Clean("/" + itemPath)
	// Cleaning swallows ".." segments, so a changed path means the
	// input tried to climb out of the media directory.
	if clean == "/" || clean != "/"+itemPath {
		return "", fmt.Errorf("path %q escapes media directory", itemPath)
	}
	return filepath.Join(s.mediaDir, filepath.FromSlash(clean)), nil
}

// Trash moves an item into the trash directory, preserving its
// relative path. A name collision gets a timestamp suffix instead of
// overwriting the earlier trashed file.
func (s *Source) Trash(itemPath string) error {
	src, err := s.FilePath(itemPath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("trash %s: %w", itemPath, err)
	}

	dst := filepath.Join(s.mediaDir, TrashDir, filepath.FromSlash(itemPath))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("trash %s: %w", itemPath, err)
	}
	if _, err := os.Stat(dst); err == nil {
		ext := filepath.Ext(dst)
		dst = strings.TrimSuffix(dst, ext) + "." + time.Now().Format("20060102-150405") + ext
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("trash %s: %w", itemPath, err)
	}
	logging.Info("Moved %s to trash", itemPath)
	return nil
}

// SetOnChange registers the callback invoked after the watcher sees a
// (debounced) change under the media directory.
func (s *Source) SetOnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Watch starts the fsnotify watcher over the media directory and all
// non-hidden subdirectories. New subdirectories are added as they
// appear.
func (s *Source) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	if err := s.addWatchTree(w, s.mediaDir); err != nil {
		w.Close()
		return err
	}

	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()

	go s.watchLoop(w)
	logging.Info("Watching %s for changes", s.mediaDir)
	return nil
}

func (s *Source) addWatchTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && p != root {
			return filepath.SkipDir
		}
		if err := w.Add(p); err != nil {
			logging.Warn("Failed to watch %s: %v", p, err)
		}
		return nil
	})
}

// watchLoop coalesces events and fires the refresh callback once per
// quiet period.
func (s *Source) watchLoop(w *fsnotify.Watcher) {
	var timer *time.Timer
	fire := func() {
		s.mu.Lock()
		fn := s.onChange
		s.mu.Unlock()
		if fn != nil {
			fn()
		}
	}

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			metrics.SourceWatcherEventsTotal.WithLabelValues(ev.Op.String()).Inc()
			if strings.HasPrefix(filepath.Base(ev.Name), ".") {
				continue
			}
			logging.Debug("Watcher event: %s %s", ev.Op, ev.Name)

			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := s.addWatchTree(w, ev.Name); err != nil {
						logging.Warn("Failed to watch new directory %s: %v", ev.Name, err)
					}
				}
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, fire)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logging.Warn("Watcher error: %v", err)

		case <-s.stopChan:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// Stop shuts the watcher down.
func (s *Source) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.mu.Lock()
		w := s.watcher
		s.watcher = nil
		s.mu.Unlock()
		if w != nil {
			w.Close()
		}
	})
}
