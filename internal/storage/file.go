package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const tempPrefix = ".tmp-"

// File stores one file per key inside a directory. Writes from any process
// sharing the directory are picked up through fsnotify and published to
// subscribers.
type File struct {
	dir     string
	logger  *zap.Logger
	watcher *fsnotify.Watcher
	bus     *bus

	mu       sync.Mutex
	lastSeen map[string]fileState

	closeOnce sync.Once
	done      chan struct{}
}

type fileState struct {
	value   string
	removed bool
}

// NewFile creates dir if needed and starts watching it.
func NewFile(dir string, logger *zap.Logger) (*File, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("storage: create dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("storage: create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("storage: watch %s: %w", dir, err)
	}

	f := &File{
		dir:      dir,
		logger:   logger.Named("storage.file"),
		watcher:  watcher,
		bus:      newBus(),
		lastSeen: make(map[string]fileState),
		done:     make(chan struct{}),
	}
	f.prime()

	go f.watch()
	return f, nil
}

// prime records the current contents so the first event for an unchanged
// key is not reported.
func (f *File) prime() {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() || validKey(e.Name()) != nil {
			continue
		}
		if data, err := os.ReadFile(filepath.Join(f.dir, e.Name())); err == nil {
			f.lastSeen[e.Name()] = fileState{value: string(data)}
		}
	}
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, key)
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	if err := validKey(key); err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("storage: read %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set writes through a temp file and rename so readers never see a partial value.
func (f *File) Set(_ context.Context, key, value string) error {
	if err := validKey(key); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, tempPrefix+key+"-*")
	if err != nil {
		return fmt.Errorf("storage: write %s: %w", key, err)
	}
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("storage: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("storage: write %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("storage: write %s: %w", key, err)
	}
	return nil
}

func (f *File) Remove(_ context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: remove %s: %w", key, err)
	}
	return nil
}

func (f *File) Subscribe(fn func(Event)) func() {
	return f.bus.subscribe(fn)
}

// Close stops the watcher and waits for the event loop to exit.
func (f *File) Close() error {
	var err error
	f.closeOnce.Do(func() {
		err = f.watcher.Close()
		<-f.done
	})
	return err
}

func (f *File) watch() {
	defer close(f.done)
	for {
		select {
		case ev, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			f.handle(ev)
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (f *File) handle(ev fsnotify.Event) {
	key := filepath.Base(ev.Name)
	if strings.HasPrefix(key, tempPrefix) || validKey(key) != nil {
		return
	}
	if ev.Op == fsnotify.Chmod {
		return
	}

	// The op alone is ambiguous across platforms, the file contents are not.
	var state fileState
	data, err := os.ReadFile(ev.Name)
	switch {
	case err == nil:
		state.value = string(data)
	case errors.Is(err, fs.ErrNotExist):
		state.removed = true
	default:
		f.logger.Warn("read changed key", zap.String("key", key), zap.Error(err))
		return
	}

	f.mu.Lock()
	prev, seen := f.lastSeen[key]
	if (seen && prev == state) || (!seen && state.removed) {
		f.mu.Unlock()
		return
	}
	f.lastSeen[key] = state
	f.mu.Unlock()

	f.logger.Debug("key changed", zap.String("key", key), zap.Bool("removed", state.removed))
	f.bus.publish(Event{Key: key, Value: state.value, Removed: state.removed})
}
