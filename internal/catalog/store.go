package catalog

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"github.com/gitrules/gitrules/internal/logging"
)

// reloadDebounce coalesces bursts of file events (editors write, chmod, rename).
const reloadDebounce = 250 * time.Millisecond

// Store holds the current snapshot. Readers call Snapshot and get a complete,
// immutable view; Reload builds a new snapshot and swaps the pointer.
type Store struct {
	fsys    fs.FS
	current atomic.Pointer[Snapshot]

	reloadMu sync.Mutex // serializes reloads from watcher, cron and API
	onReload func(*Snapshot)

	mu        sync.Mutex
	watcher   *fsnotify.Watcher
	scheduler *cron.Cron
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewStore loads fsys and returns a store serving that snapshot.
func NewStore(fsys fs.FS) (*Store, error) {
	s := &Store{fsys: fsys}
	if _, err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenDir is NewStore over a directory on disk.
func OpenDir(dir string) (*Store, error) {
	return NewStore(os.DirFS(dir))
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// OnReload registers a callback invoked after every successful reload.
func (s *Store) OnReload(fn func(*Snapshot)) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()
	s.onReload = fn
}

// Reload re-parses all sources and swaps the snapshot. On a load error the
// previous snapshot stays in place.
func (s *Store) Reload() (*Snapshot, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	snap, err := Load(s.fsys)
	if err != nil {
		logging.Errorf("[catalog] Reload failed, keeping previous snapshot: %v", err)
		return nil, err
	}
	for _, d := range snap.Diagnostics() {
		logging.Warnf("[catalog] %v", d)
	}

	s.current.Store(snap)
	logging.Infof("[catalog] Loaded %d actions", snap.Len())

	if s.onReload != nil {
		s.onReload(snap)
	}
	return snap, nil
}

// Watch reloads the store when a source file in dir changes.
func (s *Store) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.watcher = watcher
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.watchLoop(ctx, watcher)
	logging.Infof("[catalog] Watching %s", dir)
	return nil
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer s.wg.Done()

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !isSourceFile(event.Name) {
				continue
			}
			logging.Debugf("[catalog] File event: %s %s", event.Op, event.Name)
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			pending = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Errorf("[catalog] Watch error: %v", err)
		case <-pending:
			pending = nil
			_, _ = s.Reload()
		}
	}
}

func isSourceFile(path string) bool {
	base := filepath.Base(path)
	for _, name := range SourceFiles {
		if base == name {
			return true
		}
	}
	return false
}

// Schedule reloads the store on a cron spec such as "@every 10m".
func (s *Store) Schedule(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { _, _ = s.Reload() }); err != nil {
		return fmt.Errorf("invalid reload schedule %q: %w", spec, err)
	}

	s.mu.Lock()
	s.scheduler = c
	s.mu.Unlock()

	c.Start()
	logging.Infof("[catalog] Scheduled reloads: %s", spec)
	return nil
}

// Stop ends watching and scheduled reloads and waits for them to exit.
func (s *Store) Stop() {
	s.mu.Lock()
	cancel, watcher, scheduler := s.cancel, s.watcher, s.scheduler
	s.cancel, s.watcher, s.scheduler = nil, nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	s.wg.Wait()
	if watcher != nil {
		watcher.Close()
	}
}
