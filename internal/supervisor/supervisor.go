// Package supervisor watches a base directory for driver endpoints coming
// and going, translating filesystem reality into registry mutations. It
// reproduces spec §4.D's CREATED/DELETED/SELF_DELETED event set using
// fsnotify in place of the raw inotify syscalls the original reaches for
// directly.
package supervisor

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/fsnotify/fsnotify"

	"github.com/ehrlich-b/drvsh/internal/endpoint"
)

// EventKind mirrors spec §4.D's event set.
type EventKind int

const (
	EventCreated EventKind = iota
	EventRemoved
	EventSelfDeleted
)

// Event is one directory-change notification, already filtered down to
// entries that parsed as valid endpoint names (EventCreated/EventRemoved
// carry a non-zero Identity; EventSelfDeleted does not).
type Event struct {
	Kind     EventKind
	Identity endpoint.Identity
	Path     string
}

// Supervisor watches BaseDir for endpoint sockets and emits Events on its
// channel. It performs no registry mutation itself — Module D only
// discovers; the reactor applies the mutation, keeping every shared-state
// write inside the single event-loop goroutine.
type Supervisor struct {
	BaseDir string
	Suffix  string

	watcher *fsnotify.Watcher
	events  chan Event
	log     *slog.Logger
}

// New creates a Supervisor rooted at baseDir, creating the directory if it
// doesn't exist yet. It does not chdir into baseDir; every path it reports
// is built by joining onto baseDir.
func New(baseDir, suffix string, log *slog.Logger) (*Supervisor, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("supervisor: create base dir: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("supervisor: create watcher: %w", err)
	}
	if err := w.Add(baseDir); err != nil {
		w.Close()
		return nil, fmt.Errorf("supervisor: watch base dir: %w", err)
	}
	return &Supervisor{
		BaseDir: baseDir,
		Suffix:  suffix,
		watcher: w,
		events:  make(chan Event, 64),
		log:     log,
	}, nil
}

// Events returns the channel the reactor should select on.
func (s *Supervisor) Events() <-chan Event {
	return s.events
}

// Close stops watching and releases the underlying fsnotify watcher.
// fsnotify closes the watcher's own Events/Errors channels in response,
// which unblocks Run's select loop; Run's own deferred close(s.events) is
// the single owner of that channel's lifecycle, so Close must not also
// close it.
func (s *Supervisor) Close() error {
	return s.watcher.Close()
}

// Scan performs the initial directory listing, synthesizing a Created
// event for every matching socket entry in lexicographic order — Go's
// os.ReadDir already sorts by name, satisfying spec §4.D directly.
func (s *Supervisor) Scan() error {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		return fmt.Errorf("supervisor: initial scan: %w", err)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	sort.Strings(names)

	for _, name := range names {
		s.considerCreate(filepath.Join(s.BaseDir, name))
	}
	return nil
}

// Run drives fsnotify's event stream until the watcher is closed or the
// base directory itself disappears, translating raw fsnotify.Events into
// the Created/Removed/SelfDeleted vocabulary of spec §4.D. It must run in
// its own goroutine; Events() is the only channel the reactor reads.
func (s *Supervisor) Run() {
	defer close(s.events)
	for {
		select {
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if s.handle(ev) {
				return
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("directory watch error, treating as self-deletion", "err", err)
			s.events <- Event{Kind: EventSelfDeleted}
			return
		}
	}
}

// handle translates one fsnotify.Event and reports whether it was the
// base directory's own removal — the caller must stop its select loop in
// that case rather than keep watching a directory that's gone.
func (s *Supervisor) handle(ev fsnotify.Event) bool {
	switch {
	case ev.Op&fsnotify.Create != 0:
		s.considerCreate(ev.Name)
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		if ev.Name == s.BaseDir || filepath.Clean(ev.Name) == filepath.Clean(s.BaseDir) {
			s.events <- Event{Kind: EventSelfDeleted}
			return true
		}
		s.considerRemove(ev.Name)
	}
	return false
}

func (s *Supervisor) considerCreate(path string) {
	if !endpoint.IsSocket(path) {
		return
	}
	id, ok := endpoint.Parse(path, s.Suffix)
	if !ok {
		return
	}
	s.events <- Event{Kind: EventCreated, Identity: id, Path: path}
}

func (s *Supervisor) considerRemove(path string) {
	id, ok := endpoint.Parse(path, s.Suffix)
	if !ok {
		// Unrelated file deleted; not a warning-worthy condition since it
		// was never a tracked endpoint in the first place.
		return
	}
	s.events <- Event{Kind: EventRemoved, Identity: id, Path: path}
}
