// Package watch streams store change notifications to clients. A
// filesystem watcher on the backing files publishes change events onto
// the bus; per-connection handlers fan them out over SSE or WebSocket.
package watch

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/olufemi424/agentic-ui/internal/events"
)

// FileWatcher observes the store backing files and publishes a change
// event for every detected write. Watching the filesystem (rather than
// hooking the repositories) also catches writers outside this process.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	bus     *events.Bus
	targets map[string]events.EventType // base name -> event type
	dir     string
	done    chan struct{}
	log     zerolog.Logger
}

// NewFileWatcher creates a watcher for the given backing files. All
// files must live in the same directory; the directory itself is
// watched so whole-file rewrites and replacements are seen.
func NewFileWatcher(bus *events.Bus, log zerolog.Logger, itemsFile, investmentsFile string) (*FileWatcher, error) {
	if filepath.Dir(itemsFile) != filepath.Dir(investmentsFile) {
		return nil, fmt.Errorf("backing files must share a directory")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}

	dir := filepath.Dir(investmentsFile)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &FileWatcher{
		watcher: w,
		bus:     bus,
		dir:     dir,
		targets: map[string]events.EventType{
			filepath.Base(itemsFile):       events.ItemsChanged,
			filepath.Base(investmentsFile): events.AccountsChanged,
		},
		done: make(chan struct{}),
		log:  log.With().Str("component", "file_watcher").Logger(),
	}, nil
}

// Start begins forwarding filesystem events onto the bus. It returns
// immediately; Close stops the forwarding goroutine.
func (f *FileWatcher) Start() {
	go func() {
		for {
			select {
			case <-f.done:
				return
			case event, ok := <-f.watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				eventType, watched := f.targets[filepath.Base(event.Name)]
				if !watched {
					continue
				}
				f.log.Debug().Str("file", event.Name).Msg("Backing file changed")
				f.bus.Publish(eventType, "watch", map[string]interface{}{
					"file": event.Name,
					"ts":   time.Now().UnixMilli(),
				})
			case err, ok := <-f.watcher.Errors:
				if !ok {
					return
				}
				f.log.Warn().Err(err).Msg("Filesystem watcher error")
			}
		}
	}()
	f.log.Info().Str("dir", f.dir).Msg("Watching backing files")
}

// Close stops the watcher and releases the watch handle.
func (f *FileWatcher) Close() error {
	close(f.done)
	return f.watcher.Close()
}
