package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Skr3d3/holidaze-project-exam-2/pkg/logger"
)

// fileBackend keeps the keys in one JSON object on disk. Writes go through a
// temp file and rename so readers never see a partial file.
type fileBackend struct {
	path string

	mu          sync.Mutex
	lastWritten []byte

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewFileStore creates a Store persisted at path. Changes made to the file by
// other processes are reported to subscribers as External events.
func NewFileStore(path string, log *logger.Logger) (Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Watch the directory: rename-based writes replace the file's inode
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch session dir: %w", err)
	}

	b := &fileBackend{
		path:    path,
		watcher: watcher,
		done:    make(chan struct{}),
	}
	s := newStore(b, log)
	s.log = s.log.With(zap.String("file", path))

	// Seed with the current content so the first external change can be classified
	prev, _ := b.load(context.Background())

	b.wg.Add(1)
	go b.watch(s, prev)
	return s, nil
}

func (b *fileBackend) load(ctx context.Context) (map[string]string, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	return decodeFile(data)
}

func decodeFile(data []byte) (map[string]string, error) {
	m := map[string]string{}
	if len(bytes.TrimSpace(data)) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptValue, err)
	}
	return m, nil
}

func (b *fileBackend) save(ctx context.Context, set map[string]string, del []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	m, err := b.load(ctx)
	if err != nil {
		// A corrupt file is replaced rather than blocking login forever
		m = map[string]string{}
	}
	for k, v := range set {
		m[k] = v
	}
	for _, k := range del {
		delete(m, k)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.path), ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}

	b.lastWritten = data
	return nil
}

func (b *fileBackend) close() error {
	select {
	case <-b.done:
		return nil
	default:
	}
	close(b.done)
	err := b.watcher.Close()
	b.wg.Wait()
	return err
}

func (b *fileBackend) watch(s *store, prev map[string]string) {
	defer b.wg.Done()
	name := filepath.Clean(b.path)

	for {
		select {
		case <-b.done:
			return
		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("session watcher error", zap.Error(err))
		case ev, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != name {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			prev = b.reconcile(s, prev)
		}
	}
}

// reconcile re-reads the file after a change and publishes what another process did
func (b *fileBackend) reconcile(s *store, prev map[string]string) map[string]string {
	data, err := os.ReadFile(b.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("failed to read changed session file", zap.Error(err))
		return prev
	}

	b.mu.Lock()
	own := err == nil && bytes.Equal(data, b.lastWritten)
	b.mu.Unlock()

	cur, derr := decodeFile(data)
	if derr != nil {
		// Probably caught mid-write by a non-atomic writer; wait for the next event
		return prev
	}
	if own {
		return cur
	}

	for _, e := range diff(prev, cur) {
		e.Source = External
		s.events.Publish(e)
	}
	return cur
}

// diff derives the events that turn prev into cur
func diff(prev, cur map[string]string) []Event {
	var events []Event
	if prev[KeyToken] != cur[KeyToken] || prev[KeyUser] != cur[KeyUser] {
		if cur[KeyToken] == "" {
			events = append(events, Event{Kind: Logout})
		} else {
			e := Event{Kind: Login}
			if sess, err := decodeSession(cur); err == nil {
				e.User = sess.Profile.Name
			}
			events = append(events, e)
		}
	}
	if prev[KeyAPIKey] != cur[KeyAPIKey] {
		events = append(events, Event{Kind: APIKeyChanged})
	}
	return events
}
