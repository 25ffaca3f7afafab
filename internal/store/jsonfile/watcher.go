package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultDebounce coalesces the burst of events an atomic rename produces.
	DefaultDebounce = 50 * time.Millisecond
	eventBufferSize = 16
)

// ChangeEvent reports that a watched file was rewritten.
type ChangeEvent struct {
	Path      string
	Timestamp time.Time
}

// Watcher watches a directory for changes to JSON documents using fsnotify.
type Watcher struct {
	dir      string
	delay    time.Duration
	watcher  *fsnotify.Watcher
	now      func() time.Time
	mu       sync.Mutex
	subs     map[string][]chan ChangeEvent // glob pattern -> channels
	debounce map[string]*time.Timer        // file name -> debounce timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher starts watching dir. The directory is created if it doesn't
// exist. A non-positive delay uses DefaultDebounce.
func NewWatcher(dir string, delay time.Duration) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		dir:      dir,
		delay:    delay,
		watcher:  fw,
		now:      time.Now,
		subs:     make(map[string][]chan ChangeEvent),
		debounce: make(map[string]*time.Timer),
		ctx:      ctx,
		cancel:   cancel,
	}

	w.wg.Add(1)
	go w.run()

	return w, nil
}

// Watch returns a channel that receives an event whenever a file whose base
// name matches pattern is rewritten. The channel is closed when ctx ends or
// the watcher is closed.
func (w *Watcher) Watch(ctx context.Context, pattern string) (<-chan ChangeEvent, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}

	ch := make(chan ChangeEvent, eventBufferSize)

	w.mu.Lock()
	w.subs[pattern] = append(w.subs[pattern], ch)
	w.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			w.unsubscribe(pattern, ch)
		case <-w.ctx.Done():
		}
	}()

	return ch, nil
}

// Close stops watching and closes all subscriber channels.
func (w *Watcher) Close() error {
	w.cancel()

	w.mu.Lock()
	for _, timer := range w.debounce {
		timer.Stop()
	}
	for _, subs := range w.subs {
		for _, ch := range subs {
			close(ch)
		}
	}
	w.subs = make(map[string][]chan ChangeEvent)
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) unsubscribe(pattern string, ch chan ChangeEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	subs := w.subs[pattern]
	for i, sub := range subs {
		if sub == ch {
			w.subs[pattern] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}
	if len(w.subs[pattern]) == 0 {
		delete(w.subs, pattern)
	}
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Str("dir", w.dir).Msg("file watcher error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	name := filepath.Base(event.Name)
	if !strings.HasSuffix(name, ".json") {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, exists := w.debounce[name]; exists {
		timer.Stop()
	}
	w.debounce[name] = time.AfterFunc(w.delay, func() {
		w.notify(name)
	})
}

func (w *Watcher) notify(name string) {
	event := ChangeEvent{
		Path:      filepath.Join(w.dir, name),
		Timestamp: w.now(),
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for pattern, subs := range w.subs {
		if ok, _ := doublestar.Match(pattern, name); !ok {
			continue
		}
		for _, ch := range subs {
			select {
			case ch <- event:
			default:
				// Subscriber is behind; it will see the next change.
			}
		}
	}

	delete(w.debounce, name)
}
