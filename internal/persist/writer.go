// Package persist writes session documents in the background. Callers never
// wait on storage.
package persist

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/starstrip/starstrip-planner/internal/metrics"
)

// Sink stores a named document.
type Sink interface {
	Save(ctx context.Context, name string, body []byte) error
}

type job struct {
	name string
	body []byte
}

// Config controls queue depth and per-write timeout.
type Config struct {
	Buffer  int
	Timeout time.Duration
}

// Writer drains a bounded queue of documents into a Sink on one goroutine, so
// writes for the same name land in enqueue order.
type Writer struct {
	sink Sink
	cfg  Config
	log  zerolog.Logger

	mu     sync.Mutex
	closed bool
	jobs   chan job
	done   chan struct{}
}

// NewWriter starts the worker goroutine.
func NewWriter(sink Sink, cfg Config, log zerolog.Logger) *Writer {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 64
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	w := &Writer{
		sink: sink,
		cfg:  cfg,
		log:  log,
		jobs: make(chan job, cfg.Buffer),
		done: make(chan struct{}),
	}
	go w.run()
	return w
}

// Enqueue schedules a save and returns immediately. It reports false when the
// job was dropped because the queue is full or the writer is closed.
func (w *Writer) Enqueue(name string, body []byte) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		w.log.Warn().Str("document", name).Msg("persist writer closed; dropping write")
		metrics.PersistDropped.Inc()
		return false
	}
	select {
	case w.jobs <- job{name: name, body: body}:
		return true
	default:
		w.log.Warn().Str("document", name).Int("buffer", w.cfg.Buffer).Msg("persist queue full; dropping write")
		metrics.PersistDropped.Inc()
		return false
	}
}

// Close stops accepting jobs and waits until the queue is drained.
func (w *Writer) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.jobs)
	}
	w.mu.Unlock()
	<-w.done
}

func (w *Writer) run() {
	defer close(w.done)
	for j := range w.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), w.cfg.Timeout)
		if err := w.sink.Save(ctx, j.name, j.body); err != nil {
			w.log.Error().Err(err).Str("document", j.name).Msg("persist write failed")
		}
		cancel()
	}
}
