package persist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type memSink struct {
	mu    sync.Mutex
	order []string
	docs  map[string]string
	gate  chan struct{}
	fail  bool
}

func newMemSink() *memSink { return &memSink{docs: map[string]string{}} }

func (m *memSink) Save(_ context.Context, name string, body []byte) error {
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("disk full")
	}
	m.order = append(m.order, name)
	m.docs[name] = string(body)
	return nil
}

func TestWriterDrainsOnClose(t *testing.T) {
	sink := newMemSink()
	w := NewWriter(sink, Config{Buffer: 8}, zerolog.Nop())

	assert.True(t, w.Enqueue("auth", []byte("a1")))
	assert.True(t, w.Enqueue("planner", []byte("p1")))
	assert.True(t, w.Enqueue("planner", []byte("p2")))
	w.Close()

	assert.Equal(t, []string{"auth", "planner", "planner"}, sink.order)
	assert.Equal(t, "p2", sink.docs["planner"], "last write wins")
}

func TestWriterDropsWhenFull(t *testing.T) {
	sink := newMemSink()
	sink.gate = make(chan struct{})
	w := NewWriter(sink, Config{Buffer: 1}, zerolog.Nop())

	// The worker takes the first job and blocks on the gate; the second fills
	// the buffer.
	assert.True(t, w.Enqueue("a", nil))
	assert.Eventually(t, func() bool { return len(w.jobs) == 0 }, time.Second, time.Millisecond)
	assert.True(t, w.Enqueue("b", nil))
	assert.False(t, w.Enqueue("c", nil), "enqueue never blocks")

	close(sink.gate)
	w.Close()
	assert.Equal(t, []string{"a", "b"}, sink.order)
}

func TestWriterAfterCloseAndFailures(t *testing.T) {
	sink := newMemSink()
	sink.fail = true
	w := NewWriter(sink, Config{}, zerolog.Nop())
	assert.True(t, w.Enqueue("a", nil))
	w.Close()
	w.Close()

	assert.False(t, w.Enqueue("late", nil))
	assert.Empty(t, sink.order)
}
