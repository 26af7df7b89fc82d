package watch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olufemi424/agentic-ui/internal/events"
)

// streamRecorder is a concurrency-safe ResponseWriter for streaming
// handlers that keep writing while the test inspects the body.
type streamRecorder struct {
	mu     sync.Mutex
	header http.Header
	body   bytes.Buffer
	status int
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{header: http.Header{}, status: http.StatusOK}
}

func (r *streamRecorder) Header() http.Header { return r.header }
func (r *streamRecorder) WriteHeader(s int)   { r.status = s }
func (r *streamRecorder) Flush()              {}

func (r *streamRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.Write(p)
}

func (r *streamRecorder) Body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.String()
}

func TestSSEStreamHelloAndChange(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	handler := NewSSEHandler(bus, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/investments/watch", nil).WithContext(ctx)
	rec := newStreamRecorder()

	done := make(chan struct{})
	go func() {
		handler.ServeHTTP(rec, req)
		close(done)
	}()

	// The subscription races with the publish; keep publishing until
	// the change event lands.
	require.Eventually(t, func() bool {
		bus.Publish(events.AccountsChanged, "watch", map[string]interface{}{
			"file": "/tmp/investments.json",
			"ts":   int64(123),
		})
		return strings.Contains(rec.Body(), "event: change")
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return after disconnect")
	}

	body := rec.Body()
	assert.Contains(t, body, "event: hello")
	assert.Contains(t, body, `"ok":true`)
	assert.Contains(t, body, "/tmp/investments.json")
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
}

func TestSSEStreamTeardownReleasesSubscription(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	handler := NewSSEHandler(bus, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/investments/watch", nil).WithContext(ctx)
	rec := newStreamRecorder()

	done := make(chan struct{})
	go func() {
		handler.ServeHTTP(rec, req)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(rec.Body(), "event: hello")
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return after disconnect")
	}

	// Publishing after teardown must not panic or block.
	bus.Publish(events.AccountsChanged, "watch", map[string]interface{}{"file": "x", "ts": int64(1)})
}
