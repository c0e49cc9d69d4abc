package scanner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newRelayStub(t *testing.T, received *[]string, hits *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		var req pushRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad push body: %v", err)
		}
		if received != nil {
			*received = append(*received, req.Data)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
}

func TestPusherCooldownIdempotence(t *testing.T) {
	var hits int32
	srv := newRelayStub(t, nil, &hits)
	defer srv.Close()

	p := NewPusher(srv.URL, "tok-1", 5*time.Second)
	now := time.Now()
	p.now = func() time.Time { return now }

	accepted, err := p.Push(context.Background(), "CODE-1")
	if err != nil || !accepted {
		t.Fatalf("first push: accepted=%v err=%v", accepted, err)
	}

	// Same payload inside the window is suppressed before any I/O.
	now = now.Add(2 * time.Second)
	accepted, err = p.Push(context.Background(), "CODE-1")
	if err != nil {
		t.Fatalf("second push: %v", err)
	}
	if accepted {
		t.Error("identical payload within cooldown should be suppressed")
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("relay hits = %d, want 1", hits)
	}

	// After the window elapses the same payload is accepted again.
	now = now.Add(5 * time.Second)
	accepted, err = p.Push(context.Background(), "CODE-1")
	if err != nil || !accepted {
		t.Fatalf("post-window push: accepted=%v err=%v", accepted, err)
	}
	if atomic.LoadInt32(&hits) != 2 {
		t.Errorf("relay hits = %d, want 2", hits)
	}
}

func TestPusherDistinctPayloadsInsideWindow(t *testing.T) {
	var hits int32
	var received []string
	srv := newRelayStub(t, &received, &hits)
	defer srv.Close()

	p := NewPusher(srv.URL, "tok-2", 5*time.Second)

	for _, payload := range []string{"A", "B", "A"} {
		if accepted, err := p.Push(context.Background(), payload); err != nil || !accepted {
			t.Fatalf("push %q: accepted=%v err=%v", payload, accepted, err)
		}
	}
	// Only consecutive repeats are suppressed; A-B-A all go through.
	if atomic.LoadInt32(&hits) != 3 {
		t.Errorf("relay hits = %d, want 3", hits)
	}
}

func TestPusherLinkSendsSentinel(t *testing.T) {
	var hits int32
	var received []string
	srv := newRelayStub(t, &received, &hits)
	defer srv.Close()

	p := NewPusher(srv.URL, "tok-3", 5*time.Second)
	if err := p.Link(context.Background()); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if len(received) != 1 || received[0] != LinkedSentinel {
		t.Errorf("received = %v, want [%s]", received, LinkedSentinel)
	}
}

func TestPusherReportsHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no listener", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewPusher(srv.URL, "tok-4", 5*time.Second)
	accepted, err := p.Push(context.Background(), "CODE-X")
	if !accepted {
		t.Error("decode should count as accepted even when delivery fails")
	}
	if err == nil {
		t.Error("non-2xx response should surface as an error")
	}
}
