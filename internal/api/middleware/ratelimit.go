package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"
)

// Admitter decides whether a client identity may issue another request.
// Rejection is a normal control-flow outcome, not an error.
type Admitter interface {
	Admit(ctx context.Context, key string) bool
}

type clientWindow struct {
	stamps   []time.Time
	lastSeen time.Time
}

// SlidingWindow admits up to limit requests per client within a
// trailing window. Stale timestamps are pruned lazily on each check;
// clients idle for several windows are evicted by a background sweep.
type SlidingWindow struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	clients map[string]*clientWindow
}

func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	s := &SlidingWindow{
		limit:   limit,
		window:  window,
		clients: make(map[string]*clientWindow),
	}
	go s.evictIdle()
	return s
}

func (s *SlidingWindow) Admit(_ context.Context, key string) bool {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[key]
	if !ok {
		c = &clientWindow{}
		s.clients[key] = c
	}
	c.lastSeen = now

	cutoff := now.Add(-s.window)
	kept := c.stamps[:0]
	for _, ts := range c.stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	c.stamps = kept

	if len(c.stamps) >= s.limit {
		return false
	}
	c.stamps = append(c.stamps, now)
	return true
}

func (s *SlidingWindow) evictIdle() {
	for {
		time.Sleep(time.Minute)
		s.mu.Lock()
		for key, c := range s.clients {
			if time.Since(c.lastSeen) > 3*s.window {
				delete(s.clients, key)
			}
		}
		s.mu.Unlock()
	}
}

// Throttle gatekeeps every inbound request through the admitter,
// answering 429 for rejected clients.
func Throttle(a Admitter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.Admit(r.Context(), clientKey(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{"detail": "Rate limit exceeded. Try again later."})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
