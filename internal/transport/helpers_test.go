package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/NordCoder/hcdispatch/internal/domain/channel"
	"github.com/NordCoder/hcdispatch/internal/domain/check"
	"github.com/google/uuid"
)

var testSite = Site{Name: "healthchecks.io", RootURL: "http://localhost:8000"}

const testUA = "healthchecks.io"

type recordedRequest struct {
	Method string
	Header http.Header
	Body   []byte
	Path   string
}

// recorder is an httptest server that remembers every request it served.
type recorder struct {
	*httptest.Server

	mu     sync.Mutex
	reqs   []recordedRequest
	status int
	body   string
}

func newRecorder(t *testing.T, status int, body string) *recorder {
	t.Helper()
	rec := &recorder{status: status, body: body}
	rec.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.reqs = append(rec.reqs, recordedRequest{Method: r.Method, Header: r.Header.Clone(), Body: b, Path: r.URL.Path})
		rec.mu.Unlock()
		w.WriteHeader(rec.status)
		_, _ = io.WriteString(w, rec.body)
	}))
	t.Cleanup(rec.Close)
	return rec
}

func (r *recorder) requests() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRequest(nil), r.reqs...)
}

func (r *recorder) lastJSON(t *testing.T) map[string]any {
	t.Helper()
	reqs := r.requests()
	if len(reqs) == 0 {
		t.Fatal("no requests recorded")
	}
	var out map[string]any
	if err := json.Unmarshal(reqs[len(reqs)-1].Body, &out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return out
}

// doerFunc adapts a function to Doer.
type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

func newCheck(status check.Status) *check.Check {
	return &check.Check{
		ID:     1,
		Code:   uuid.MustParse("6f6b3c6a-1f1f-4a3c-9a1e-2d7b1b0b0c01"),
		Name:   "backups",
		Status: status,
	}
}

func newChannel(kind channel.Kind, value string) *channel.Channel {
	return &channel.Channel{ID: 7, Kind: kind, Value: value, EmailVerified: true}
}

func pinged(chk *check.Check, ago time.Duration) *check.Check {
	ts := time.Now().Add(-ago)
	chk.LastPing = &ts
	chk.NPings = 3
	return chk
}

func newSlowServer(t *testing.T, delay time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(delay):
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv
}
