package apiclient_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"
)

// backend is a scripted cookie-session API. Resources answer 200 while the access_token
// cookie matches the current token and 401 with expiredMessage otherwise.
type backend struct {
	srv *httptest.Server

	mu             sync.Mutex
	token          string
	generation     int
	refreshCalls   int
	refreshCSRF    []string
	hits           map[string]int
	csrfSeen       map[string][]string
	bodies         map[string][]string
	expiredMessage string
	failing        map[string]int
	alwaysExpired  bool
	refreshStatus  int
	refreshGate    chan struct{}
	refreshHang    bool
}

func newBackend(t *testing.T) *backend {
	b := &backend{
		token:          "v1",
		generation:     1,
		hits:           map[string]int{},
		csrfSeen:       map[string][]string{},
		bodies:         map[string][]string{},
		failing:        map[string]int{},
		expiredMessage: "Token expired",
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", b.login)
	mux.HandleFunc("POST /auth/refresh", b.refresh)
	mux.HandleFunc("GET /auth/csrf", b.csrf)
	mux.HandleFunc("/", b.resource)
	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) URL() string {
	return b.srv.URL
}

func (b *backend) Refreshes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshCalls
}

// RefreshCSRF returns the CSRF header seen on each refresh call.
func (b *backend) RefreshCSRF() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.refreshCSRF...)
}

func (b *backend) Hits(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[key]
}

func (b *backend) CSRFSeen(key string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.csrfSeen[key]...)
}

func (b *backend) Bodies(key string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.bodies[key]...)
}

// expire invalidates the access token the client holds.
func (b *backend) expire() {
	b.mu.Lock()
	b.token = ""
	b.mu.Unlock()
}

func (b *backend) set(fn func(b *backend)) {
	b.mu.Lock()
	fn(b)
	b.mu.Unlock()
}

func (b *backend) Token() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token
}

func (b *backend) setSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: "access_token", Value: b.token, Path: "/", HttpOnly: true})
	http.SetCookie(w, &http.Cookie{Name: "XSRF-TOKEN", Value: fmt.Sprintf("csrf-%d", b.generation), Path: "/"})
}

func (b *backend) login(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	b.setSessionCookies(w)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (b *backend) refresh(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.refreshCalls++
	b.refreshCSRF = append(b.refreshCSRF, r.Header.Get("X-XSRF-TOKEN"))
	gate, hang, status := b.refreshGate, b.refreshHang, b.refreshStatus
	b.mu.Unlock()

	if hang {
		<-r.Context().Done()
		return
	}
	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}
	if status != 0 {
		writeJSON(w, status, map[string]any{"error": "Invalid refresh token"})
		return
	}

	b.mu.Lock()
	b.generation++
	b.token = fmt.Sprintf("v%d", b.generation)
	b.setSessionCookies(w)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (b *backend) csrf(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: "XSRF-TOKEN", Value: "fetched", Path: "/"})
	writeJSON(w, http.StatusOK, map[string]any{"csrf_token": "fetched", "token": "alt"})
}

func (b *backend) resource(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	cookie, _ := r.Cookie("access_token")
	body, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	b.hits[key]++
	b.csrfSeen[key] = append(b.csrfSeen[key], r.Header.Get("X-XSRF-TOKEN"))
	b.bodies[key] = append(b.bodies[key], string(body))
	valid := !b.alwaysExpired && cookie != nil && cookie.Value == b.token
	msg := b.expiredMessage
	failStatus := b.failing[key]
	b.mu.Unlock()

	if !valid {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": msg})
		return
	}
	if failStatus != 0 {
		writeJSON(w, failStatus, map[string]any{"error": "Something went wrong"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"path": r.URL.Path, "token": cookie.Value})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// recordingTransport notes every request carrying the named session token.
type recordingTransport struct {
	next  http.RoundTripper
	token string

	mu    sync.Mutex
	paths []string
}

func (t *recordingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if c, err := r.Cookie("access_token"); err == nil && c.Value == t.token {
		t.mu.Lock()
		t.paths = append(t.paths, r.Method+" "+r.URL.Path)
		t.mu.Unlock()
	}
	return t.next.RoundTrip(r)
}

func (t *recordingTransport) Paths() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.paths...)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
