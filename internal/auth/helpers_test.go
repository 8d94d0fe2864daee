package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/yourorg/pgpchub/internal/apiclient"
	"github.com/yourorg/pgpchub/internal/session"
	"github.com/yourorg/pgpchub/internal/validation"
)

// fakeAPI es un backend mínimo que cuenta llamadas y guarda el último cuerpo
// por ruta.
type fakeAPI struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	calls    map[string]int
	bodies   map[string][]byte
	handlers map[string]http.HandlerFunc
}

func newFakeAPI(t *testing.T) *fakeAPI {
	f := &fakeAPI{
		t:        t,
		calls:    make(map[string]int),
		bodies:   make(map[string][]byte),
		handlers: make(map[string]http.HandlerFunc),
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls[r.URL.Path]++
	f.bodies[r.URL.Path] = body
	h := f.handlers[r.URL.Path]
	f.mu.Unlock()

	if h == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	h(w, r)
}

// on registra una respuesta JSON fija para path.
func (f *fakeAPI) on(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[path] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func (f *fakeAPI) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeAPI) lastBody(path string, out any) {
	f.mu.Lock()
	body := f.bodies[path]
	f.mu.Unlock()
	if err := json.Unmarshal(body, out); err != nil {
		f.t.Fatalf("decode body of %s: %v (%s)", path, err, body)
	}
}

// newDeps arma dependencias en memoria apuntando al fake.
func newDeps(t *testing.T, api *fakeAPI) Deps {
	durable := session.NewMemoryStorage()
	store, err := session.NewStore(durable)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return Deps{
		Client:   apiclient.NewClient(api.srv.URL + "/api/"),
		Graph:    apiclient.NewClient(api.srv.URL + "/graph/"),
		Session:  store,
		Tokens:   session.NewTokens(durable),
		Remember: session.NewRememberStore(durable),
		Markers:  session.NewTwoFactorMarkers(session.NewMemoryStorage()),
		Policy:   validation.PasswordPolicy{MinLength: 8},
	}
}
