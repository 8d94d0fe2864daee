package profile

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yourorg/pgpchub/internal/apiclient"
	"github.com/yourorg/pgpchub/internal/session"
	"github.com/yourorg/pgpchub/internal/validation"
)

type call struct {
	method string
	path   string
	body   []byte
}

// fakeAPI responde JSON fijo por "METODO /ruta" y registra las llamadas.
type fakeAPI struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	calls    []call
	handlers map[string]http.HandlerFunc
}

func newFakeAPI(t *testing.T) *fakeAPI {
	f := &fakeAPI{t: t, handlers: make(map[string]http.HandlerFunc)}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	c := call{method: r.Method, path: r.URL.Path}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		c.body, _ = io.ReadAll(r.Body)
	}
	f.record(c)

	f.mu.Lock()
	h := f.handlers[r.Method+" "+r.URL.Path]
	f.mu.Unlock()
	if h == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	h(w, r)
}

func (f *fakeAPI) record(c call) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}

func (f *fakeAPI) on(method, path string, status int, body string) {
	f.handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	})
}

func (f *fakeAPI) handle(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	f.handlers[method+" "+path] = h
	f.mu.Unlock()
}

func (f *fakeAPI) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.method == method && c.path == path {
			n++
		}
	}
	return n
}

func (f *fakeAPI) countMethod(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.method == method {
			n++
		}
	}
	return n
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAPI) lastBody(method, path string, out any) {
	f.mu.Lock()
	var body []byte
	for _, c := range f.calls {
		if c.method == method && c.path == path {
			body = c.body
		}
	}
	f.mu.Unlock()
	if err := json.Unmarshal(body, out); err != nil {
		f.t.Fatalf("decode body of %s %s: %v (%s)", method, path, err, body)
	}
}

// newDeps arma dependencias con una sesión iniciada para el usuario u1.
func newDeps(t *testing.T, api *fakeAPI) Deps {
	t.Helper()
	store, err := session.NewStore(session.NewMemoryStorage())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.SetAuth("u1", "gamer@hub.mx", "ProGamer", false, "k1"); err != nil {
		t.Fatalf("SetAuth: %v", err)
	}
	client := apiclient.NewClient(api.srv.URL + "/api/")
	lookups := NewLookups(client, time.Minute)
	t.Cleanup(lookups.Stop)
	return Deps{
		Client:  client,
		Session: store,
		Lookups: lookups,
		Policy:  validation.PasswordPolicy{MinLength: 8},
	}
}

const (
	coloniasJSON = `{"exito":true,"data":[
		{"idColonia":10,"colonia":"San Ángel","codigoPostal":"01000","idMunicipio":2,"municipio":"Álvaro Obregón","idEntidad":9,"entidad":"Ciudad de México"},
		{"idColonia":11,"colonia":"Tlacopac","codigoPostal":"01000","idMunicipio":2,"municipio":"Álvaro Obregón","idEntidad":9,"entidad":"Ciudad de México"}]}`
	combosJSON = `{"exito":true,"data":[
		{"combo":"FormaPago","valor":"01","texto":"Efectivo"},
		{"combo":"FormaPago","valor":"03","texto":"Transferencia"},
		{"combo":"MetodoPago","valor":"PUE","texto":"Pago en una sola exhibición"},
		{"combo":"RegimenFiscal","valor":"612","texto":"Personas Físicas con Actividades Empresariales"},
		{"combo":"UsoCfdi","valor":"G03","texto":"Gastos en general"}]}`
)
