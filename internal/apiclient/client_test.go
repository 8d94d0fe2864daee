package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type loginReq struct {
	Usuario string `json:"usuario"`
	Pass    string `json:"pass"`
}

type usuario struct {
	ID   string `json:"id"`
	Mail string `json:"mail"`
}

func TestClientResolvesEndpoints(t *testing.T) {
	c := NewClient("https://api.example.net/api/")

	if got := c.URL("usuarios/login"); got != "https://api.example.net/api/usuarios/login" {
		t.Errorf("Unexpected URL %q", got)
	}
	if got := c.URL("/usuarios/login"); got != "https://api.example.net/api/usuarios/login" {
		t.Errorf("Leading slash should be ignored, got %q", got)
	}
	if got := c.URL("https://other.net/x"); got != "https://other.net/x" {
		t.Errorf("Absolute URL should be kept, got %q", got)
	}
}

func TestClientSendsJSONAndToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %q", ct)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer abc" {
			t.Errorf("Expected bearer token, got %q", auth)
		}
		var req loginReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Usuario != "gamer@hub.mx" {
			t.Errorf("Unexpected usuario %q", req.Usuario)
		}
		w.Write([]byte(`{"exito":true,"mensaje":"ok","error":"","data":{"id":"1","mail":"gamer@hub.mx"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithTokenSource(func() string { return "abc" }))
	var out Respuesta[usuario]
	if err := c.Post(context.Background(), "usuarios/login", loginReq{Usuario: "gamer@hub.mx", Pass: "x"}, &out); err != nil {
		t.Fatalf("Post: %v", err)
	}
	user, ok := out.First()
	if !ok || user.Mail != "gamer@hub.mx" {
		t.Errorf("Unexpected data %+v", out.Data)
	}
}

func TestClientMultipartOmitsJSONContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if !strings.HasPrefix(ct, "multipart/form-data; boundary=") {
			t.Errorf("Expected multipart content type, got %q", ct)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		if r.FormValue("idCliente") != "c1" {
			t.Errorf("Missing field idCliente")
		}
		f, hdr, err := r.FormFile("foto")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer f.Close()
		body, _ := io.ReadAll(f)
		if hdr.Filename != "avatar.png" || string(body) != "PNGDATA" {
			t.Errorf("Unexpected file %s %q", hdr.Filename, body)
		}
		w.Write([]byte(`{"exito":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	form := MultipartForm{
		Fields: map[string]string{"idCliente": "c1"},
		Files:  []FilePart{{Field: "foto", FileName: "avatar.png", ContentType: "image/png", Content: strings.NewReader("PNGDATA")}},
	}
	var out Respuesta[json.RawMessage]
	if err := c.PostMultipart(context.Background(), "Clientes/SubirFoto", form, &out); err != nil {
		t.Fatalf("PostMultipart: %v", err)
	}
	if !out.Exito {
		t.Error("Expected exito")
	}
}

func TestPosterServerErrorReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewPoster[loginReq, Respuesta[usuario]](NewClient(srv.URL), "usuarios/login")
	resp, err := p.Post(context.Background(), loginReq{Usuario: "a", Pass: "b"})
	if resp != nil {
		t.Errorf("Expected nil response, got %+v", resp)
	}
	if err == nil {
		t.Fatal("Expected error")
	}
	if p.Err() != "Error del servidor: 500" {
		t.Errorf("Unexpected error message %q", p.Err())
	}
	if p.Loading() {
		t.Error("Loading should be false after the call")
	}
	if StatusCode(err) != 500 {
		t.Errorf("Expected status 500, got %d", StatusCode(err))
	}
}

func TestPosterNoResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := NewPoster[loginReq, Respuesta[usuario]](NewClient(url), "usuarios/login")
	if resp, _ := p.Post(context.Background(), loginReq{}); resp != nil {
		t.Error("Expected nil response")
	}
	if p.Err() != "No se recibió respuesta del servidor." {
		t.Errorf("Unexpected error message %q", p.Err())
	}
}

func TestPosterTimeoutIsNoResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	p := NewPoster[loginReq, Respuesta[usuario]](NewClient(srv.URL, WithTimeout(20*time.Millisecond)), "x")
	p.Post(context.Background(), loginReq{})
	if p.Err() != "No se recibió respuesta del servidor." {
		t.Errorf("Unexpected error message %q", p.Err())
	}
}

func TestPosterSendError(t *testing.T) {
	p := NewPoster[chan int, Respuesta[usuario]](NewClient("http://127.0.0.1:1"), "x")
	resp, err := p.Post(context.Background(), make(chan int))
	if resp != nil || err == nil {
		t.Fatal("Expected failure for unserializable payload")
	}
	if !strings.HasPrefix(p.Err(), "Error al enviar la petición: ") {
		t.Errorf("Unexpected error message %q", p.Err())
	}
}

func TestPosterClearsPreviousError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"exito":true,"data":[]}`))
	}))
	defer srv.Close()

	p := NewPoster[loginReq, Respuesta[usuario]](NewClient(srv.URL), "x")
	p.Post(context.Background(), loginReq{})
	if p.Err() != "Error del servidor: 502" {
		t.Fatalf("Unexpected first error %q", p.Err())
	}
	resp, err := p.Post(context.Background(), loginReq{})
	if err != nil || resp == nil || !resp.Exito {
		t.Fatalf("Second call should succeed: %v", err)
	}
	if p.Err() != "" {
		t.Errorf("Error should be cleared, got %q", p.Err())
	}
}

func TestDeleterPrefersServerMessage(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"mensaje", http.StatusConflict, `{"mensaje":"Dirección en uso","error":"otro"}`, "Dirección en uso"},
		{"error", http.StatusNotFound, `{"error":"No existe"}`, "No existe"},
		{"sin cuerpo", http.StatusInternalServerError, ``, "Error del servidor: 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete {
					t.Errorf("Expected DELETE, got %s", r.Method)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			d := NewDeleter[Respuesta[json.RawMessage]](NewClient(srv.URL))
			resp, err := d.Delete(context.Background(), "Direcciones/Eliminar/1")
			if resp != nil || err == nil {
				t.Fatal("Expected failure")
			}
			if d.Err() != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, d.Err())
			}
		})
	}
}

func TestLoaderLifecycle(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"exito":true,"data":[{"id":"1"},{"id":"2"}]}`))
	}))
	defer srv.Close()

	l := NewLoader[Respuesta[usuario]](NewClient(srv.URL), "Direcciones/ObtenerDireccionesPorIdCte/c1")
	if !l.Loading() {
		t.Error("Loading should start true")
	}
	if err := l.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if l.Loading() {
		t.Error("Loading should be false after load")
	}
	if got := len(l.Data().Data); got != 2 {
		t.Errorf("Expected 2 items, got %d", got)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("Expected exactly one call, got %d", calls)
	}

	// El mismo endpoint no recarga
	l.SetEndpoint(context.Background(), "Direcciones/ObtenerDireccionesPorIdCte/c1")
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("Same endpoint should not refetch, got %d calls", calls)
	}

	l.Close()
	if err := l.Load(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}

func TestLoaderKeepsDataOnError(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"exito":true,"data":{"id":"1"}}`))
	}))
	defer srv.Close()

	l := NewLoader[Respuesta[usuario]](NewClient(srv.URL), "x")
	l.Load(context.Background())
	fail.Store(true)
	if err := l.Load(context.Background()); err == nil {
		t.Fatal("Expected error")
	}
	if l.Err() != "Error del servidor: 503" {
		t.Errorf("Unexpected error %q", l.Err())
	}
	data := l.Data()
	if first, ok := data.First(); !ok || first.ID != "1" {
		t.Errorf("Previous data should be kept, got %+v", data)
	}
}

func TestLoaderCancelsOnEndpointChange(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/lento") {
			select {
			case <-release:
			case <-r.Context().Done():
				return
			}
		}
		w.Write([]byte(`{"exito":true,"data":{"id":"` + strings.TrimPrefix(r.URL.Path, "/") + `"}}`))
	}))
	defer srv.Close()
	defer close(release)

	l := NewLoader[Respuesta[usuario]](NewClient(srv.URL), "lento")
	done := make(chan error, 1)
	go func() { done <- l.Load(context.Background()) }()

	time.Sleep(50 * time.Millisecond)
	if err := l.SetEndpoint(context.Background(), "rapido"); err != nil {
		t.Fatalf("SetEndpoint: %v", err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, ErrSuperseded) {
			t.Errorf("Expected first load to be superseded, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("First load was not cancelled")
	}
	data := l.Data()
	if first, _ := data.First(); first.ID != "rapido" {
		t.Errorf("Expected data from new endpoint, got %+v", first)
	}
}

func TestLoaderCloseCancelsInFlight(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	l := NewLoader[Respuesta[usuario]](NewClient(srv.URL), "x")
	done := make(chan error, 1)
	go func() { done <- l.Load(context.Background()) }()
	time.Sleep(30 * time.Millisecond)
	l.Close()

	select {
	case err := <-done:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("Expected ErrClosed, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not cancel the request")
	}
	if l.Err() != "" {
		t.Errorf("Closed loader must not record errors, got %q", l.Err())
	}
}

func TestClientInvalidJSONIsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>mantenimiento</html>"))
	}))
	defer srv.Close()

	var out Respuesta[usuario]
	err := NewClient(srv.URL).Get(context.Background(), "usuarios", &out)
	var reqErr *RequestError
	if !errors.As(err, &reqErr) || reqErr.Kind != KindDecode {
		t.Fatalf("Expected decode error, got %v", err)
	}
	if got := Message(err, ""); got != "La respuesta del servidor no es válida." {
		t.Errorf("Unexpected message %q", got)
	}
	if StatusCode(err) != 0 {
		t.Errorf("A 2xx decode failure is not a server status, got %d", StatusCode(err))
	}
}
