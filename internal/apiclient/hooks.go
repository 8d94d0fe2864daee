package apiclient

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed indica que el Loader ya fue cerrado (componente desmontado).
var ErrClosed = errors.New("loader cerrado")

// ErrSuperseded indica que una carga más reciente reemplazó a esta.
var ErrSuperseded = errors.New("carga reemplazada por una más reciente")

const (
	defaultLoadError   = "Ocurrió un error al cargar los datos."
	defaultDeleteError = "Error al eliminar el recurso"
)

// ============================================================================
// GET
// ============================================================================

// Loader es el hook GET: una llamada por carga, estado de carga y error, y
// cancelación cuando cambia el endpoint o se cierra.
type Loader[T any] struct {
	client *Client

	mu       sync.Mutex
	endpoint string
	data     T
	loading  bool
	err      string
	cancel   context.CancelFunc
	seq      uint64
	closed   bool
}

// NewLoader crea un Loader. Loading es true hasta que termine la primera carga.
func NewLoader[T any](c *Client, endpoint string) *Loader[T] {
	return &Loader[T]{client: c, endpoint: endpoint, loading: true}
}

// Load ejecuta el GET (equivale a refetch). Una carga en curso se cancela y
// su resultado se descarta.
func (l *Loader[T]) Load(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	if l.cancel != nil {
		l.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.seq++
	seq := l.seq
	endpoint := l.endpoint
	l.loading = true
	l.err = ""
	l.mu.Unlock()

	var out T
	err := l.client.Get(reqCtx, endpoint, &out)
	cancel()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	if seq != l.seq {
		return ErrSuperseded
	}
	l.cancel = nil
	l.loading = false
	if err != nil {
		l.err = Message(err, defaultLoadError)
		return err
	}
	l.data = out
	return nil
}

// SetEndpoint cambia el endpoint y recarga si es distinto.
func (l *Loader[T]) SetEndpoint(ctx context.Context, endpoint string) error {
	l.mu.Lock()
	if l.endpoint == endpoint && l.seq > 0 {
		l.mu.Unlock()
		return nil
	}
	l.endpoint = endpoint
	l.mu.Unlock()
	return l.Load(ctx)
}

// Close cancela la carga en curso; ninguna carga posterior modifica el estado.
func (l *Loader[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

func (l *Loader[T]) Data() T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.data
}

func (l *Loader[T]) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

func (l *Loader[T]) Err() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

func (l *Loader[T]) Endpoint() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.endpoint
}

// ============================================================================
// POST
// ============================================================================

// Poster es el hook POST. Post nunca entra en pánico por fallos esperados:
// devuelve nil y deja el mensaje en Err.
type Poster[Req, Resp any] struct {
	client *Client

	mu       sync.Mutex
	endpoint string
	loading  bool
	err      string
}

func NewPoster[Req, Resp any](c *Client, endpoint string) *Poster[Req, Resp] {
	return &Poster[Req, Resp]{client: c, endpoint: endpoint}
}

// SetEndpoint cambia el endpoint de las siguientes llamadas.
func (p *Poster[Req, Resp]) SetEndpoint(endpoint string) {
	p.mu.Lock()
	p.endpoint = endpoint
	p.mu.Unlock()
}

func (p *Poster[Req, Resp]) Endpoint() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.endpoint
}

// Post envía payload. Llamadas concurrentes no se encolan; la última en
// terminar define Loading y Err.
func (p *Poster[Req, Resp]) Post(ctx context.Context, payload Req) (*Resp, error) {
	p.mu.Lock()
	p.loading = true
	p.err = ""
	endpoint := p.endpoint
	p.mu.Unlock()

	var out Resp
	err := p.client.Post(ctx, endpoint, payload, &out)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false
	if err != nil {
		p.err = Message(err, "")
		return nil, err
	}
	return &out, nil
}

// PostMultipart envía un formulario multipart al mismo endpoint.
func (p *Poster[Req, Resp]) PostMultipart(ctx context.Context, form MultipartForm) (*Resp, error) {
	p.mu.Lock()
	p.loading = true
	p.err = ""
	endpoint := p.endpoint
	p.mu.Unlock()

	var out Resp
	err := p.client.PostMultipart(ctx, endpoint, form, &out)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false
	if err != nil {
		p.err = Message(err, "")
		return nil, err
	}
	return &out, nil
}

func (p *Poster[Req, Resp]) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

func (p *Poster[Req, Resp]) Err() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// ============================================================================
// DELETE
// ============================================================================

// Deleter es el hook DELETE. Prefiere el mensaje del servidor sobre el del
// transporte.
type Deleter[T any] struct {
	client *Client

	mu      sync.Mutex
	loading bool
	err     string
}

func NewDeleter[T any](c *Client) *Deleter[T] {
	return &Deleter[T]{client: c}
}

func (d *Deleter[T]) Delete(ctx context.Context, endpoint string) (*T, error) {
	d.mu.Lock()
	d.loading = true
	d.err = ""
	d.mu.Unlock()

	var out T
	err := d.client.Delete(ctx, endpoint, &out)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading = false
	if err != nil {
		d.err = deleteMessage(err)
		return nil, err
	}
	return &out, nil
}

func (d *Deleter[T]) Loading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading
}

func (d *Deleter[T]) Err() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

func deleteMessage(err error) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		if msg := reqErr.ServerMessage(); msg != "" {
			return msg
		}
	}
	return Message(err, defaultDeleteError)
}
