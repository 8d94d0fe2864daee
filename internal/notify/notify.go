// ============================================================================
// NOTIFY - Toasts y navegación
// ============================================================================
// Los flujos no navegan con timers: devuelven un Outcome y Deliver muestra el
// toast y navega cuando el toast termina de mostrarse.
// ============================================================================

package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// DefaultDelay es el tiempo que un toast permanece visible.
const DefaultDelay = 4 * time.Second

// DefaultHeader es el encabezado cuando el toast no trae uno.
const DefaultHeader = "Notificación"

type Variant string

const (
	VariantSuccess Variant = "success"
	VariantDanger  Variant = "danger"
)

// Toast es una notificación auto-ocultable (success = verde, danger = rojo).
type Toast struct {
	Header  string
	Message string
	Variant Variant
	Delay   time.Duration
}

func Success(header, message string) Toast {
	return Toast{Header: header, Message: message, Variant: VariantSuccess}
}

func Danger(header, message string) Toast {
	return Toast{Header: header, Message: message, Variant: VariantDanger}
}

// withDefaults completa encabezado, variante y delay vacíos.
func (t Toast) withDefaults(delay time.Duration) Toast {
	if t.Header == "" {
		t.Header = DefaultHeader
	}
	if t.Variant == "" {
		t.Variant = VariantSuccess
	}
	if t.Delay <= 0 {
		t.Delay = delay
	}
	return t
}

// Notifier muestra toasts. El canal devuelto se cierra cuando el toast
// terminó de mostrarse.
type Notifier interface {
	Show(t Toast) <-chan struct{}
}

// ============================================================================
// Console
// ============================================================================

// Console escribe los toasts en un writer (la terminal del cli).
type Console struct {
	mu    sync.Mutex
	w     io.Writer
	delay time.Duration
}

// NewConsole crea un Console; delay <= 0 usa DefaultDelay.
func NewConsole(w io.Writer, delay time.Duration) *Console {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Console{w: w, delay: delay}
}

func (c *Console) Show(t Toast) <-chan struct{} {
	t = t.withDefaults(c.delay)

	c.mu.Lock()
	fmt.Fprintf(c.w, "%s %s: %s\n", icon(t.Variant), t.Header, t.Message)
	c.mu.Unlock()

	done := make(chan struct{})
	time.AfterFunc(t.Delay, func() { close(done) })
	return done
}

func icon(v Variant) string {
	switch v {
	case VariantDanger:
		return "❌"
	default:
		return "✅"
	}
}

// ============================================================================
// Recorder
// ============================================================================

// Recorder guarda los toasts y los da por terminados de inmediato.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *Recorder) Show(t Toast) <-chan struct{} {
	r.mu.Lock()
	r.toasts = append(r.toasts, t.withDefaults(DefaultDelay))
	r.mu.Unlock()

	done := make(chan struct{})
	close(done)
	return done
}

func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.toasts...)
}

// Last retorna el último toast mostrado.
func (r *Recorder) Last() (Toast, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.toasts) == 0 {
		return Toast{}, false
	}
	return r.toasts[len(r.toasts)-1], true
}

// ============================================================================
// Navegación
// ============================================================================

// Navigator cambia la ruta actual de la app.
type Navigator interface {
	Navigate(route string)
}

// History registra las rutas visitadas.
type History struct {
	mu     sync.Mutex
	routes []string
}

func NewHistory(start string) *History {
	return &History{routes: []string{start}}
}

func (h *History) Navigate(route string) {
	h.mu.Lock()
	h.routes = append(h.routes, route)
	h.mu.Unlock()
}

// Current retorna la ruta actual ("" si no hay).
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.routes) == 0 {
		return ""
	}
	return h.routes[len(h.routes)-1]
}

// Previous retorna la ruta anterior a la actual ("" si no hay).
func (h *History) Previous() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.routes) < 2 {
		return ""
	}
	return h.routes[len(h.routes)-2]
}

func (h *History) Routes() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.routes...)
}

// ============================================================================
// Outcome
// ============================================================================

// Outcome es lo que devuelve un flujo: un toast opcional y una ruta opcional.
type Outcome struct {
	Toast    *Toast
	Redirect string
}

// Deliver muestra el toast y, si hay Redirect, navega cuando el toast
// termina. Sin toast navega de inmediato. Si ctx se cancela antes, no navega.
func Deliver(ctx context.Context, n Notifier, nav Navigator, o Outcome) error {
	var done <-chan struct{}
	if o.Toast != nil && n != nil {
		done = n.Show(*o.Toast)
	}
	if o.Redirect == "" || nav == nil {
		return nil
	}
	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	nav.Navigate(o.Redirect)
	return nil
}
