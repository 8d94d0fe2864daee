package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDeliverNavigatesAfterToast(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, 30*time.Millisecond)
	h := NewHistory("/login")

	toast := Success("Notificación!", "Acceso exitoso! Redirigiendo... ")
	start := time.Now()
	if err := Deliver(context.Background(), c, h, Outcome{Toast: &toast, Redirect: "/verify2fa"}); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("Navigation happened before the toast finished (%v)", elapsed)
	}
	if h.Current() != "/verify2fa" || h.Previous() != "/login" {
		t.Errorf("Unexpected history %v", h.Routes())
	}
	if !strings.Contains(buf.String(), "✅ Notificación!: Acceso exitoso!") {
		t.Errorf("Unexpected console output %q", buf.String())
	}
}

func TestDeliverWithoutToastNavigatesNow(t *testing.T) {
	h := NewHistory("/verify2fa")
	Deliver(context.Background(), &Recorder{}, h, Outcome{Redirect: "/login"})
	if h.Current() != "/login" {
		t.Errorf("Expected /login, got %s", h.Current())
	}
}

func TestDeliverCancelled(t *testing.T) {
	c := NewConsole(&bytes.Buffer{}, time.Hour)
	h := NewHistory("/")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	toast := Danger("Error", "x")
	err := Deliver(ctx, c, h, Outcome{Toast: &toast, Redirect: "/login"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if h.Current() != "/" {
		t.Error("Cancelled delivery must not navigate")
	}
}

func TestRecorderDefaults(t *testing.T) {
	r := &Recorder{}
	Deliver(context.Background(), r, nil, Outcome{Toast: &Toast{Message: "hola"}})

	last, ok := r.Last()
	if !ok {
		t.Fatal("Expected a toast")
	}
	if last.Header != DefaultHeader || last.Variant != VariantSuccess || last.Delay != DefaultDelay {
		t.Errorf("Defaults not applied: %+v", last)
	}
	if len(r.Toasts()) != 1 {
		t.Errorf("Expected 1 toast, got %d", len(r.Toasts()))
	}
}

func TestConsoleVariants(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, time.Millisecond)

	<-c.Show(Danger("Error", "Usuario o contraseña incorrectos"))
	<-c.Show(Success("", "Datos actualizados"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected two toasts, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "❌ Error:") {
		t.Errorf("Danger toast should use ❌, got %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "✅ "+DefaultHeader+":") {
		t.Errorf("Success toast should use ✅ and the default header, got %q", lines[1])
	}
}
