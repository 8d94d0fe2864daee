package session

import "testing"

func TestRememberStore(t *testing.T) {
	r := NewRememberStore(NewMemoryStorage())

	if _, ok := r.Load(); ok {
		t.Error("Expected nothing remembered")
	}

	if err := r.Save("gamer@hub.mx", true); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok := r.Load()
	if !ok || got.Usuario != "gamer@hub.mx" || !got.RememberMe {
		t.Errorf("Unexpected remembered value %+v", got)
	}

	if err := r.Save("gamer@hub.mx", false); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, ok := r.Load(); ok {
		t.Error("Unchecking remember-me should delete the entry")
	}
}

func TestRememberIndependentOfSession(t *testing.T) {
	storage := NewMemoryStorage()
	s, _ := NewStore(storage)
	r := NewRememberStore(storage)

	s.SetAuth("u1", "gamer@hub.mx", "ProGamer", false, "")
	r.Save("gamer@hub.mx", true)
	s.ClearAuth()

	if _, ok := r.Load(); !ok {
		t.Error("Logout must not clear remember-me")
	}
}

func TestTokens(t *testing.T) {
	tk := NewTokens(NewMemoryStorage())
	if tk.Get() != "" {
		t.Error("Expected empty token")
	}
	tk.Set("jwt.abc")
	if tk.Get() != "jwt.abc" {
		t.Errorf("Unexpected token %q", tk.Get())
	}
	tk.Clear()
	if tk.Get() != "" {
		t.Error("Expected token cleared")
	}
}

func TestTwoFactorMarkers(t *testing.T) {
	m := NewTwoFactorMarkers(NewMemoryStorage())
	if m.Pending() || m.Email() != "" {
		t.Error("Expected no pending challenge")
	}

	m.Begin("gamer@hub.mx")
	if !m.Pending() || m.Email() != "gamer@hub.mx" {
		t.Error("Expected pending challenge for gamer@hub.mx")
	}

	m.Clear()
	if m.Pending() || m.Email() != "" {
		t.Error("Expected markers cleared")
	}
}
