package session

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestIsAuthenticatedAllCombinations(t *testing.T) {
	for mask := 0; mask < 8; mask++ {
		s, err := NewStore(NewMemoryStorage())
		if err != nil {
			t.Fatalf("NewStore: %v", err)
		}
		if mask&1 != 0 {
			s.SetID("u1")
		}
		if mask&2 != 0 {
			s.SetMail("gamer@hub.mx")
		}
		if mask&4 != 0 {
			s.SetNombreUsuario("ProGamer")
		}
		want := mask == 7
		if got := s.IsAuthenticated(); got != want {
			t.Errorf("mask %03b: expected %v, got %v", mask, want, got)
		}
	}
}

func TestSetAuthSurvivesReload(t *testing.T) {
	storage, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStorage: %v", err)
	}
	s, _ := NewStore(storage)
	if err := s.SetAuth("u1", "gamer@hub.mx", "ProGamer", true, "ukey-123"); err != nil {
		t.Fatalf("SetAuth: %v", err)
	}

	reloaded, err := NewStore(storage)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	st := reloaded.State()
	if Value(st.ID) != "u1" || Value(st.Mail) != "gamer@hub.mx" || Value(st.NombreUsuario) != "ProGamer" || !st.Verificar2FA || Value(st.UKey) != "ukey-123" {
		t.Errorf("Unexpected rehydrated state %+v", st)
	}
	if !reloaded.IsAuthenticated() {
		t.Error("Reloaded session should be authenticated")
	}
}

func TestClearAuth(t *testing.T) {
	storage := NewMemoryStorage()
	s, _ := NewStore(storage)
	s.SetAuth("u1", "gamer@hub.mx", "ProGamer", true, "k")

	if err := s.ClearAuth(); err != nil {
		t.Fatalf("ClearAuth: %v", err)
	}
	if s.IsAuthenticated() {
		t.Error("Expected not authenticated after ClearAuth")
	}
	st := s.State()
	if st.ID != nil || st.Mail != nil || st.NombreUsuario != nil || st.UKey != nil || st.Verificar2FA {
		t.Errorf("Expected initial state, got %+v", st)
	}

	reloaded, _ := NewStore(storage)
	if reloaded.IsAuthenticated() {
		t.Error("Cleared state should persist")
	}
}

func TestStoreToleratesOldPayloads(t *testing.T) {
	storage := NewMemoryStorage()
	storage.Set(AuthStorageKey, []byte(`{"state":{"mail":"a@b.mx","nombreUsuario":"Gamer","verificar2FA":false,"legacy":1},"version":0}`))

	s, err := NewStore(storage)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	st := s.State()
	if st.ID != nil {
		t.Error("Missing id should be null")
	}
	if Value(st.Mail) != "a@b.mx" {
		t.Errorf("Expected mail to be kept, got %v", st.Mail)
	}
	if s.IsAuthenticated() {
		t.Error("Payload without id is not authenticated")
	}
}

func TestStoreDiscardsCorruptPayload(t *testing.T) {
	storage := NewMemoryStorage()
	storage.Set(AuthStorageKey, []byte(`{no es json`))

	s, err := NewStore(storage)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if s.IsAuthenticated() {
		t.Error("Corrupt payload must start empty")
	}
}

type failingStorage struct{ *MemoryStorage }

func (failingStorage) Set(string, []byte) error { return errors.New("disco lleno") }

func TestStoreRevertsOnPersistFailure(t *testing.T) {
	s, _ := NewStore(failingStorage{NewMemoryStorage()})
	if err := s.SetAuth("u1", "m", "n", false, "k"); err == nil {
		t.Fatal("Expected persist error")
	}
	if s.IsAuthenticated() {
		t.Error("State must not change when persisting fails")
	}
}

func TestStateIsACopy(t *testing.T) {
	s, _ := NewStore(NewMemoryStorage())
	s.SetMail("a@b.mx")
	st := s.State()
	*st.Mail = "otro"
	if Value(s.State().Mail) != "a@b.mx" {
		t.Error("State() must not expose internal pointers")
	}
}

func TestConcurrentSetters(t *testing.T) {
	s, _ := NewStore(NewMemoryStorage())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() { defer wg.Done(); s.SetID("u1") }()
		go func() { defer wg.Done(); s.SetMail("a@b.mx") }()
		go func() { defer wg.Done(); s.SetNombreUsuario("Gamer") }()
	}
	wg.Wait()
	if !s.IsAuthenticated() {
		t.Error("Expected authenticated after concurrent setters")
	}
}

func TestFileStoragePermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	storage, err := NewFileStorage(dir)
	if err != nil {
		t.Fatalf("NewFileStorage: %v", err)
	}
	if err := storage.Set("token", []byte("abc")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "token.json"))
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected 0600, got %o", perm)
	}

	if _, _, err := storage.Get("../escape"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Expected ErrInvalidKey, got %v", err)
	}
	if err := storage.Remove("nope"); err != nil {
		t.Errorf("Removing a missing key should not fail: %v", err)
	}
}
