package session

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// AuthStorageKey es la key donde se persiste la sesión.
const AuthStorageKey = "auth-storage"

// State es la identidad del usuario autenticado. Los punteros nil son los
// null del estado inicial.
type State struct {
	ID            *string `json:"id"`
	Mail          *string `json:"mail"`
	NombreUsuario *string `json:"nombreUsuario"`
	Verificar2FA  bool    `json:"verificar2FA"`
	UKey          *string `json:"uKey"`
}

// persisted es el formato en disco: {"state": {...}, "version": 0}
type persisted struct {
	State   State `json:"state"`
	Version int   `json:"version"`
}

// Store guarda la sesión y la persiste en cada mutación. Se inyecta en los
// flujos que la necesitan; no hay instancia global.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	state   State
}

// NewStore rehidrata la sesión desde storage. Un payload corrupto se
// descarta y la sesión arranca vacía.
func NewStore(storage Storage) (*Store, error) {
	s := &Store{storage: storage}

	data, ok, err := storage.Get(AuthStorageKey)
	if err != nil {
		return nil, fmt.Errorf("leer sesión: %w", err)
	}
	if !ok {
		return s, nil
	}

	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		log.Printf("⚠️  Sesión persistida inválida, se descarta: %v", err)
		return s, nil
	}
	s.state = p.State
	return s, nil
}

// State retorna una copia del estado actual.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// IsAuthenticated se evalúa en cada lectura: id, mail y nombreUsuario no nulos.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ID != nil && s.state.Mail != nil && s.state.NombreUsuario != nil
}

// SetAuth reemplaza la sesión completa.
func (s *Store) SetAuth(id, mail, nombreUsuario string, verificar2FA bool, uKey string) error {
	return s.update(func(st *State) {
		*st = State{
			ID:            ptr(id),
			Mail:          ptr(mail),
			NombreUsuario: ptr(nombreUsuario),
			Verificar2FA:  verificar2FA,
			UKey:          ptr(uKey),
		}
	})
}

func (s *Store) SetID(id string) error {
	return s.update(func(st *State) { st.ID = ptr(id) })
}

func (s *Store) SetMail(mail string) error {
	return s.update(func(st *State) { st.Mail = ptr(mail) })
}

func (s *Store) SetNombreUsuario(nombreUsuario string) error {
	return s.update(func(st *State) { st.NombreUsuario = ptr(nombreUsuario) })
}

func (s *Store) SetVerificar2FA(v bool) error {
	return s.update(func(st *State) { st.Verificar2FA = v })
}

func (s *Store) SetUKey(uKey string) error {
	return s.update(func(st *State) { st.UKey = ptr(uKey) })
}

// ClearAuth vuelve al estado inicial (logout).
func (s *Store) ClearAuth() error {
	return s.update(func(st *State) { *st = State{} })
}

// update aplica fn y persiste antes de liberar el lock. Si la escritura
// falla el estado en memoria se revierte.
func (s *Store) update(fn func(*State)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	fn(&s.state)

	data, err := json.Marshal(persisted{State: s.state})
	if err != nil {
		s.state = prev
		return fmt.Errorf("serializar sesión: %w", err)
	}
	if err := s.storage.Set(AuthStorageKey, data); err != nil {
		s.state = prev
		return fmt.Errorf("persistir sesión: %w", err)
	}
	return nil
}

func (st State) clone() State {
	return State{
		ID:            copyPtr(st.ID),
		Mail:          copyPtr(st.Mail),
		NombreUsuario: copyPtr(st.NombreUsuario),
		Verificar2FA:  st.Verificar2FA,
		UKey:          copyPtr(st.UKey),
	}
}

// Value retorna el string o "" si es nil.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func ptr(s string) *string {
	return &s
}

func copyPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
