// Package echo implementa la capa de eco optimista del cliente: una caché de
// instantáneas confirmadas por el store y, encima, un mapa de overlays de
// mutaciones en vuelo etiquetadas como pendientes. La UI proyecta la mutación
// antes de que el store la confirme (ocultación de latencia); las lecturas
// críticas para la corrección (reconciliación) usan solo el estado
// confirmado.
package echo

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// PendingID identifica una mutación en vuelo.
type PendingID string

type pendingEntry struct {
	id        PendingID
	key       string
	value     any
	appliedAt time.Time
}

// Store caché de dos capas: confirmado + overlays pendientes por clave.
type Store struct {
	mu        sync.RWMutex
	confirmed map[string]any
	pending   map[PendingID]*pendingEntry
	byKey     map[string][]PendingID // orden de aplicación por clave
}

// NewStore construye la caché vacía.
func NewStore() *Store {
	return &Store{
		confirmed: make(map[string]any),
		pending:   make(map[PendingID]*pendingEntry),
		byKey:     make(map[string][]PendingID),
	}
}

// Apply materializa la proyección pendiente de una mutación recién emitida.
// La UI la ve de inmediato; el store aún no la confirmó.
func (s *Store) Apply(key string, value any) PendingID {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := &pendingEntry{
		id:        PendingID(uuid.New().String()),
		key:       key,
		value:     value,
		appliedAt: time.Now(),
	}
	s.pending[entry.id] = entry
	s.byKey[key] = append(s.byKey[key], entry.id)
	return entry.id
}

// Get devuelve el valor visible para la clave: el overlay pendiente más
// reciente si existe, si no la instantánea confirmada. pending indica si lo
// devuelto es una proyección sin confirmar.
func (s *Store) Get(key string) (value any, pending, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ids := s.byKey[key]; len(ids) > 0 {
		entry := s.pending[ids[len(ids)-1]]
		return entry.value, true, true
	}
	v, ok := s.confirmed[key]
	return v, false, ok
}

// Confirmed devuelve solo el valor confirmado por el store, ignorando
// overlays. Es la vista que usan las recomputaciones de corrección.
func (s *Store) Confirmed(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.confirmed[key]
	return v, ok
}

// Confirm ingiere una instantánea confirmada del store: actualiza la caché y
// limpia los overlays pendientes de las claves confirmadas (la verdad del
// store reemplaza la proyección).
func (s *Store) Confirm(records map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, value := range records {
		s.confirmed[key] = value
		for _, id := range s.byKey[key] {
			delete(s.pending, id)
		}
		delete(s.byKey, key)
	}
}

// Rollback descarta el overlay de una mutación fallida. No hay reintento
// automático: reintentar una mutación financiera podría aplicarla dos veces;
// el fallo se muestra al usuario y él decide.
func (s *Store) Rollback(id PendingID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.pending[id]
	if !ok {
		return false
	}
	delete(s.pending, id)
	ids := s.byKey[entry.key]
	for i, other := range ids {
		if other == id {
			s.byKey[entry.key] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(s.byKey[entry.key]) == 0 {
		delete(s.byKey, entry.key)
	}
	return true
}

// PendingCount número de mutaciones en vuelo (para indicadores de la UI).
func (s *Store) PendingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pending)
}

// Reset descarta TODO el estado sin confirmar (recarga de la página): el
// store sigue siendo la fuente de verdad.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = make(map[PendingID]*pendingEntry)
	s.byKey = make(map[string][]PendingID)
}
