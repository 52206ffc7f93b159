// Package push implementa el servicio de publicación/suscripción que empuja
// actualizaciones en vivo a la UI. Sustituye el estado global ambiental por
// un servicio explícito con ciclo de vida (Start/Stop) inyectado en los
// consumidores.
package push

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Tópicos publicados por el motor.
const (
	TopicTransactions = "transactions"
	TopicCustomers    = "customers"
	TopicAttendance   = "attendance"
	TopicTickets      = "tickets"
)

// Event notificación de cambio empujada a los suscriptores.
type Event struct {
	Topic   string `json:"topic"`
	Action  string `json:"action"` // created | updated | deleted | reconciled | marked | charged | expiring
	Key     string `json:"key"`    // id del registro afectado
	Payload any    `json:"payload,omitempty"`
}

// Hub fan-out en memoria. Los suscriptores lentos pierden eventos en lugar de
// bloquear al publicador: la UI siempre puede releer el estado confirmado.
type Hub struct {
	mu      sync.RWMutex
	subs    map[string]chan Event
	events  chan Event
	done    chan struct{}
	stopped bool
	buffer  int
}

// NewHub construye el hub. buffer es el tamaño de cola por suscriptor.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		subs:   make(map[string]chan Event),
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
		buffer: buffer,
	}
}

// Start arranca el bucle de distribución.
func (h *Hub) Start() {
	go h.loop()
}

// Stop detiene el bucle y cierra los canales de los suscriptores.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true
	close(h.done)
	for id, ch := range h.subs {
		close(ch)
		delete(h.subs, id)
	}
}

// Publish encola un evento sin bloquear. Si el hub está detenido o saturado,
// el evento se descarta (la verdad vive en la base; los eventos son señal).
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()
	if stopped {
		return
	}
	select {
	case h.events <- event:
	default:
		log.Warn().Str("topic", event.Topic).Str("key", event.Key).
			Msg("hub saturado: evento descartado")
	}
}

// Subscribe registra un suscriptor y devuelve su id y canal.
func (h *Hub) Subscribe() (string, <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := uuid.New().String()
	ch := make(chan Event, h.buffer)
	if !h.stopped {
		h.subs[id] = ch
	} else {
		close(ch)
	}
	return id, ch
}

// Unsubscribe retira un suscriptor y cierra su canal.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		close(ch)
		delete(h.subs, id)
	}
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.done:
			return
		case event := <-h.events:
			h.mu.RLock()
			for id, ch := range h.subs {
				select {
				case ch <- event:
				default:
					// Suscriptor lento: se descarta el evento para ese canal.
					log.Debug().Str("sub", id).Str("topic", event.Topic).
						Msg("suscriptor lento: evento descartado")
				}
			}
			h.mu.RUnlock()
		}
	}
}
