package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/fa146612-art/kingdog-system-sub000/internal/infrastructure/push"
)

// canal NOTIFY compartido por todas las instancias del servicio.
const notifyChannel = "kingdog_events"

// Listener escucha NOTIFY en kingdog_events y republica los payloads en el
// hub local: así los eventos generados por otra instancia llegan a los
// suscriptores SSE de esta.
type Listener struct {
	pool *pgxpool.Pool
	hub  *push.Hub
}

// NewListener construye el listener sobre el pool y el hub locales.
func NewListener(pool *pgxpool.Pool, hub *push.Hub) *Listener {
	return &Listener{pool: pool, hub: hub}
}

// Start corre el bucle de escucha hasta que ctx se cancele. Ante un error de
// conexión espera y re-adquiere (la pérdida de eventos es aceptable: la
// verdad vive en la base).
func (l *Listener) Start(ctx context.Context) {
	go func() {
		for {
			if err := l.listen(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Warn().Err(err).Msg("listener caído; reintentando")
				select {
				case <-ctx.Done():
					return
				case <-time.After(5 * time.Second):
				}
			}
		}
	}()
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return err
	}
	log.Info().Str("channel", notifyChannel).Msg("escuchando notificaciones")

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		var event push.Event
		if err := json.Unmarshal([]byte(notification.Payload), &event); err != nil {
			log.Warn().Err(err).Str("payload", notification.Payload).
				Msg("payload de NOTIFY inválido")
			continue
		}
		l.hub.Publish(event)
	}
}

// Notify publica un evento en el canal NOTIFY para las demás instancias.
func Notify(ctx context.Context, pool *pgxpool.Pool, event push.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, "SELECT pg_notify($1, $2)", notifyChannel, string(payload))
	return err
}

// NotifyPublisher implementa el puerto Publisher de los casos de uso sobre
// pg_notify. Todos los eventos viajan por la base y vuelven por el Listener,
// incluidos los propios: un solo camino para una y para N instancias.
type NotifyPublisher struct {
	pool *pgxpool.Pool
}

// NewNotifyPublisher construye el publicador sobre el pool.
func NewNotifyPublisher(pool *pgxpool.Pool) *NotifyPublisher {
	return &NotifyPublisher{pool: pool}
}

// Publish envía el evento. Un fallo se registra y se descarta: los eventos
// son señal, la verdad vive en la base.
func (p *NotifyPublisher) Publish(event push.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := Notify(ctx, p.pool, event); err != nil {
		log.Warn().Err(err).Str("topic", event.Topic).Msg("pg_notify falló; evento descartado")
	}
}
