package http

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/fa146612-art/kingdog-system-sub000/internal/infrastructure/push"
)

// EventsHandler sirve el stream de eventos en vivo por Server-Sent Events.
// SSE en vez de WebSocket: más simple y compatible con HTTP/2.
type EventsHandler struct {
	hub *push.Hub
}

// NewEventsHandler construye el handler sobre el hub.
func NewEventsHandler(hub *push.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream GET /api/events
// Cada evento del hub se serializa como un frame `data: {json}`. Un comentario
// keep-alive cada 30s evita que los proxies corten la conexión ociosa.
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	id, ch := h.hub.Subscribe()

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer h.hub.Unsubscribe(id)
		keepAlive := time.NewTicker(30 * time.Second)
		defer keepAlive.Stop()

		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				payload, err := json.Marshal(event)
				if err != nil {
					continue
				}
				if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			case <-keepAlive.C:
				if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}
