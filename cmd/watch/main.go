// watch es un cliente de terminal para operar contra la API en vivo.
//
// Uso:
//
//	go run ./cmd/watch [-addr URL] [-token JWT] watch
//	go run ./cmd/watch [-addr URL] [-token JWT] mark <dogId> <fecha> <estado> [force]
//
// En modo watch se suscribe al stream SSE /api/events y mantiene una caché
// local confirmada por los eventos del servidor. En modo mark proyecta la
// marca de asistencia de forma optimista (se muestra antes de que el servidor
// confirme) y la revierte si la petición falla.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fa146612-art/kingdog-system-sub000/internal/application/dto"
	"github.com/fa146612-art/kingdog-system-sub000/internal/infrastructure/push"
	"github.com/fa146612-art/kingdog-system-sub000/pkg/echo"
)

func main() {
	addr := flag.String("addr", "http://localhost:8080", "URL base de la API")
	token := flag.String("token", os.Getenv("KINGDOG_TOKEN"), "token Bearer")
	flag.Parse()

	args := flag.Args()
	mode := "watch"
	if len(args) > 0 {
		mode = args[0]
	}

	client := &http.Client{Timeout: 15 * time.Second}
	store := echo.NewStore()

	var err error
	switch mode {
	case "watch":
		err = watchEvents(client, store, *addr, *token)
	case "mark":
		if len(args) < 4 {
			err = fmt.Errorf("uso: mark <dogId> <fecha> <estado> [force]")
		} else {
			force := len(args) > 4 && args[4] == "force"
			err = markAttendance(client, store, *addr, *token, args[1], args[2], args[3], force)
		}
	default:
		err = fmt.Errorf("modo desconocido: %s", mode)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// watchEvents consume el stream SSE e ingiere cada evento como estado
// confirmado de la caché local.
func watchEvents(client *http.Client, store *echo.Store, addr, token string) error {
	req, err := http.NewRequest(http.MethodGet, addr+"/api/events", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "text/event-stream")

	// Sin timeout: el stream queda abierto hasta que el servidor cierre.
	streaming := &http.Client{Transport: client.Transport}
	resp, err := streaming.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream de eventos: HTTP %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var event push.Event
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
			fmt.Fprintf(os.Stderr, "evento ilegible: %v\n", err)
			continue
		}
		store.Confirm(map[string]any{event.Topic + "/" + event.Key: event.Payload})
		fmt.Printf("[%s] %s %s (%d pendientes)\n", event.Topic, event.Action, event.Key, store.PendingCount())
	}
	return scanner.Err()
}

// markAttendance marca asistencia con eco optimista: la proyección se
// muestra de inmediato y solo la confirmación del servidor la vuelve verdad.
func markAttendance(client *http.Client, store *echo.Store, addr, token, dogID, date, status string, force bool) error {
	key := "attendance/" + date + "/" + dogID
	pendingID := store.Apply(key, status)
	value, pending, _ := store.Get(key)
	fmt.Printf("%s -> %v (pendiente=%v)\n", key, value, pending)

	body, err := json.Marshal(dto.MarkAttendanceRequest{
		DogID:  dogID,
		Date:   date,
		Status: status,
		Force:  force,
	})
	if err != nil {
		store.Rollback(pendingID)
		return err
	}

	req, err := http.NewRequest(http.MethodPost, addr+"/api/attendance/mark", bytes.NewReader(body))
	if err != nil {
		store.Rollback(pendingID)
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		store.Rollback(pendingID)
		return err
	}
	defer resp.Body.Close()
	payload, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusOK:
		var confirmed dto.MarkAttendanceResponse
		if err := json.Unmarshal(payload, &confirmed); err != nil {
			return err
		}
		store.Confirm(map[string]any{key: confirmed.Status})
		fmt.Printf("%s -> %s confirmado (tiquete restante %d)\n", key, confirmed.Status, confirmed.TicketRemaining)
		return nil
	case resp.StatusCode == http.StatusConflict:
		// El tiquete está agotado: la proyección se descarta y el operador
		// decide si reenviar con force.
		store.Rollback(pendingID)
		return fmt.Errorf("tiquete agotado; reintenta con: mark %s %s %s force", dogID, date, status)
	default:
		store.Rollback(pendingID)
		return fmt.Errorf("marcar asistencia: HTTP %d: %s", resp.StatusCode, payload)
	}
}
