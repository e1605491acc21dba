// Package ws feed en vivo del ledger por WebSocket.
package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

var _ inventory.LedgerListener = (*Hub)(nil)

// EventTransactionRecorded evento emitido por cada transacción confirmada.
const EventTransactionRecorded = "transaction_recorded"

// Conn lo que el hub necesita de una conexión (*websocket.Conn lo cumple).
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Event mensaje enviado a los clientes.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub mantiene los clientes conectados y difunde los eventos del ledger.
type Hub struct {
	clients    map[Conn]bool
	register   chan Conn
	unregister chan Conn
	broadcast  chan []byte
	done       chan struct{}
	mutex      sync.Mutex
	log        *logger.Logger
}

// NewHub crea el hub. buffer es el número de eventos pendientes antes de descartar.
func NewHub(log *logger.Logger, buffer int) *Hub {
	return &Hub{
		clients:    make(map[Conn]bool),
		register:   make(chan Conn),
		unregister: make(chan Conn),
		broadcast:  make(chan []byte, buffer),
		done:       make(chan struct{}),
		log:        log.Component("ws_hub"),
	}
}

// Run procesa altas, bajas y difusiones hasta que ctx se cancela.
// Al salir cierra todas las conexiones; altas y bajas posteriores ya no bloquean.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for conn := range h.clients {
				_ = conn.Close()
				delete(h.clients, conn)
			}
			h.mutex.Unlock()
			return

		case conn := <-h.register:
			h.mutex.Lock()
			h.clients[conn] = true
			n := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug().Int("clients", n).Msg("cliente conectado")

		case conn := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				_ = conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.broadcast:
			h.mutex.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					_ = conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Clients número de clientes conectados.
func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Register da de alta una conexión; bloquea hasta que Run la procesa.
// Devuelve false (y cierra la conexión) si el hub ya se detuvo.
func (h *Hub) Register(conn Conn) bool {
	select {
	case h.register <- conn:
		return true
	case <-h.done:
		_ = conn.Close()
		return false
	}
}

// Unregister da de baja una conexión.
func (h *Hub) Unregister(conn Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Done se cierra cuando Run termina.
func (h *Hub) Done() <-chan struct{} { return h.done }

// Publish encola un evento. Nunca bloquea: si el buffer está lleno el evento se descarta.
func (h *Hub) Publish(event string, data interface{}) {
	msg, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		h.log.Warn().Err(err).Str("event", event).Msg("serializar evento")
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn().Str("event", event).Msg("buffer lleno, evento descartado")
	}
}

// TransactionRecorded difunde la transacción confirmada.
func (h *Hub) TransactionRecorded(_ context.Context, tx dto.TransactionResponse) {
	h.Publish(EventTransactionRecorded, tx)
}

// UpgradeOnly rechaza con 426 las peticiones que no piden upgrade a WebSocket.
func UpgradeOnly(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return c.SendStatus(fiber.StatusUpgradeRequired)
}

// Handler registra la conexión y la mantiene abierta leyendo hasta que el cliente cierra.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		if !h.Register(c) {
			return
		}
		defer h.Unregister(c)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	})
}
