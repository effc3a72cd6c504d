package server

import (
	"MemeDubber/internal/service/dubber"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event событие прогресса озвучки, уходит подписчикам ленты.
type Event struct {
	RequestID string `json:"request_id"`
	Stage     string `json:"stage"`
	Detail    string `json:"detail,omitempty"`
	Time      string `json:"time"`
}

// Hub раздаёт события прогресса по WebSocket. Страница подписывается на
// /api/events и показывает статус текущей озвучки без перезагрузки.
type Hub struct {
	logger   *zap.SugaredLogger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	closed  bool
}

func NewHub(logger *zap.SugaredLogger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// страница и API живут на одном origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

func (h *Hub) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("Не удалось апгрейдить соединение ленты прогресса", "error", err)
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	// Клиент ничего не шлёт; читаем только ради обнаружения разрыва
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(conn)
				return
			}
		}
	}()
}

// Report реализует dubber.Reporter.
func (h *Hub) Report(requestID string, stage dubber.Stage, detail string) {
	h.broadcast(Event{
		RequestID: requestID,
		Stage:     string(stage),
		Detail:    detail,
		Time:      time.Now().Format(time.RFC3339),
	})
}

// broadcast пишет событие всем подписчикам. Запись идёт под h.mu:
// у websocket.Conn допустим только один писатель, а события могут
// приходить из нескольких одновременных запросов.
func (h *Hub) broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if err := c.WriteJSON(ev); err != nil {
			delete(h.clients, c)
			c.Close()
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// Close закрывает все подписки; новые не принимаются.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.clients = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}
