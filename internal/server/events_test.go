package server

import (
	"MemeDubber/internal/service/dubber"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Несколько параллельных озвучек шлют события в один и тот же сокет;
// подписчик должен получить каждое событие целым кадром.
func TestHubConcurrentReports(t *testing.T) {
	h := NewHub(zap.NewNop().Sugar())
	defer h.Close()

	srv := httptest.NewServer(http.HandlerFunc(h.handleEvents))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	const (
		workers = 8
		events  = 200
	)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < events; j++ {
				h.Report(fmt.Sprintf("req-%d", n), dubber.StageExtracting, "")
			}
		}(i)
	}

	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	for got := 0; got < workers*events; got++ {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("read event %d: %v", got, err)
		}
		if ev.Stage != string(dubber.StageExtracting) {
			t.Fatalf("event %d: stage = %q", got, ev.Stage)
		}
		if !strings.HasPrefix(ev.RequestID, "req-") {
			t.Fatalf("event %d: request_id = %q", got, ev.RequestID)
		}
	}
	wg.Wait()
}

func TestHubClosedRejectsSubscribers(t *testing.T) {
	h := NewHub(zap.NewNop().Sugar())
	h.Close()

	srv := httptest.NewServer(http.HandlerFunc(h.handleEvents))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return // апгрейд мог не состояться вовсе, это тоже приемлемо
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("closed hub must not keep the connection alive")
	}
}
