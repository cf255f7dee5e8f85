// Package statusapi exposes the latest meter status over HTTP and pushes
// every processed telegram to connected websocket clients.
package statusapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"smartmeter/pkg/config"
	"smartmeter/pkg/dispatch"
	"smartmeter/pkg/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local network deployment, no origin policy
	},
}

type Server struct {
	log    *logrus.Logger
	status *dispatch.StatusCache
	server *http.Server

	// Gorilla connections allow one concurrent writer; the per-client
	// mutex serializes the connect push against broadcasts.
	wsClients      map[*websocket.Conn]*sync.Mutex
	wsClientsMutex sync.RWMutex
}

func NewServer(cfg config.APIConfig, status *dispatch.StatusCache, log *logrus.Logger) *Server {
	s := &Server{
		log:       log,
		status:    status,
		wsClients: make(map[*websocket.Conn]*sync.Mutex),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/latest", s.handleLatest)
	mux.HandleFunc("/ws", s.handleWebSocket)

	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.ListenAddress, cfg.ListenPort),
		Handler: mux,
	}
	return s
}

// Run serves until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.server.Shutdown(shutdownCtx)
	}()

	s.log.Infof("Starting status API on %s.", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Name and Write make the server a telegram sink: every processed record
// is broadcast to the websocket clients. The status cache is already
// updated by the dispatch loop before the sinks run.
func (s *Server) Name() string {
	return "statusapi"
}

func (s *Server) Write(t *types.Telegram, loadStates map[string]bool) error {
	payload, err := statusPayload(t, loadStates)
	if err != nil {
		return err
	}

	s.wsClientsMutex.RLock()
	clients := make(map[*websocket.Conn]*sync.Mutex, len(s.wsClients))
	for client, mu := range s.wsClients {
		clients[client] = mu
	}
	s.wsClientsMutex.RUnlock()

	for client, mu := range clients {
		mu.Lock()
		err := client.WriteMessage(websocket.TextMessage, payload)
		mu.Unlock()
		if err != nil {
			s.removeWebSocketClient(client)
		}
	}
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Smart Meter API",
		"status":  "running",
	})
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	latest, loadStates := s.status.Latest()
	if latest == nil {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "No readings available yet",
		})
		return
	}

	payload, err := statusPayload(latest, loadStates)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	w.Write(payload)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnf("WebSocket upgrade error: %v", err)
		return
	}

	mu := s.addWebSocketClient(conn)

	// Send current reading immediately if available
	if latest, loadStates := s.status.Latest(); latest != nil {
		if payload, err := statusPayload(latest, loadStates); err == nil {
			mu.Lock()
			conn.WriteMessage(websocket.TextMessage, payload)
			mu.Unlock()
		}
	}

	// Keep connection alive
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.removeWebSocketClient(conn)
			break
		}
	}
}

func (s *Server) addWebSocketClient(conn *websocket.Conn) *sync.Mutex {
	mu := &sync.Mutex{}
	s.wsClientsMutex.Lock()
	s.wsClients[conn] = mu
	s.wsClientsMutex.Unlock()
	return mu
}

func (s *Server) removeWebSocketClient(conn *websocket.Conn) {
	s.wsClientsMutex.Lock()
	delete(s.wsClients, conn)
	s.wsClientsMutex.Unlock()
	conn.Close()
}

// statusPayload flattens the telegram and appends one load_on_<name>
// field per configured load.
func statusPayload(t *types.Telegram, loadStates map[string]bool) ([]byte, error) {
	flat := make(map[string]any, len(t.Fields)+len(loadStates)+1)
	flat["local_timestamp"] = t.Received.Format(time.RFC3339)
	for key, value := range t.Fields {
		flat[key] = value
	}
	for name, isOn := range loadStates {
		flat["load_on_"+name] = isOn
	}
	return json.Marshal(flat)
}
