package net

import (
	"encoding/json"
	nethttp "net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vide-coded/voxel-warfare/internal/net/proto"
	"github.com/vide-coded/voxel-warfare/internal/telemetry"
)

// HTTPHandlerConfig carries the optional collaborators of the HTTP
// surface. A nil Registry simply omits counters from /telemetry.
type HTTPHandlerConfig struct {
	Registry *telemetry.Registry
	Logger   telemetry.Logger
}

// NewHTTPHandler builds the server mux: /healthz and /telemetry for
// operators, /join and /ws for clients.
func NewHTTPHandler(hub *Hub, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.NopLogger()
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/healthz", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/telemetry", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := struct {
			Status     string              `json:"status"`
			ServerTime int64               `json:"serverTime"`
			Tick       uint64              `json:"tick"`
			TickRate   int                 `json:"tickRate"`
			Heartbeat  int64               `json:"heartbeatMillis"`
			Clients    []ClientDiagnostics `json:"clients"`
			Counters   map[string]uint64   `json:"counters,omitempty"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			Tick:       hub.Tick(),
			TickRate:   hub.tickRate,
			Heartbeat:  heartbeatInterval.Milliseconds(),
			Clients:    hub.Diagnostics(),
		}
		if cfg.Registry != nil {
			payload.Counters = cfg.Registry.Snapshot()
		}

		data, err := json.Marshal(payload)
		if err != nil {
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	mux.HandleFunc("/join", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}

		join := hub.Join()
		data, err := proto.EncodeJoinResponse(join)
		if err != nil {
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	mux.HandleFunc("/ws", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		clientID := r.URL.Query().Get("id")
		if clientID == "" {
			httpError(w, "missing id", nethttp.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Printf("upgrade failed for %s: %v", clientID, err)
			return
		}

		hub.ServeSession(clientID, conn)
	})

	return mux
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
