package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/securitycam/central/internal/data"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Browser viewers connect cross-origin on the LAN; CORS policy is
	// enforced by the HTTP middleware, not the upgrade.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	streamPollInterval = time.Second
	streamWriteWait    = 10 * time.Second
	streamPingPeriod   = 30 * time.Second
	streamBatchLimit   = 200
)

// GET /api/v1/logs/stream?after_id=&source=&levels=
//
// Upgrades to a websocket and tails the log table: new lines are pushed as
// JSON arrays, using the row ID as the watermark so nothing is re-sent.
func (h *LogHandler) Stream(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	watermark := 0
	if raw := r.URL.Query().Get("after_id"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(w, r, "after_id must be a non-negative integer")
			return
		}
		watermark = n
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}
	defer conn.Close()

	// Reader goroutine drains control frames and detects the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	poll := time.NewTicker(streamPollInterval)
	defer poll.Stop()
	ping := time.NewTicker(streamPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-poll.C:
			lines, err := h.Logs.ListAfterID(r.Context(), watermark, filter, streamBatchLimit)
			if err != nil {
				log.Printf("log stream: query after %d: %v", watermark, err)
				return
			}
			if len(lines) == 0 {
				continue
			}
			watermark = lines[len(lines)-1].ID

			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(streamBatch{Logs: lines, Watermark: watermark}); err != nil {
				return
			}
		}
	}
}

type streamBatch struct {
	Logs      []*data.LogLine `json:"logs"`
	Watermark int             `json:"watermark"`
}
