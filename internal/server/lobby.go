package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	streamInterval = 3 * time.Second
	// A ping goes out after this many unchanged polls to keep proxies from
	// closing the idle stream.
	pingEvery = 10
)

// handleStreamGames pushes the joinable-games list over Server-Sent Events.
// An event goes out when the list changes; pings fill the quiet stretches.
func (s *Server) handleStreamGames(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httpError(w, http.StatusInternalServerError, "streaming is not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Debug("sse stream opened", zap.String("remote", r.RemoteAddr))

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	var lastPayload []byte
	unchanged := 0

	send := func() bool {
		payload, err := json.Marshal(s.pendingGames())
		if err != nil {
			s.logger.Error("encode games list", zap.Error(err))
			return false
		}
		if !bytes.Equal(payload, lastPayload) {
			fmt.Fprintf(w, "event: games_update\ndata: %s\n\n", payload)
			flusher.Flush()
			lastPayload = payload
			unchanged = 0
			return true
		}
		unchanged++
		if unchanged >= pingEvery {
			fmt.Fprint(w, "event: ping\ndata: \n\n")
			flusher.Flush()
			unchanged = 0
		}
		return true
	}

	if !send() {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("sse stream closed", zap.String("remote", r.RemoteAddr))
			return
		case <-ticker.C:
			if !send() {
				return
			}
		}
	}
}
