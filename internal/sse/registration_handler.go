package sse

import (
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// RegistrationStatusHandler streams approval decisions to pending applicants
// over SSE. The endpoint is unauthenticated because applicants have no token
// yet; user IDs are opaque and the stream only ever carries approved/denied,
// so nothing sensitive is exposed.
type RegistrationStatusHandler struct {
	broadcaster *RegistrationBroadcaster
	logger      *slog.Logger
}

// NewRegistrationStatusHandler creates a handler backed by the broadcaster.
func NewRegistrationStatusHandler(broadcaster *RegistrationBroadcaster, logger *slog.Logger) *RegistrationStatusHandler {
	return &RegistrationStatusHandler{
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// ServeHTTP holds the stream open until a decision arrives or the client
// goes away. The router extracts userID from the path.
func (h *RegistrationStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.Context().Err() != nil {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		h.logger.Error("failed to flush headers", slog.String("error", err.Error()))
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	sub := h.broadcaster.Subscribe(userID)
	defer h.broadcaster.Unsubscribe(sub)

	log := h.logger.With(slog.String("user_id", userID))

	if err := h.sendEvent(w, rc, "connected", map[string]any{
		"status":  StatusPending,
		"message": "Waiting for admin approval",
	}); err != nil {
		log.Warn("failed to send initial message", slog.String("error", err.Error()))
		return
	}

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case event := <-sub.EventChan:
			// A decision is final. Send it and end the stream.
			if err := h.sendEvent(w, rc, "status", event); err != nil {
				log.Info("client disconnected during status send")
				return
			}
			log.Info("decision delivered, closing stream",
				slog.String("status", string(event.Status)))
			return

		case <-heartbeat.C:
			if err := h.sendEvent(w, rc, "heartbeat", map[string]any{
				"server_time": time.Now().UTC().Format(time.RFC3339),
			}); err != nil {
				log.Info("client disconnected during heartbeat")
				return
			}

		case <-sub.Done:
			log.Info("stream closed by broadcaster")
			return

		case <-r.Context().Done():
			return
		}
	}
}

func (h *RegistrationStatusHandler) sendEvent(w http.ResponseWriter, rc *http.ResponseController, eventType string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, payload); err != nil {
		return err
	}
	if err := rc.Flush(); err != nil {
		return err
	}

	// Refresh the write deadline so idle proxies do not cut us off.
	if err := rc.SetWriteDeadline(time.Now().Add(60 * time.Second)); err != nil {
		h.logger.Debug("failed to set write deadline", slog.String("error", err.Error()))
	}

	return nil
}
