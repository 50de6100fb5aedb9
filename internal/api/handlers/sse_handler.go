package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/entities"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/providers"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/infrastructure/observability"
)

const defaultHeartbeatInterval = 30 * time.Second

// SSEHandler streams real-time slot changes for a doctor
type SSEHandler struct {
	eventBus  providers.EventBus
	heartbeat time.Duration
	clients   map[int64]int
	mu        sync.RWMutex
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(eventBus providers.EventBus) *SSEHandler {
	return &SSEHandler{
		eventBus:  eventBus,
		heartbeat: defaultHeartbeatInterval,
		clients:   make(map[int64]int),
	}
}

// StreamDoctorSlots handles GET /api/stream/doctors/{id}/slots
func (h *SSEHandler) StreamDoctorSlots(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	if h.eventBus == nil {
		respondWithError(w, http.StatusServiceUnavailable, "event stream unavailable")
		return
	}

	ctx := r.Context()
	logger := observability.LoggerFromContext(ctx).With().Int64("doctor_id", doctorID).Logger()

	// Streams outlive the server write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	channel := providers.GetDoctorChannel(doctorID)
	events, err := h.eventBus.Subscribe(ctx, channel)
	if err != nil {
		logger.Error().Err(err).Str("channel", channel).Msg("failed to subscribe to slot events")
		respondWithError(w, http.StatusServiceUnavailable, "event stream unavailable")
		return
	}

	h.register(doctorID)
	defer h.unregister(doctorID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	h.sendEvent(w, "connected", map[string]interface{}{
		"doctor_id": doctorID,
		"timestamp": time.Now().UTC(),
	})
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("client disconnected from slot stream")
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now().UTC(),
			})
			flusher.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			if !isSlotEvent(event) {
				continue
			}
			h.sendEvent(w, string(event.EventType), event)
			flusher.Flush()
		}
	}
}

func isSlotEvent(event *entities.DoctorEvent) bool {
	if event == nil {
		return false
	}
	return event.EventType == entities.DoctorEventTypeSlotBooked ||
		event.EventType == entities.DoctorEventTypeSlotReleased
}

func (h *SSEHandler) register(doctorID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[doctorID]++
}

func (h *SSEHandler) unregister(doctorID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[doctorID]--
	if h.clients[doctorID] <= 0 {
		delete(h.clients, doctorID)
	}
}

func (h *SSEHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}

// GetClientCount returns the number of open slot streams
func (h *SSEHandler) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, n := range h.clients {
		count += n
	}
	return count
}

// StreamStats handles GET /api/stream/stats
func (h *SSEHandler) StreamStats(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	perDoctor := make(map[string]int, len(h.clients))
	for id, n := range h.clients {
		perDoctor[strconv.FormatInt(id, 10)] = n
	}
	h.mu.RUnlock()

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"total":   h.GetClientCount(),
		"doctors": perDoctor,
	})
}
