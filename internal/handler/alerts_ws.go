// ==============================================================================
// EXPIRY ALERT STREAM - internal/handler/alerts_ws.go
// ==============================================================================
// WebSocket feed of a driver's document expiry alerts, re-evaluated on a
// fixed period so a client dashboard stays current without polling.
// ==============================================================================

package handler

import (
	"context"
	"net/http"
	"time"

	"fleetkyc/internal/kyc"
	"fleetkyc/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced at the HTTP layer
	},
}

// AlertStreamHandler pushes expiry alerts over WebSocket.
type AlertStreamHandler struct {
	store  DriverProfileStore
	period time.Duration
	logger logger.Logger
}

// NewAlertStreamHandler creates an AlertStreamHandler refreshing every period.
func NewAlertStreamHandler(store DriverProfileStore, period time.Duration, log logger.Logger) *AlertStreamHandler {
	return &AlertStreamHandler{
		store:  store,
		period: period,
		logger: log,
	}
}

// StreamAlerts upgrades the connection and pushes the driver's current expiry
// alerts immediately and then on every tick.
func (h *AlertStreamHandler) StreamAlerts(w http.ResponseWriter, r *http.Request) {
	driverID, err := uuid.Parse(mux.Vars(r)["driverID"])
	if err != nil {
		http.Error(w, "Invalid driver ID", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer conn.Close()

	h.logger.Info("Alert stream client connected", map[string]interface{}{
		"driver_id": driverID.String(),
	})

	if err := h.sendAlerts(r.Context(), conn, driverID); err != nil {
		return
	}

	ticker := time.NewTicker(h.period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := h.sendAlerts(r.Context(), conn, driverID); err != nil {
				h.logger.Warn("Alert stream ended", map[string]interface{}{
					"error":     err.Error(),
					"driver_id": driverID.String(),
				})
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

func (h *AlertStreamHandler) sendAlerts(ctx context.Context, conn *websocket.Conn, driverID uuid.UUID) error {
	profile, err := h.store.GetProfile(ctx, driverID)
	if err != nil {
		return conn.WriteJSON(map[string]interface{}{
			"type":  "error",
			"error": err.Error(),
		})
	}

	alerts := kyc.CheckDocumentExpiry(profile.Documents, time.Now().UTC())
	return conn.WriteJSON(map[string]interface{}{
		"type":      "expiry_alerts",
		"timestamp": time.Now().UTC(),
		"driver_id": driverID,
		"alerts":    alerts,
	})
}
