package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"hwmonitor/internal/logger"
	"hwmonitor/internal/poller"
	"hwmonitor/internal/tree"
)

type Snapshotter interface {
	Snapshot() *tree.Node
}

type StatsProvider interface {
	Stats() poller.Stats
}

type SensorHandler struct {
	source     Snapshotter
	stats      StatsProvider
	instanceID uuid.UUID
	log        logger.Logger
}

func NewSensorHandler(source Snapshotter, stats StatsProvider, instanceID uuid.UUID, log logger.Logger) *SensorHandler {
	return &SensorHandler{source: source, stats: stats, instanceID: instanceID, log: log}
}

func (h *SensorHandler) Data(w http.ResponseWriter, r *http.Request) {
	root := h.source.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(root); err != nil {
		h.log.Error("http: failed to encode sensor tree", "error", err)
	}
}

type healthResponse struct {
	Status     string       `json:"status"`
	InstanceID uuid.UUID    `json:"instance_id"`
	Poller     poller.Stats `json:"poller"`
}

func (h *SensorHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:     "ok",
		InstanceID: h.instanceID,
		Poller:     h.stats.Stats(),
	}
	if resp.Poller.ConsecutiveFailures > 0 {
		resp.Status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Error("http: failed to encode health", "error", err)
	}
}
