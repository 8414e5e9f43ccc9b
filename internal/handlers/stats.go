package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/pairchat/internal/stats"
)

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	// Active maps each problem with live sessions to its current count.
	Active map[string]int `json:"active"`
	stats.Snapshot
}

// StatsHandler serves the JSON stats endpoint.
type StatsHandler struct {
	engine PairingReader
	stats  StatsReader
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(engine PairingReader, stats StatsReader) *StatsHandler {
	return &StatsHandler{engine: engine, stats: stats}
}

// StatsGet returns live counts and cumulative counters.
func (h *StatsHandler) StatsGet(c echo.Context) error {
	resp := StatsResponse{
		Active:   h.engine.ActiveCounts(),
		Snapshot: stats.Snapshot{Problems: []stats.ProblemStats{}},
	}
	if h.stats != nil {
		resp.Snapshot = h.stats.Snapshot()
	}
	return c.JSON(http.StatusOK, resp)
}
