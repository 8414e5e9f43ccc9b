package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/pairchat/internal/pairing"
	"github.com/nfrund/pairchat/internal/stats"
	"github.com/nfrund/pairchat/internal/view"
	"github.com/nfrund/pairchat/internal/view/dto"
)

// PairingReader is the read side of the pairing engine.
type PairingReader interface {
	Snapshot(problemID string) pairing.TopicSnapshot
	ActiveCounts() map[string]int
}

// StatsReader is the read side of the stats service.
type StatsReader interface {
	Snapshot() stats.Snapshot
	Problem(problemID string) (stats.ProblemStats, bool)
}

// ProblemHandler serves the per-problem HTML pages.
type ProblemHandler struct {
	engine PairingReader
	stats  StatsReader
}

// NewProblemHandler creates a new ProblemHandler.
func NewProblemHandler(engine PairingReader, stats StatsReader) *ProblemHandler {
	return &ProblemHandler{engine: engine, stats: stats}
}

// LobbyGet renders the chat page of a problem.
func (h *ProblemHandler) LobbyGet(c echo.Context) error {
	return c.Render(http.StatusOK, "", view.LobbyPage(h.summary(c.Param("problem_id"))))
}

// SummaryGet renders the live panel fragment polled by the lobby page.
func (h *ProblemHandler) SummaryGet(c echo.Context) error {
	return c.Render(http.StatusOK, "", view.SummaryPanel(h.summary(c.Param("problem_id"))))
}

func (h *ProblemHandler) summary(problemID string) dto.ProblemSummary {
	summary := dto.ProblemSummary{
		ProblemID: problemID,
		Online:    h.engine.Snapshot(problemID).Active,
	}
	if h.stats != nil {
		if p, ok := h.stats.Problem(problemID); ok {
			summary.Connections = p.Connections
			summary.Pairings = p.Pairings
		}
	}
	return summary
}
