package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	s.E.GET("/ws/chat/:problem_id", s.chatHandler.Chat)

	s.E.GET("/problems/:problem_id", s.problemHandler.LobbyGet)
	s.E.GET("/problems/:problem_id/summary", s.problemHandler.SummaryGet)

	s.E.GET("/stats", s.statsHandler.StatsGet)

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
}
