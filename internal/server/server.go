package server

import (
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/pairchat/internal/config"
	"github.com/nfrund/pairchat/internal/handlers"
	"github.com/nfrund/pairchat/internal/middleware"
	"github.com/nfrund/pairchat/internal/pairing"
	"github.com/nfrund/pairchat/internal/pubsub"
	"github.com/nfrund/pairchat/internal/rendering"
	"github.com/nfrund/pairchat/internal/stats"
	"github.com/nfrund/pairchat/internal/websocket"
)

// Dependencies are the services the HTTP server routes to.
type Dependencies struct {
	Config    *config.Config
	Engine    *pairing.Engine
	Stats     *stats.Service
	Publisher pubsub.Publisher
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	E   *echo.Echo
	Cfg *config.Config

	engine         *pairing.Engine
	chatHandler    *websocket.Handler
	problemHandler *handlers.ProblemHandler
	statsHandler   *handlers.StatsHandler
}

// New creates a Server with its middleware chain and routes in place.
func New(deps Dependencies) (*Server, error) {
	if deps.Config == nil {
		return nil, errors.New("server: config is required")
	}
	if deps.Engine == nil {
		return nil, errors.New("server: pairing engine is required")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = rendering.NewRenderer()
	setupErrorHandling(e)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.Logger)
	e.Use(middleware.AccessLog())

	cfg := deps.Config
	chatHandler := websocket.NewHandler(deps.Engine, deps.Publisher, websocket.Options{
		AllowedOrigins: cfg.WSAllowedOrigins,
		SendBuffer:     cfg.WSSendBuffer,
		WriteTimeout:   cfg.WSWriteTimeout,
		ReadLimit:      cfg.WSReadLimit,
	})
	if err := websocket.RegisterTopics(); err != nil {
		return nil, fmt.Errorf("register websocket topics: %w", err)
	}

	// A nil *stats.Service must not become a non-nil interface.
	var statsReader handlers.StatsReader
	if deps.Stats != nil {
		statsReader = deps.Stats
	}

	s := &Server{
		E:              e,
		Cfg:            cfg,
		engine:         deps.Engine,
		chatHandler:    chatHandler,
		problemHandler: handlers.NewProblemHandler(deps.Engine, statsReader),
		statsHandler:   handlers.NewStatsHandler(deps.Engine, statsReader),
	}
	s.RegisterRoutes()
	return s, nil
}

// Engine returns the pairing engine the server routes to, useful for testing.
func (s *Server) Engine() *pairing.Engine {
	return s.engine
}
