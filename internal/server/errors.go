package server

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/pairchat/internal/middleware"
)

// setupErrorHandling installs the HTTP error handler. echo.HTTPErrors are rendered
// as-is; anything else is an unhandled error, logged with a stack trace and answered
// with a bare 500.
func setupErrorHandling(e *echo.Echo) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			if he.Internal != nil {
				middleware.FromContext(c.Request().Context()).Debug("HTTP error", "status", he.Code, "error", he.Internal)
			}
			respond(c, he.Code, he.Message)
			return
		}

		middleware.FromContext(c.Request().Context()).Error("Internal Server Error (Unhandled)",
			slog.String("error", err.Error()),
			slog.String("method", c.Request().Method),
			slog.String("uri", c.Request().RequestURI),
			slog.String("stack_trace", string(debug.Stack())),
		)
		respond(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func respond(c echo.Context, code int, message interface{}) {
	if _, ok := message.(string); ok {
		message = map[string]interface{}{"message": message}
	}

	var err error
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, message)
	}
	if err != nil {
		slog.Error("Failed to write error response", "error", err)
	}
}
