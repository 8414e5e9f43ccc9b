package topics

import (
	"io"
	"log/slog"

	// Imported for the module topics its package-level events register.
	_ "github.com/nfrund/pairchat/internal/pairing"
	"github.com/nfrund/pairchat/internal/topicmgr"
	"github.com/nfrund/pairchat/internal/websocket"
)

// Initialize registers every topic the server publishes with the default manager and
// returns it. Logging is silenced to keep CLI output clean.
func Initialize() (*topicmgr.Manager, error) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	if err := websocket.RegisterTopics(); err != nil {
		return nil, err
	}
	return topicmgr.Default(), nil
}
