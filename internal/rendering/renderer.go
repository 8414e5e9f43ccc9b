package rendering

import (
	"bytes"
	"fmt"
	"io"

	"github.com/labstack/echo/v4"
	cmp "maragu.dev/gomponents"
)

// Renderer implements echo.Renderer for gomponents nodes, so handlers can call
// c.Render(status, "", node).
type Renderer struct{}

// NewRenderer creates a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render implements echo.Renderer. The component is passed in data; name is unused.
func (r *Renderer) Render(w io.Writer, _ string, data interface{}, c echo.Context) error {
	node, ok := data.(cmp.Node)
	if !ok {
		return fmt.Errorf("unsupported component type: %T, must implement gomponents.Node", data)
	}

	if c != nil && c.Response().Header().Get(echo.HeaderContentType) == "" {
		c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	}
	return node.Render(w)
}

// RenderComponent renders a node to bytes.
func (r *Renderer) RenderComponent(node cmp.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := node.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render component to bytes: %w", err)
	}
	return buf.Bytes(), nil
}
