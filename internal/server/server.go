package server

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ironsheep/mermaid-mcp/internal/render"
)

// Name is reported to clients during the initialize handshake.
const Name = "mermaid-mcp"

const instructions = `Use validateMermaid to check Mermaid diagram syntax before presenting a diagram.
Use renderMermaid to obtain the rendered image (png by default, or svg).
On failure both tools reply with "Mermaid diagram is invalid" followed by the renderer's error.`

// Renderer runs a single diagram render. Implementations must be safe for
// concurrent use and must never return nil.
type Renderer interface {
	Render(ctx context.Context, req render.Request) *render.Result
}

// Server handles MCP protocol communication.
type Server struct {
	renderer Renderer
	logger   *log.Logger
	mcp      *mcp.Server
}

// New creates a server that renders through r. A nil logger disables logging.
func New(r Renderer, logger *log.Logger, version string) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := &Server{
		renderer: r,
		logger:   logger,
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    Name,
			Version: version,
		}, &mcp.ServerOptions{
			Instructions: instructions,
		}),
	}
	s.registerTools()
	return s
}

// Run serves MCP over stdin/stdout until the client disconnects or ctx is
// cancelled. Cancellation is reported as ctx.Err() so callers can tell an
// interrupt from a clean disconnect.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("serving MCP on stdio")
	return s.serve(ctx, &mcp.StdioTransport{})
}

func (s *Server) serve(ctx context.Context, t mcp.Transport) error {
	err := s.mcp.Run(ctx, t)
	if ctx.Err() != nil {
		s.logger.Info("shutting down", "reason", ctx.Err())
		return ctx.Err()
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("mcp server: %w", err)
	}

	s.logger.Info("client disconnected")
	return nil
}

// Connect serves a single session over t without blocking. It is used to
// attach in-process clients.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.mcp.Connect(ctx, t, nil)
}
