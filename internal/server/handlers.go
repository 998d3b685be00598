package server

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ironsheep/mermaid-mcp/internal/render"
)

// Response texts.
const (
	textValid   = "Mermaid diagram is valid"
	textInvalid = "Mermaid diagram is invalid"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, validateTool(), s.handleValidate)
	mcp.AddTool(s.mcp, renderTool(), s.handleRender)
}

// handleValidate renders the diagram in the default format and reports only
// whether it succeeded.
func (s *Server) handleValidate(ctx context.Context, _ *mcp.CallToolRequest, args validateArgs) (*mcp.CallToolResult, any, error) {
	s.logger.Debug("tool call", "tool", ToolValidate, "diagram_bytes", len(args.Diagram))

	req, err := render.NewRequest(args.Diagram, "", "", "")
	if err != nil {
		return invalidResult(err, ""), nil, nil
	}

	res := s.renderer.Render(ctx, req)
	if !res.OK {
		return invalidResult(res.Err, res.Diagnostics), nil, nil
	}
	return validResult(nil), nil, nil
}

// handleRender renders the diagram in the requested format and returns the
// image.
func (s *Server) handleRender(ctx context.Context, _ *mcp.CallToolRequest, args renderArgs) (*mcp.CallToolResult, any, error) {
	s.logger.Debug("tool call", "tool", ToolRender, "format", args.Format, "diagram_bytes", len(args.Diagram))

	req, err := render.NewRequest(args.Diagram, args.Format, args.Theme, args.Background)
	if err != nil {
		return invalidResult(err, ""), nil, nil
	}

	res := s.renderer.Render(ctx, req)
	if !res.OK {
		return invalidResult(res.Err, res.Diagnostics), nil, nil
	}
	return validResult(res), nil, nil
}

// validResult builds the success reply. The image item is included when res
// is non-nil.
func validResult(res *render.Result) *mcp.CallToolResult {
	content := []mcp.Content{&mcp.TextContent{Text: textValid}}
	if res != nil {
		content = append(content, &mcp.ImageContent{
			Data:     res.Image,
			MIMEType: res.MIMEType,
		})
	}
	return &mcp.CallToolResult{Content: content}
}

// invalidResult builds the failure reply shared by both tools.
func invalidResult(err error, diagnostics string) *mcp.CallToolResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}

	content := []mcp.Content{
		&mcp.TextContent{Text: textInvalid},
		&mcp.TextContent{Text: msg},
	}
	if diagnostics != "" {
		content = append(content, &mcp.TextContent{
			Text: fmt.Sprintf("Detailed error output:\n```\n%s\n```", diagnostics),
		})
	}
	return &mcp.CallToolResult{Content: content}
}
