package server

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/mermaid-mcp/internal/imaging"
	"github.com/ironsheep/mermaid-mcp/internal/render"
)

var (
	pngBytes = []byte("\x89PNG\r\n\x1a\nfake")
	svgBytes = []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`)
)

// fakeRenderer records requests and answers like mmdc would: any diagram
// starting with "graph" renders, anything else fails with a parse error.
type fakeRenderer struct {
	mu    sync.Mutex
	calls []render.Request
}

func (f *fakeRenderer) Render(_ context.Context, req render.Request) *render.Result {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	if len(req.Diagram) < 5 || req.Diagram[:5] != "graph" {
		return &render.Result{
			Err:         fmt.Errorf("%w: exit status 1: Error: Parse error on line 1:", render.ErrRenderer),
			Diagnostics: "Error: Parse error on line 1:\n" + req.Diagram + "\n^",
		}
	}

	data := pngBytes
	if req.Format == render.FormatSVG {
		data = svgBytes
	}
	return &render.Result{
		OK:       true,
		Image:    data,
		MIMEType: req.Format.MIMEType(),
		Info:     &imaging.ImageInfo{Format: string(req.Format), SizeBytes: int64(len(data))},
	}
}

func (f *fakeRenderer) requests() []render.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]render.Request(nil), f.calls...)
}

// connect starts s and returns a client session attached to it in memory.
func connect(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ss, err := s.Connect(ctx, serverTransport)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })

	return cs
}

func callTool(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	return res
}

// texts returns the text items of res, failing if it carries an image.
func texts(t *testing.T, res *mcp.CallToolResult) []string {
	t.Helper()

	var out []string
	for _, c := range res.Content {
		switch c := c.(type) {
		case *mcp.TextContent:
			out = append(out, c.Text)
		case *mcp.ImageContent:
			t.Fatalf("unexpected image content (%s)", c.MIMEType)
		default:
			t.Fatalf("unexpected content type %T", c)
		}
	}
	return out
}

func TestNew(t *testing.T) {
	s := New(&fakeRenderer{}, nil, "test")
	require.NotNil(t, s)
	assert.NotNil(t, s.mcp)
	assert.NotNil(t, s.logger)
}

func TestServe_CanceledContext(t *testing.T) {
	s := New(&fakeRenderer{}, nil, "test")

	_, serverTransport := mcp.NewInMemoryTransports()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.serve(ctx, serverTransport)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListTools(t *testing.T) {
	cs := connect(t, New(&fakeRenderer{}, nil, "test"))

	res, err := cs.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description, tool.Name)
		assert.NotNil(t, tool.InputSchema, tool.Name)
	}
	assert.ElementsMatch(t, []string{ToolValidate, ToolRender}, names)
}

func TestRenderMermaid_DefaultsToPNG(t *testing.T) {
	fake := &fakeRenderer{}
	cs := connect(t, New(fake, nil, "test"))

	res := callTool(t, cs, ToolRender, map[string]any{"diagram": "graph TD; A-->B;"})

	require.Len(t, res.Content, 2)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "first item is %T", res.Content[0])
	assert.Equal(t, "Mermaid diagram is valid", text.Text)

	img, ok := res.Content[1].(*mcp.ImageContent)
	require.True(t, ok, "second item is %T", res.Content[1])
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, pngBytes, img.Data)

	calls := fake.requests()
	require.Len(t, calls, 1)
	assert.Equal(t, render.FormatPNG, calls[0].Format)
}

func TestRenderMermaid_SVG(t *testing.T) {
	cs := connect(t, New(&fakeRenderer{}, nil, "test"))

	res := callTool(t, cs, ToolRender, map[string]any{
		"diagram": "graph TD; A-->B;",
		"format":  "svg",
	})

	require.Len(t, res.Content, 2)
	assert.Equal(t, "Mermaid diagram is valid", res.Content[0].(*mcp.TextContent).Text)
	img, ok := res.Content[1].(*mcp.ImageContent)
	require.True(t, ok)
	assert.Equal(t, "image/svg+xml", img.MIMEType)
	assert.Equal(t, svgBytes, img.Data)
}

func TestRenderMermaid_ForwardsOptions(t *testing.T) {
	fake := &fakeRenderer{}
	cs := connect(t, New(fake, nil, "test"))

	callTool(t, cs, ToolRender, map[string]any{
		"diagram":    "graph LR; X-->Y;",
		"format":     "png",
		"theme":      "dark",
		"background": "#FFF",
	})

	calls := fake.requests()
	require.Len(t, calls, 1)
	assert.Equal(t, render.ThemeDark, calls[0].Theme)
	assert.Equal(t, "#ffffff", calls[0].Background)
}

func TestRenderMermaid_Invalid(t *testing.T) {
	cs := connect(t, New(&fakeRenderer{}, nil, "test"))

	res := callTool(t, cs, ToolRender, map[string]any{"diagram": "not a real diagram"})

	got := texts(t, res)
	require.Len(t, got, 3)
	assert.Equal(t, "Mermaid diagram is invalid", got[0])
	assert.Contains(t, got[1], "Parse error")
	assert.Contains(t, got[2], "Detailed error output:")
	assert.Contains(t, got[2], "not a real diagram")
}

func TestRenderMermaid_BadOptionsOverProtocol(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"format", map[string]any{"diagram": "graph TD; A-->B;", "format": "gif"}, "unsupported format"},
		{"theme", map[string]any{"diagram": "graph TD; A-->B;", "theme": "solarized"}, "unsupported theme"},
		{"background", map[string]any{"diagram": "graph TD; A-->B;", "background": "#12"}, "invalid background"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRenderer{}
			cs := connect(t, New(fake, nil, "test"))

			res := callTool(t, cs, ToolRender, tt.args)

			got := texts(t, res)
			require.Len(t, got, 2)
			assert.Equal(t, "Mermaid diagram is invalid", got[0])
			assert.Contains(t, got[1], tt.want)
			assert.Empty(t, fake.requests())
		})
	}
}

func TestRenderMermaid_FormatIsCaseInsensitive(t *testing.T) {
	fake := &fakeRenderer{}
	cs := connect(t, New(fake, nil, "test"))

	res := callTool(t, cs, ToolRender, map[string]any{
		"diagram": "graph TD; A-->B;",
		"format":  "SVG",
	})

	require.Len(t, res.Content, 2)
	img, ok := res.Content[1].(*mcp.ImageContent)
	require.True(t, ok)
	assert.Equal(t, "image/svg+xml", img.MIMEType)
}

func TestValidateMermaid_Valid(t *testing.T) {
	fake := &fakeRenderer{}
	cs := connect(t, New(fake, nil, "test"))

	res := callTool(t, cs, ToolValidate, map[string]any{"diagram": "graph TD; A-->B;"})

	assert.Equal(t, []string{"Mermaid diagram is valid"}, texts(t, res))

	calls := fake.requests()
	require.Len(t, calls, 1)
	assert.Equal(t, render.DefaultFormat, calls[0].Format)
}

func TestValidateMermaid_Invalid(t *testing.T) {
	cs := connect(t, New(&fakeRenderer{}, nil, "test"))

	res := callTool(t, cs, ToolValidate, map[string]any{"diagram": "not a real diagram"})

	got := texts(t, res)
	require.NotEmpty(t, got)
	assert.Equal(t, "Mermaid diagram is invalid", got[0])
}

func TestTools_EmptyDiagramSkipsRenderer(t *testing.T) {
	fake := &fakeRenderer{}
	cs := connect(t, New(fake, nil, "test"))

	for _, name := range []string{ToolValidate, ToolRender} {
		t.Run(name, func(t *testing.T) {
			res := callTool(t, cs, name, map[string]any{"diagram": "   "})

			got := texts(t, res)
			require.Len(t, got, 2)
			assert.Equal(t, "Mermaid diagram is invalid", got[0])
			assert.Contains(t, got[1], "diagram is empty")
		})
	}
	assert.Empty(t, fake.requests())
}

func TestTools_Idempotent(t *testing.T) {
	cs := connect(t, New(&fakeRenderer{}, nil, "test"))
	args := map[string]any{"diagram": "graph TD; A-->B;", "format": "png"}

	first := callTool(t, cs, ToolRender, args)
	second := callTool(t, cs, ToolRender, args)

	require.Len(t, first.Content, 2)
	require.Len(t, second.Content, 2)
	assert.Equal(t, first.Content[1].(*mcp.ImageContent).Data, second.Content[1].(*mcp.ImageContent).Data)
}
