package server

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ironsheep/mermaid-mcp/internal/render"
)

// Tool names.
const (
	ToolValidate = "validateMermaid"
	ToolRender   = "renderMermaid"
)

type validateArgs struct {
	Diagram string `json:"diagram" jsonschema:"Mermaid diagram source text"`
}

type renderArgs struct {
	Diagram    string `json:"diagram" jsonschema:"Mermaid diagram source text"`
	Format     string `json:"format,omitempty" jsonschema:"Output format: png or svg (default png)"`
	Theme      string `json:"theme,omitempty" jsonschema:"Mermaid theme: default, dark, forest or neutral. Omit for the renderer default"`
	Background string `json:"background,omitempty" jsonschema:"Background colour: transparent, a CSS colour name or a hex value such as #ffffff. PNG defaults to transparent"`
}

func validateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        ToolValidate,
		Description: "Validate Mermaid diagram syntax by rendering it with the Mermaid CLI. Returns whether the diagram is valid and, if not, the renderer's error output.",
		InputSchema: schemaFor[validateArgs](),
		Annotations: &mcp.ToolAnnotations{
			Title:          "Validate Mermaid diagram",
			ReadOnlyHint:   true,
			IdempotentHint: true,
		},
	}
}

func renderTool() *mcp.Tool {
	// Allowed values stay out of the schema so bad options reach handleRender
	// instead of failing SDK argument validation.
	schema := schemaFor[renderArgs]()
	schema.Properties["format"].Default = json.RawMessage(fmt.Sprintf("%q", render.DefaultFormat))

	return &mcp.Tool{
		Name:        ToolRender,
		Description: "Render a Mermaid diagram to an image with the Mermaid CLI. Returns the image (PNG by default, or SVG) when the diagram is valid, or the renderer's error output when it is not.",
		InputSchema: schema,
		Annotations: &mcp.ToolAnnotations{
			Title:          "Render Mermaid diagram",
			ReadOnlyHint:   true,
			IdempotentHint: true,
		},
	}
}

// schemaFor infers the input schema of an argument struct. The argument types
// are fixed at compile time, so failure is a programming error.
func schemaFor[T any]() *jsonschema.Schema {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		panic(fmt.Sprintf("inferring tool schema: %v", err))
	}
	return schema
}
