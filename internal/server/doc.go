// Package server implements the MCP (Model Context Protocol) server for
// Mermaid diagram tools.
//
// The server exposes two tools to MCP clients such as Claude Desktop. Both hand
// the diagram to a Renderer (normally a *render.Invoker wrapping the Mermaid
// CLI) and translate the outcome into MCP content.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0 via the official Go
// SDK (github.com/modelcontextprotocol/go-sdk):
//   - Input: JSON-RPC requests on stdin
//   - Output: JSON-RPC responses on stdout
//
// Logging must therefore go to stderr.
//
// # Available Tools
//
//   - validateMermaid: Check that a diagram renders. Replies with text only.
//   - renderMermaid: Render a diagram to PNG (default) or SVG. Replies with a
//     confirmation text and the image.
//
// # Responses
//
// A successful render replies with:
//
//	[{"type": "text", "text": "Mermaid diagram is valid"},
//	 {"type": "image", "data": "<base64>", "mimeType": "image/png"}]
//
// validateMermaid omits the image item.
//
// # Error Handling
//
// Render failures are never returned as JSON-RPC errors. Both tools reply
// with text content instead:
//
//	[{"type": "text", "text": "Mermaid diagram is invalid"},
//	 {"type": "text", "text": "<error message>"},
//	 {"type": "text", "text": "Detailed error output:\n```\n<renderer stderr>\n```"}]
//
// The third item is present only when the renderer wrote to stderr.
//
// # Usage
//
//	inv := render.NewInvoker("mmdc")
//	srv := server.New(inv, logger, "1.0.0")
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
