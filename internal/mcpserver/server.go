// Package mcpserver exposes the export pipeline as the pdf_export tool over
// the Model Context Protocol on stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"pdfexport/internal/export"
	"pdfexport/internal/infra/logging"
	"pdfexport/internal/layout"
)

// New builds the MCP server with the pdf_export tool registered.
func New(pipe *export.Pipeline, version string) *server.MCPServer {
	s := server.NewMCPServer("pdf-export", version)
	s.AddTool(exportTool(), handleExport(pipe))
	return s
}

// ServeStdio runs the server over stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	logging.Info("PDF export server running on stdio")
	return server.ServeStdio(s)
}

func exportTool() mcp.Tool {
	return mcp.NewTool(
		"pdf_export",
		mcp.WithDescription("Export HTML to PDF format and save to filesystem"),
		mcp.WithString("html",
			mcp.Required(),
			mcp.Description("HTML content to render as PDF"),
		),
		mcp.WithString("css",
			mcp.Description("Optional CSS to apply to the HTML"),
		),
		mcp.WithString("filename",
			mcp.Description("Filename for the exported file (without extension)"),
			mcp.DefaultString("output"),
		),
		mcp.WithString("description",
			mcp.Description("Optional description of the file contents"),
		),
		mcp.WithObject("options",
			mcp.Description("PDF generation options"),
			mcp.Properties(map[string]any{
				"format": map[string]any{
					"type":        "string",
					"enum":        []string{"A4", "Letter", "Legal", "Tabloid"},
					"description": "Page format (default: A4)",
				},
				"orientation": map[string]any{
					"type":        "string",
					"enum":        []string{"portrait", "landscape"},
					"description": "Page orientation (default: portrait)",
				},
				"printBackground": map[string]any{
					"type":        "boolean",
					"description": "Print background graphics (default: true)",
				},
				"margin": map[string]any{
					"type":        "object",
					"description": "Page margins",
					"properties": map[string]any{
						"top":    map[string]any{"type": "string", "default": "20mm"},
						"right":  map[string]any{"type": "string", "default": "20mm"},
						"bottom": map[string]any{"type": "string", "default": "20mm"},
						"left":   map[string]any{"type": "string", "default": "20mm"},
					},
				},
				"displayHeaderFooter": map[string]any{
					"type":        "boolean",
					"description": "Display header and footer (default: false)",
				},
				"headerTemplate": map[string]any{
					"type":        "string",
					"description": "HTML template for the header",
				},
				"footerTemplate": map[string]any{
					"type":        "string",
					"description": "HTML template for the footer",
				},
			}),
		),
	)
}

// handleExport adapts tool calls to the pipeline. The tool contract always
// returns a structured JSON value: failures become {success:false, error}
// text content, never a protocol error.
func handleExport(pipe *export.Pipeline) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req, err := parseRequest(request.GetArguments())
		if err != nil {
			logging.Error("Error processing PDF export", "error", err.Error())
			return resultJSON(export.FailureFrom(err))
		}

		res, err := pipe.Export(ctx, req)
		if err != nil {
			logging.Error("Error processing PDF export", "error", err.Error())
			return resultJSON(export.FailureFrom(err))
		}
		return resultJSON(res)
	}
}

// parseRequest validates and extracts the tool arguments.
func parseRequest(args map[string]any) (export.Request, error) {
	html, ok := args["html"].(string)
	if !ok {
		return export.Request{}, fmt.Errorf("%w: HTML content must be provided as a string", export.ErrValidation)
	}

	req := export.Request{HTML: html}
	if css, ok := args["css"].(string); ok {
		req.CSS = css
	}
	if filename, ok := args["filename"].(string); ok {
		req.BaseName = filename
	}
	if description, ok := args["description"].(string); ok {
		req.Description = description
	}
	if opts, ok := args["options"].(map[string]any); ok {
		req.Options = parseOptions(opts)
	}
	return req, nil
}

func parseOptions(m map[string]any) *layout.Options {
	opts := &layout.Options{}
	if v, ok := m["format"].(string); ok {
		opts.Format = v
	}
	if v, ok := m["orientation"].(string); ok {
		opts.Orientation = v
	}
	if v, ok := m["printBackground"].(bool); ok {
		opts.PrintBackground = &v
	}
	if v, ok := m["displayHeaderFooter"].(bool); ok {
		opts.DisplayHeaderFooter = &v
	}
	if v, ok := m["headerTemplate"].(string); ok {
		opts.HeaderTemplate = v
	}
	if v, ok := m["footerTemplate"].(string); ok {
		opts.FooterTemplate = v
	}
	if margin, ok := m["margin"].(map[string]any); ok {
		if v, ok := margin["top"].(string); ok {
			opts.Margin.Top = v
		}
		if v, ok := margin["right"].(string); ok {
			opts.Margin.Right = v
		}
		if v, ok := margin["bottom"].(string); ok {
			opts.Margin.Bottom = v
		}
		if v, ok := margin["left"].(string); ok {
			opts.Margin.Left = v
		}
	}
	return opts
}

func resultJSON(data any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
