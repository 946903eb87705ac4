// Package tools exposes Salesforce file operations as agent-platform tools,
// with a registry, execution policy, and duplicate-call guard around them.
package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool wraps an MCP tool definition with execution logic and metadata.
type Tool struct {
	mcp.Tool          // Name, Description, InputSchema
	Type     ToolType // builtin
	Group    string   // group:salesforce etc., for policy composition
	Execute  func(ctx context.Context, input map[string]any) (*Result, error)
}

// ToolType categorizes tools by their execution model.
type ToolType string

// ToolTypeBuiltin marks tools implemented locally in this process.
const ToolTypeBuiltin ToolType = "builtin"

// Result standardizes tool output. Domain failures are reported as error
// results, not Go errors; the error return of Execute is reserved for host
// level problems.
type Result struct {
	Status  ResultStatus   `json:"status"`
	Content []ContentBlock `json:"content,omitempty"`
	Details map[string]any `json:"details,omitempty"` // structured metadata for parsing
	Error   string         `json:"error,omitempty"`
}

// ContentBlock supports multi-modal results (text, files).
type ContentBlock struct {
	Type     string `json:"type"`               // "text", "file"
	Text     string `json:"text,omitempty"`     // for text blocks
	Data     string `json:"data,omitempty"`     // base64 payload for file blocks
	MimeType string `json:"mimeType,omitempty"` // for file blocks
	FileName string `json:"fileName,omitempty"` // for file blocks
}

// ResultStatus indicates the outcome of tool execution.
type ResultStatus string

const (
	// ResultSuccess indicates the tool completed successfully.
	ResultSuccess ResultStatus = "success"
	// ResultError indicates the tool failed with an error.
	ResultError ResultStatus = "error"
)

// Text returns the text content from the result, or the error message if the
// result is an error.
func (r *Result) Text() string {
	if r.Status == ResultError && r.Error != "" {
		return r.Error
	}
	for _, block := range r.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text
		}
	}
	return ""
}

// ToolInfo provides metadata about a tool for listing.
type ToolInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        ToolType `json:"type"`
	Group       string   `json:"group,omitempty"`
	Enabled     bool     `json:"enabled"`
}

// ToMCPTool returns the underlying mcp.Tool definition.
func (t *Tool) ToMCPTool() mcp.Tool {
	return t.Tool
}
