package tools

import (
	"encoding/base64"
	"net/url"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToMCP converts a result to the MCP call-tool result shape. Text blocks map
// to text content, file blocks to embedded resources with a salesforce://
// URI so hosts can tell downloads apart.
func (r *Result) ToMCP() *mcp.CallToolResult {
	out := &mcp.CallToolResult{
		IsError: r.Status == ResultError,
	}

	if r.Status == ResultError {
		out.Content = []mcp.Content{
			&mcp.TextContent{Text: r.Error},
		}
		return out
	}

	for _, block := range r.Content {
		switch block.Type {
		case "text":
			out.Content = append(out.Content, &mcp.TextContent{Text: block.Text})
		case "file":
			blob, err := base64.StdEncoding.DecodeString(block.Data)
			if err != nil {
				// The block was built by FileResult, so this only trips on
				// hand-assembled results. Pass the raw string through as text.
				out.Content = append(out.Content, &mcp.TextContent{Text: block.Data})
				continue
			}
			out.Content = append(out.Content, &mcp.EmbeddedResource{
				Resource: &mcp.ResourceContents{
					URI:      "salesforce://files/" + url.PathEscape(block.FileName),
					MIMEType: block.MimeType,
					Blob:     blob,
				},
			})
		}
	}

	if len(out.Content) == 0 {
		out.Content = []mcp.Content{&mcp.TextContent{Text: ""}}
	}

	return out
}
