package tools

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// TextResult creates a successful result with plain text content.
func TextResult(text string) *Result {
	return &Result{
		Status: ResultSuccess,
		Content: []ContentBlock{
			{Type: "text", Text: text},
		},
	}
}

// JSONResult creates a successful result with the value rendered as JSON
// text, for hosts that only consume strings.
func JSONResult(value any) *Result {
	return &Result{
		Status: ResultSuccess,
		Content: []ContentBlock{
			{Type: "text", Text: mustJSON(value)},
		},
	}
}

// FileResult creates a successful result carrying a file payload alongside a
// text summary. The payload is base64 encoded for transport.
func FileResult(text, fileName string, data []byte, mimeType string) *Result {
	return &Result{
		Status: ResultSuccess,
		Content: []ContentBlock{
			{Type: "text", Text: text},
			{
				Type:     "file",
				Data:     base64.StdEncoding.EncodeToString(data),
				MimeType: mimeType,
				FileName: fileName,
			},
		},
		Details: map[string]any{
			"file_name":  fileName,
			"size_bytes": len(data),
			"mime_type":  mimeType,
		},
	}
}

// ErrorResult creates an error result for a tool.
func ErrorResult(toolName, message string) *Result {
	return &Result{
		Status: ResultError,
		Error:  message,
		Details: map[string]any{
			"tool":  toolName,
			"error": message,
		},
	}
}

// ErrorResultf creates a formatted error result for a tool.
func ErrorResultf(toolName, format string, args ...any) *Result {
	return ErrorResult(toolName, fmt.Sprintf(format, args...))
}

// WithDetails merges extra structured metadata into the result and returns
// it, for call chaining.
func (r *Result) WithDetails(details map[string]any) *Result {
	if r.Details == nil {
		r.Details = make(map[string]any, len(details))
	}
	for key, val := range details {
		r.Details[key] = val
	}
	return r
}

// IsSuccess reports whether the result completed without error.
func (r *Result) IsSuccess() bool {
	return r.Status == ResultSuccess
}

// IsError reports whether the result is an error.
func (r *Result) IsError() bool {
	return r.Status == ResultError
}

func mustJSON(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%+v", value)
	}
	return string(data)
}
