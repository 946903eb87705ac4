package salesforce

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/beeper/salesforce-tools/pkg/shared/httputil"
)

// UploadRequest describes a new ContentVersion to create.
type UploadRequest struct {
	Title   string
	Content []byte
	// PathOnClient overrides the uploaded file name. Defaults to the title
	// with a .pptx extension.
	PathOnClient string
	// ContentDocumentID attaches the new version to an existing document
	// instead of creating a fresh one. Left empty by the shipped tools, so
	// every upload lands in a new document.
	ContentDocumentID string
}

// UploadResult reports the created version and the document it landed in.
type UploadResult struct {
	VersionID  string
	DocumentID string
	Title      string
}

type createResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Errors  []any  `json:"errors"`
}

// UploadFile creates a new ContentVersion from the request payload, then
// looks up the ContentDocument it landed in. The create is not rolled back
// when the follow-up lookup fails; the caller gets an UploadError either way.
func (c *Client) UploadFile(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if req.Title == "" {
		return nil, &UploadError{Stage: "create", Err: fmt.Errorf("title is required")}
	}
	pathOnClient := req.PathOnClient
	if pathOnClient == "" {
		pathOnClient = req.Title + ".pptx"
	}
	payload := map[string]any{
		"Title":          req.Title,
		"PathOnClient":   pathOnClient,
		"VersionData":    base64.StdEncoding.EncodeToString(req.Content),
		"IsMajorVersion": isEnabled(c.cfg.MajorUpload, true),
	}
	if req.ContentDocumentID != "" {
		payload["ContentDocumentId"] = req.ContentDocumentID
	}

	data, status, err := httputil.PostJSON(ctx, c.restURL("sobjects", "ContentVersion"), c.headers(), payload, c.cfg.TimeoutSecs)
	if err != nil {
		return nil, &UploadError{Stage: "create", Err: classifyTransport("upload", status, err)}
	}
	var created createResponse
	if err = json.Unmarshal(data, &created); err != nil {
		return nil, &UploadError{Stage: "create", Err: fmt.Errorf("parsing create response: %w", err)}
	}
	if !created.Success || created.ID == "" {
		return nil, &UploadError{Stage: "create", Err: fmt.Errorf("create rejected: %v", created.Errors)}
	}

	documentID, err := c.documentIDForVersion(ctx, created.ID)
	if err != nil {
		return nil, &UploadError{Stage: "lookup", Err: err}
	}

	zerolog.Ctx(ctx).Info().
		Str("version_id", created.ID).
		Str("document_id", documentID).
		Str("title", req.Title).
		Int("bytes", len(req.Content)).
		Msg("Uploaded file to Salesforce")
	return &UploadResult{VersionID: created.ID, DocumentID: documentID, Title: req.Title}, nil
}
