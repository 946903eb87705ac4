package salesforce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/beeper/salesforce-tools/pkg/shared/httputil"
)

// QueryResult is the wire shape of a SOQL query response.
type QueryResult struct {
	TotalSize int      `json:"totalSize"`
	Done      bool     `json:"done"`
	Records   []Record `json:"records"`
}

// Record is one SOQL result row. Only the fields the file tools read are
// mapped.
type Record struct {
	ID                string `json:"Id"`
	ContentDocumentID string `json:"ContentDocumentId"`
}

// Query runs a SOQL query and returns the matched records.
func (c *Client) Query(ctx context.Context, soql string) (*QueryResult, error) {
	queryURL := c.restURL("query") + "?q=" + url.QueryEscape(soql)
	data, status, err := httputil.GetJSON(ctx, queryURL, c.headers(), c.cfg.TimeoutSecs)
	if err != nil {
		return nil, classifyTransport("query", status, err)
	}
	var out QueryResult
	if err = json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing query response: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Int("records", len(out.Records)).Msg("Ran SOQL query")
	return &out, nil
}

// latestVersionID finds the current ContentVersion of a ContentDocument.
func (c *Client) latestVersionID(ctx context.Context, documentID string) (string, error) {
	soql := fmt.Sprintf("SELECT Id FROM ContentVersion WHERE ContentDocumentId = '%s' AND IsLatest = true", soqlString(documentID))
	res, err := c.Query(ctx, soql)
	if err != nil {
		return "", err
	}
	if len(res.Records) == 0 {
		return "", &NotFoundError{Object: "ContentVersion", ID: "ContentDocument " + documentID}
	}
	return res.Records[0].ID, nil
}

// documentIDForVersion finds the ContentDocument a ContentVersion belongs to.
func (c *Client) documentIDForVersion(ctx context.Context, versionID string) (string, error) {
	soql := fmt.Sprintf("SELECT ContentDocumentId FROM ContentVersion WHERE Id = '%s'", soqlString(versionID))
	res, err := c.Query(ctx, soql)
	if err != nil {
		return "", err
	}
	if len(res.Records) == 0 {
		return "", &NotFoundError{Object: "ContentVersion", ID: versionID}
	}
	return res.Records[0].ContentDocumentID, nil
}

// soqlString escapes a value for interpolation into a single-quoted SOQL
// string literal.
func soqlString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
