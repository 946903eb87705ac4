// Package salesforce implements the small subset of the Salesforce REST API
// that the file tools need: resolving file identifiers, downloading file
// content, running SOQL queries, and uploading new file versions.
package salesforce

import (
	"context"
	"strings"

	"github.com/beeper/salesforce-tools/pkg/shared/httputil"
)

// Client talks to one Salesforce org over the REST API. It holds no state
// beyond the connection config; every call is a fresh round trip.
type Client struct {
	cfg *Config
}

// NewClient returns a client for the given connection config.
func NewClient(cfg *Config) (*Client, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{cfg: cfg}, nil
}

// Config returns the client's effective config.
func (c *Client) Config() *Config {
	return c.cfg
}

func (c *Client) restURL(parts ...string) string {
	return c.cfg.InstanceURL + "/services/data/" + c.cfg.APIVersion + "/" + strings.Join(parts, "/")
}

func (c *Client) headers() map[string]string {
	return httputil.BearerHeaders(c.cfg.AccessToken, map[string]string{"Accept": "*/*"})
}

// CheckConnection verifies the configured URL and token by listing the API
// root's resources.
func (c *Client) CheckConnection(ctx context.Context) error {
	_, status, err := httputil.GetJSON(ctx, c.restURL(""), c.headers(), c.cfg.TimeoutSecs)
	if err != nil {
		return classifyTransport("connection check", status, err)
	}
	return nil
}
