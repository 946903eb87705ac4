package salesforce

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/beeper/salesforce-tools/pkg/shared/httputil"
)

// File holds a downloaded file's bytes together with where they came from.
type File struct {
	Resolution
	Content []byte
}

// DownloadFile resolves a file identifier and downloads its binary content in
// a single attempt. Failures are returned as typed errors; there is no retry
// and no partial content.
func (c *Client) DownloadFile(ctx context.Context, fileID string) (*File, error) {
	res, err := c.ResolveFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	data, status, err := httputil.GetBinary(ctx, res.DownloadURL, c.headers(), c.cfg.TimeoutSecs)
	if err != nil {
		return nil, classifyTransport("download", status, err)
	}
	zerolog.Ctx(ctx).Debug().
		Str("file_id", fileID).
		Str("record_id", res.RecordID).
		Stringer("kind", res.Kind).
		Int("bytes", len(data)).
		Msg("Downloaded Salesforce file")
	return &File{Resolution: *res, Content: data}, nil
}
