package salesforce

import (
	"context"
	"strings"
)

// Kind identifies the record type a file identifier refers to.
type Kind int

const (
	KindUnknown Kind = iota
	// KindContentDocument is a document container (069 prefix); downloading
	// it requires a lookup for its latest ContentVersion.
	KindContentDocument
	// KindContentVersion is a concrete file version (068 prefix) that can be
	// downloaded directly.
	KindContentVersion
	// KindAttachment is a legacy attachment (00P prefix) that can be
	// downloaded directly.
	KindAttachment
)

const (
	prefixContentDocument = "069"
	prefixContentVersion  = "068"
	prefixAttachment      = "00P"
)

func (k Kind) String() string {
	switch k {
	case KindContentDocument:
		return "ContentDocument"
	case KindContentVersion:
		return "ContentVersion"
	case KindAttachment:
		return "Attachment"
	default:
		return "unknown"
	}
}

// KindOf classifies a Salesforce file identifier by its three-character
// prefix.
func KindOf(id string) Kind {
	switch {
	case strings.HasPrefix(id, prefixContentDocument):
		return KindContentDocument
	case strings.HasPrefix(id, prefixContentVersion):
		return KindContentVersion
	case strings.HasPrefix(id, prefixAttachment):
		return KindAttachment
	default:
		return KindUnknown
	}
}

// Resolution describes where a file's bytes can be downloaded from.
type Resolution struct {
	Kind Kind
	// RecordID is the concrete record whose blob endpoint is downloaded: a
	// ContentVersion ID, or the attachment's own ID.
	RecordID string
	// DocumentID is the originating ContentDocument when the input was a
	// container identifier.
	DocumentID string
	// DownloadURL is the absolute blob endpoint for the file content.
	DownloadURL string
}

// ResolveFile maps a file identifier to a concrete download location.
// ContentDocument IDs cost one query round trip to find the latest version;
// ContentVersion and Attachment IDs resolve without any network call.
func (c *Client) ResolveFile(ctx context.Context, fileID string) (*Resolution, error) {
	fileID = strings.TrimSpace(fileID)
	switch KindOf(fileID) {
	case KindContentDocument:
		versionID, err := c.latestVersionID(ctx, fileID)
		if err != nil {
			return nil, err
		}
		return &Resolution{
			Kind:        KindContentDocument,
			RecordID:    versionID,
			DocumentID:  fileID,
			DownloadURL: c.restURL("sobjects", "ContentVersion", versionID, "VersionData"),
		}, nil
	case KindContentVersion:
		return &Resolution{
			Kind:        KindContentVersion,
			RecordID:    fileID,
			DownloadURL: c.restURL("sobjects", "ContentVersion", fileID, "VersionData"),
		}, nil
	case KindAttachment:
		return &Resolution{
			Kind:        KindAttachment,
			RecordID:    fileID,
			DownloadURL: c.restURL("sobjects", "Attachment", fileID, "Body"),
		}, nil
	default:
		return nil, &UnknownIDFormatError{ID: fileID}
	}
}
