package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/beeper/salesforce-tools/pkg/deck"
	"github.com/beeper/salesforce-tools/pkg/salesforce"
	"github.com/beeper/salesforce-tools/pkg/shared/toolspec"
)

// GroupSalesforce groups the Salesforce file tools for policy composition.
const GroupSalesforce = "group:salesforce"

// MimePPTX is the content type of PowerPoint payloads produced by the
// certificate tools.
const MimePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// Failure messages keep the plain-text shape earlier revisions of this suite
// reported. Hosts match on these prefixes, so they are part of the contract.
const (
	downloadErrorPrefix = "Error downloading file from Salesforce: "
	processErrorPrefix  = "Error processing file from Salesforce: "
)

// codeTemplate marks failures inside the deck rewrite rather than in
// Salesforce itself.
const codeTemplate = "TEMPLATE"

// ToolSet builds the Salesforce file tools against a shared configuration.
// A fresh client is constructed per invocation, so tools hold no state
// between calls.
type ToolSet struct {
	cfg *salesforce.Config
	now func() time.Time
}

// NewToolSet creates the tool set. Config problems surface per invocation
// rather than here, so a server can start before credentials are present.
func NewToolSet(cfg *salesforce.Config) *ToolSet {
	return &ToolSet{cfg: cfg, now: time.Now}
}

// WithClock overrides the time source used for validity dates.
func (s *ToolSet) WithClock(now func() time.Time) *ToolSet {
	s.now = now
	return s
}

// DownloadFileTool returns the plain file download tool.
func (s *ToolSet) DownloadFileTool() *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        toolspec.DownloadFileName,
			Description: toolspec.DownloadFileDescription,
			Annotations: &mcp.ToolAnnotations{Title: "Download Salesforce File"},
			InputSchema: toolspec.DownloadFileSchema(),
		},
		Type:    ToolTypeBuiltin,
		Group:   GroupSalesforce,
		Execute: s.executeDownloadFile,
	}
}

// PersonalizeTemplateTool returns the certificate personalization tool.
func (s *ToolSet) PersonalizeTemplateTool() *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        toolspec.PersonalizeTemplateName,
			Description: toolspec.PersonalizeTemplateDescription,
			Annotations: &mcp.ToolAnnotations{Title: "Personalize Certificate Template"},
			InputSchema: toolspec.PersonalizeTemplateSchema(),
		},
		Type:    ToolTypeBuiltin,
		Group:   GroupSalesforce,
		Execute: s.executePersonalizeTemplate,
	}
}

// PublishCertificateTool returns the personalize-and-upload tool.
func (s *ToolSet) PublishCertificateTool() *Tool {
	return &Tool{
		Tool: mcp.Tool{
			Name:        toolspec.PublishCertificateName,
			Description: toolspec.PublishCertificateDescription,
			Annotations: &mcp.ToolAnnotations{Title: "Publish Certificate"},
			InputSchema: toolspec.PublishCertificateSchema(),
		},
		Type:    ToolTypeBuiltin,
		Group:   GroupSalesforce,
		Execute: s.executePublishCertificate,
	}
}

// Tools returns all Salesforce file tools.
func (s *ToolSet) Tools() []*Tool {
	return []*Tool{
		s.DownloadFileTool(),
		s.PersonalizeTemplateTool(),
		s.PublishCertificateTool(),
	}
}

// Registry returns a registry with all Salesforce tools registered, plus the
// names earlier revisions of this suite shipped the tools under.
func (s *ToolSet) Registry() *Registry {
	reg := NewRegistry()
	for _, tool := range s.Tools() {
		reg.Register(tool)
	}
	reg.RegisterAlias("salesforce_simple", toolspec.DownloadFileName)
	reg.RegisterAlias("salesforce_replace", toolspec.PersonalizeTemplateName)
	reg.RegisterAlias("salesforce_upload", toolspec.PublishCertificateName)
	return reg
}

func (s *ToolSet) executeDownloadFile(ctx context.Context, args map[string]any) (*Result, error) {
	fileID, err := ReadString(args, "file_id", true)
	if err != nil {
		return ErrorResult(toolspec.DownloadFileName, err.Error()), nil
	}

	_, file, err := s.download(ctx, fileID)
	if err != nil {
		return legacyError(toolspec.DownloadFileName, downloadErrorPrefix, err), nil
	}

	summary := fmt.Sprintf("Downloaded %s from Salesforce (%d bytes)", fileID, len(file.Content))
	return FileResult(summary, fileID, file.Content, http.DetectContentType(file.Content)).
		WithDetails(map[string]any{
			"file_id":   fileID,
			"record_id": file.RecordID,
			"kind":      file.Kind.String(),
		}), nil
}

func (s *ToolSet) executePersonalizeTemplate(ctx context.Context, args map[string]any) (*Result, error) {
	fileID, err := ReadString(args, "file_id", true)
	if err != nil {
		return ErrorResult(toolspec.PersonalizeTemplateName, err.Error()), nil
	}
	company := ReadStringDefault(args, "company_name", toolspec.DefaultCompanyName)
	tier := ReadStringDefault(args, "tier", toolspec.DefaultTier)

	_, rewritten, err := s.personalize(ctx, fileID, company, tier)
	if err != nil {
		return legacyError(toolspec.PersonalizeTemplateName, processErrorPrefix, err), nil
	}

	fileName := dynamicTitle(toolspec.DefaultTitle, company, tier) + ".pptx"
	summary := fmt.Sprintf("Personalized certificate for %s (%s tier)", company, tier)
	return FileResult(summary, fileName, rewritten.Data, MimePPTX).
		WithDetails(map[string]any{
			"file_id":              fileID,
			"company_replacements": rewritten.CompanyReplacements,
			"tier_replacements":    rewritten.TierReplacements,
			"date_replacements":    rewritten.DateReplacements,
			"valid_through":        s.validThrough(),
		}), nil
}

func (s *ToolSet) executePublishCertificate(ctx context.Context, args map[string]any) (*Result, error) {
	fileID, err := ReadString(args, "file_id", true)
	if err != nil {
		return ErrorResult(toolspec.PublishCertificateName, err.Error()), nil
	}
	company := ReadStringDefault(args, "company_name", toolspec.DefaultCompanyName)
	tier := ReadStringDefault(args, "tier", toolspec.DefaultTier)
	uploadBack := ReadBool(args, "upload_back_to_salesforce", true)
	title := dynamicTitle(ReadStringDefault(args, "title", toolspec.DefaultTitle), company, tier)

	client, rewritten, err := s.personalize(ctx, fileID, company, tier)
	if err != nil {
		return legacyError(toolspec.PublishCertificateName, processErrorPrefix, err), nil
	}

	details := map[string]any{
		"file_id":       fileID,
		"uploaded":      false,
		"valid_through": s.validThrough(),
	}
	summary := fmt.Sprintf("Personalized certificate for %s (%s tier)", company, tier)
	if uploadBack {
		uploaded, err := client.UploadFile(ctx, salesforce.UploadRequest{
			Title:   title,
			Content: rewritten.Data,
		})
		if err != nil {
			return legacyError(toolspec.PublishCertificateName, processErrorPrefix, err), nil
		}
		details["uploaded"] = true
		details["version_id"] = uploaded.VersionID
		details["document_id"] = uploaded.DocumentID
		summary = fmt.Sprintf("%s and uploaded to Salesforce as %q (ContentVersion %s, ContentDocument %s)",
			summary, title, uploaded.VersionID, uploaded.DocumentID)
	}

	return FileResult(summary, title+".pptx", rewritten.Data, MimePPTX).
		WithDetails(details), nil
}

// validThrough renders the validity date written into refreshed certificates.
func (s *ToolSet) validThrough() string {
	return fmt.Sprintf("31 December %d", s.now().Year())
}

// personalize downloads a template and rewrites its placeholders. The client
// is returned so a follow-up upload reuses it.
func (s *ToolSet) personalize(ctx context.Context, fileID, company, tier string) (*salesforce.Client, *deck.Result, error) {
	client, file, err := s.download(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	rewritten, err := deck.Rewrite(file.Content, deck.Personalization{
		Company: company,
		Tier:    tier,
		Date:    s.now(),
	})
	if err != nil {
		return nil, nil, err
	}
	zerolog.Ctx(ctx).Debug().
		Int("company_replacements", rewritten.CompanyReplacements).
		Int("tier_replacements", rewritten.TierReplacements).
		Int("date_replacements", rewritten.DateReplacements).
		Msg("Rewrote certificate template")
	return client, rewritten, nil
}

// download constructs a per-invocation client and fetches the file. The
// client is returned so follow-up calls reuse it.
func (s *ToolSet) download(ctx context.Context, fileID string) (*salesforce.Client, *salesforce.File, error) {
	client, err := salesforce.NewClient(s.cfg)
	if err != nil {
		return nil, nil, err
	}
	file, err := client.DownloadFile(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	return client, file, nil
}

// dynamicTitle appends tier and company to the stock title so repeated
// publishes do not collide in Salesforce. Custom titles pass through
// unchanged.
func dynamicTitle(title, company, tier string) string {
	if title != toolspec.DefaultTitle {
		return title
	}
	safeCompany := strings.NewReplacer(" ", "_", "/", "_").Replace(company)
	return fmt.Sprintf("%s_%s_%s", title, tier, safeCompany)
}

func legacyError(toolName, prefix string, err error) *Result {
	return ErrorResult(toolName, prefix+err.Error()).WithDetails(map[string]any{
		"code": errorCode(err),
	})
}

func errorCode(err error) string {
	var tmplErr *deck.TemplateError
	if errors.As(err, &tmplErr) {
		return codeTemplate
	}
	return salesforce.ErrorCode(err)
}
