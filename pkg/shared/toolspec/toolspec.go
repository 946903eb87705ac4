package toolspec

// Shared tool schema definitions used by both the MCP server and the CLI.

// Defaults match the certificate workflow this suite was built around.
const (
	DefaultCompanyName = "Acme Corporation"
	DefaultTier        = "Gold"
	DefaultTitle       = "Partner_Plus_Certificate"
)

const (
	DownloadFileName        = "salesforce_download_file"
	DownloadFileDescription = "Download a file from Salesforce and return its content. Accepts ContentDocument (069) IDs, which resolve to the latest version automatically, as well as ContentVersion (068) and Attachment (00P) IDs."

	PersonalizeTemplateName        = "salesforce_personalize_template"
	PersonalizeTemplateDescription = "Download a PowerPoint certificate template from Salesforce, replace the <Company> and <Tier> placeholders with the provided values, refresh the \"Valid through\" date to 31 December of the current year, and return the personalized file."

	PublishCertificateName        = "salesforce_publish_certificate"
	PublishCertificateDescription = "Download a PowerPoint certificate template from Salesforce, personalize it, optionally upload the result back to Salesforce as a new file, and return the personalized file."
)

func fileIDProperty() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "The Salesforce file ID to download. Supports ContentDocument (069), ContentVersion (068), or Attachment (00P) IDs",
	}
}

func personalizationProperties() map[string]any {
	return map[string]any{
		"file_id": fileIDProperty(),
		"company_name": map[string]any{
			"type":        "string",
			"description": "Company name to replace the <Company> placeholder in the template",
			"default":     DefaultCompanyName,
		},
		"tier": map[string]any{
			"type":        "string",
			"description": "Tier level to replace the <Tier> placeholder (e.g., Silver, Gold, Platinum)",
			"default":     DefaultTier,
		},
	}
}

// DownloadFileSchema returns the JSON schema for the plain download tool.
func DownloadFileSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"file_id": fileIDProperty(),
		},
		"required": []string{"file_id"},
	}
}

// PersonalizeTemplateSchema returns the JSON schema for the template
// personalization tool.
func PersonalizeTemplateSchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": personalizationProperties(),
		"required":   []string{"file_id"},
	}
}

// PublishCertificateSchema returns the JSON schema for the personalize and
// upload tool.
func PublishCertificateSchema() map[string]any {
	properties := personalizationProperties()
	properties["upload_back_to_salesforce"] = map[string]any{
		"type":        "boolean",
		"description": "If true, upload the personalized file back to Salesforce as a new file",
		"default":     true,
	}
	properties["title"] = map[string]any{
		"type":        "string",
		"description": "Title for the uploaded file in Salesforce",
		"default":     DefaultTitle,
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   []string{"file_id"},
	}
}
