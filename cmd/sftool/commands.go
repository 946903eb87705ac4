package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/beeper/salesforce-tools/pkg/salesforce"
	"github.com/beeper/salesforce-tools/pkg/shared/toolspec"
	"github.com/beeper/salesforce-tools/pkg/tools"
)

var (
	outputPath string
	company    string
	tier       string
	title      string
	noUpload   bool
)

var downloadCmd = &cobra.Command{
	Use:   "download <file-id>",
	Short: "Download a file from Salesforce",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFileTool(cmd, toolspec.DownloadFileName, map[string]any{
			"file_id": args[0],
		})
	},
}

var personalizeCmd = &cobra.Command{
	Use:   "personalize <file-id>",
	Short: "Download a certificate template and fill in company, tier, and validity date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFileTool(cmd, toolspec.PersonalizeTemplateName, map[string]any{
			"file_id":      args[0],
			"company_name": company,
			"tier":         tier,
		})
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish <file-id>",
	Short: "Personalize a certificate template and upload the result back to Salesforce",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFileTool(cmd, toolspec.PublishCertificateName, map[string]any{
			"file_id":                   args[0],
			"company_name":              company,
			"tier":                      tier,
			"title":                     title,
			"upload_back_to_salesforce": !noUpload,
		})
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify Salesforce connectivity and credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}
		client, err := salesforce.NewClient(cfg)
		if err != nil {
			return err
		}
		if err := client.CheckConnection(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Connected to %s (API %s)\n", cfg.InstanceURL, cfg.APIVersion)
		return nil
	},
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the available tools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}
		executor := newExecutor(cfg)
		for _, info := range executor.AllowedToolInfos() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n    %s\n", info.Name, info.Description)
		}
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{downloadCmd, personalizeCmd, publishCmd} {
		cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the file here instead of the derived name")
	}
	for _, cmd := range []*cobra.Command{personalizeCmd, publishCmd} {
		cmd.Flags().StringVar(&company, "company", toolspec.DefaultCompanyName, "company name for the <Company> placeholder")
		cmd.Flags().StringVar(&tier, "tier", toolspec.DefaultTier, "tier level for the <Tier> placeholder")
	}
	publishCmd.Flags().StringVar(&title, "title", toolspec.DefaultTitle, "title for the uploaded file")
	publishCmd.Flags().BoolVar(&noUpload, "no-upload", false, "skip uploading the result back to Salesforce")
}

func newExecutor(cfg *salesforce.Config) *tools.Executor {
	set := tools.NewToolSet(cfg)
	return tools.NewExecutor(set.Registry(), tools.AllowAllPolicy())
}

func runFileTool(cmd *cobra.Command, name string, input map[string]any) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	result, err := newExecutor(cfg).Execute(cmd.Context(), name, input)
	if err != nil {
		return err
	}
	if result.IsError() {
		return errors.New(result.Error)
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Text())
	return saveResultFile(cmd, result)
}

func saveResultFile(cmd *cobra.Command, result *tools.Result) error {
	for _, block := range result.Content {
		if block.Type != "file" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(block.Data)
		if err != nil {
			return fmt.Errorf("decoding file payload: %w", err)
		}
		path := outputPath
		if path == "" {
			path = block.FileName
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", path, len(data))
		return nil
	}
	return errors.New("result contained no file")
}
