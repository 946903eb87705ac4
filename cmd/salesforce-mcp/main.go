// Command salesforce-mcp serves the Salesforce file tools over MCP stdio.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/beeper/salesforce-tools/pkg/salesforce"
	"github.com/beeper/salesforce-tools/pkg/tools"
)

const serverVersion = "0.1.0"

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "salesforce-mcp",
	Short: "MCP stdio server exposing Salesforce file tools",
	Long: `salesforce-mcp speaks the Model Context Protocol over stdin/stdout and
exposes tools for downloading Salesforce files, personalizing PowerPoint
certificate templates, and publishing the results back to Salesforce.

Credentials come from SALESFORCE_INSTANCE_URL and SALESFORCE_ACCESS_TOKEN
(or a YAML config file passed with --config). Logs go to stderr; stdout is
reserved for the protocol.`,
	SilenceUsage: true,
	RunE:         runServer,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		log.Warn().Err(err).Msg("Salesforce credentials incomplete, tool calls will fail until they are set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	set := tools.NewToolSet(cfg)
	executor := tools.NewExecutor(set.Registry(), tools.AllowAllPolicy())
	go reapStaleCalls(ctx, executor, log)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "salesforce-tools",
		Version: serverVersion,
	}, nil)
	for _, tool := range executor.AllowedTools() {
		addTool(server, executor, tool)
	}

	log.Info().
		Str("instance_url", cfg.InstanceURL).
		Int("tools", len(executor.AllowedTools())).
		Msg("Serving MCP on stdio")
	return server.Run(ctx, &mcp.StdioTransport{})
}

func addTool(server *mcp.Server, executor *tools.Executor, tool *tools.Tool) {
	def := tool.ToMCPTool()
	name := tool.Name
	mcp.AddTool(server, &def, func(ctx context.Context, req *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
		result, err := executor.ExecuteWithID(ctx, "", name, args)
		if err != nil {
			return nil, nil, err
		}
		return result.ToMCP(), nil, nil
	})
}

func loadConfig() (*salesforce.Config, error) {
	if configPath != "" {
		cfg, err := salesforce.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}
	return salesforce.ConfigFromEnv(), nil
}

// reapStaleCalls drops guard entries whose execution never returned, so a
// wedged call does not block retries forever.
func reapStaleCalls(ctx context.Context, executor *tools.Executor, log zerolog.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, call := range executor.Guard().CleanupStale() {
				log.Warn().
					Str("tool", call.ToolName).
					Str("call_id", call.CallID).
					Dur("age", call.Duration()).
					Msg("Dropped stale tool call")
			}
		}
	}
}
