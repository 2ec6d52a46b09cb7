// ABOUTME: MCP server subcommand
// ABOUTME: Logs in once and serves every tool over stdio
package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/harperreed/sfmcp/config"
	"github.com/harperreed/sfmcp/handlers"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPCommand starts the MCP server on stdio. The logger must not write to
// stdout, which carries the protocol.
func MCPCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, version string) error {
	logger.Info("starting server", "name", cfg.ServerName, "login", cfg.LoginURL, "api", cfg.APIVersion)

	client, err := Connect(ctx, cfg, false)
	if err != nil {
		return err
	}
	logger.Info("connected", "user", cfg.Username)

	server := handlers.NewServer(client, handlers.ServerOptions{
		Name:        cfg.ServerName,
		Version:     version,
		MatchPolicy: cfg.NameMatch,
		Logger:      logger,
	})
	return server.Run(ctx, &mcp.StdioTransport{})
}
