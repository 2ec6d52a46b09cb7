// ABOUTME: Entry point for the Salesforce MCP server and CLI
// ABOUTME: Routes to the MCP server or operator commands based on arguments
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/sfmcp/cli"
	"github.com/harperreed/sfmcp/config"
	"github.com/harperreed/sfmcp/salesforce"
)

const version = "0.1.0"

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	envFile := flag.String("env-file", "", "Read this .env file instead of ./.env and the XDG config file")
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		fmt.Printf("sfmcp version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	// stdout belongs to the MCP transport; all logging goes to stderr
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "sfmcp"})

	var envFiles []string
	if *envFile != "" {
		envFiles = []string{*envFile}
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		logger.Fatal("configuration", "err", err)
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command, commandArgs := args[0], args[1:]
	if command == "mcp" {
		if err := cli.MCPCommand(ctx, cfg, logger, version); err != nil {
			logger.Fatal("MCP server failed", "err", err)
		}
		return
	}

	run, ok := commands[command]
	if !ok {
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	client, err := cli.Connect(ctx, cfg, true)
	if err != nil {
		logger.Fatal("login failed", "err", err)
	}
	if err := run(ctx, client, commandArgs); err != nil {
		logger.Fatal(command, "err", err)
	}
}

type runner func(ctx context.Context, client *salesforce.Client, args []string) error

var commands = map[string]runner{
	"query": func(ctx context.Context, c *salesforce.Client, args []string) error {
		return cli.QueryCommand(ctx, c, args, os.Stdout)
	},
	"describe": func(ctx context.Context, c *salesforce.Client, args []string) error {
		return cli.DescribeCommand(ctx, c, args, os.Stdout)
	},
	"objects": func(ctx context.Context, c *salesforce.Client, args []string) error {
		return cli.ObjectsCommand(ctx, c, args, os.Stdout)
	},
	"whoami": func(ctx context.Context, c *salesforce.Client, args []string) error {
		return cli.WhoamiCommand(ctx, c, args, os.Stdout)
	},
	"viz": func(ctx context.Context, c *salesforce.Client, args []string) error {
		if len(args) == 0 || args[0] != "pipeline" {
			return fmt.Errorf("viz requires a subcommand: pipeline")
		}
		return cli.VizPipelineCommand(ctx, c, args[1:], os.Stdout, time.Now())
	},
}

func printUsage() {
	fmt.Printf(`sfmcp v%s - Salesforce tools for agents

USAGE:
  sfmcp [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --env-file <path>      Read this .env file instead of ./.env and ~/.config/sfmcp/.env

COMMANDS:
  mcp                    Start the MCP server on stdio
  query <soql>           Run a SOQL query
    --page-size <n>        Records per page (default: 25)
    --page <n>             Page number (default: 1)
    --json                 Print the raw result as JSON
  describe <object>      Show object metadata
    --fields               Include fields
    --page-size, --page    Page through fields
    --json                 Print the simplified object as JSON
  objects                List objects in the org
    --custom               Only custom objects
    --page-size, --page    Page through objects
  whoami                 Show the authenticated user
  viz pipeline           Render the opportunity pipeline
    --timeframe <tf>       current_quarter (default), last_quarter, current_year, last_year, all_time
    --industry <name>      Restrict to one industry
    --owner <name>         Restrict to one owner
    --format <fmt>         dashboard (default) or dot
    --output <file>        Output file (default: stdout)

CONFIGURATION:
  SF_CLIENT_ID, SF_CLIENT_SECRET, SF_USERNAME, SF_PASSWORD (password plus security token)
  SF_LOGIN_URL (default: https://login.salesforce.com), SF_API_VERSION (default: v59.0)
  MCP_SERVER_NAME, SFMCP_LOG_LEVEL (debug, info, warn, error), SFMCP_NAME_MATCH (boundary, contains)

EXAMPLES:
  # Start the MCP server for a desktop agent
  sfmcp mcp

  # Query accounts, second page of 10
  sfmcp query --page-size 10 --page 2 "SELECT Id, Name FROM Account"

  # Pipeline graph for last quarter
  sfmcp viz pipeline --timeframe last_quarter --format dot --output pipeline.dot

`, version)
}
