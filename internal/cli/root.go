// Package cli implements the mermaid-mcp command line.
//
// Running the binary with no subcommand starts the MCP server on stdio,
// which is how MCP clients launch it. The render and validate subcommands
// run the same renderer locally for troubleshooting an installation.
//
// # Logging
//
// Logs go to stderr. --verbose (-v) enables debug output, which includes
// every line the renderer writes.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ironsheep/mermaid-mcp/internal/config"
	"github.com/ironsheep/mermaid-mcp/internal/server"
)

const appName = "mermaid-mcp"

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// SetVersion sets the build information reported by --version and sent to
// MCP clients during initialization.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	buildTime = d
}

// app carries the resolved settings and logger shared by all commands.
type app struct {
	cfg     config.Config
	verbose bool
	logger  *log.Logger
	stderr  io.Writer
}

// Execute runs the command line with os.Args.
func Execute(ctx context.Context) error {
	cfg, err := config.FromEnv(os.Getenv)
	if err != nil {
		return err
	}
	return newRootCommand(cfg, os.Stderr).ExecuteContext(ctx)
}

func newRootCommand(cfg config.Config, stderr io.Writer) *cobra.Command {
	a := &app{cfg: cfg, stderr: stderr}

	root := &cobra.Command{
		Use:   appName,
		Short: "MCP server that validates and renders Mermaid diagrams",
		Long: `mermaid-mcp exposes the Mermaid CLI (mmdc) to MCP clients over stdio.

Tools:
  validateMermaid  check that a diagram renders
  renderMermaid    render a diagram to PNG or SVG

Configure it in your MCP client (e.g., Claude Desktop) with the command
"mermaid-mcp". Environment variables:
  MERMAID_MCP_RENDERER          renderer command (default "mmdc")
  MERMAID_MCP_TIMEOUT           per-render timeout (default 30s)
  MERMAID_MCP_PUPPETEER_CONFIG  puppeteer config file passed to mmdc
  MERMAID_MCP_TEMP_DIR          parent directory for scratch files
  MERMAID_MCP_LOG_LEVEL         debug, info, warn or error`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("%s %s\n  Build time: %s\n  Git commit: %s\n", appName, version, buildTime, commit))

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.Renderer, "renderer", cfg.Renderer, "renderer command, e.g. \"npx -y @mermaid-js/mermaid-cli\"")
	flags.DurationVar(&a.cfg.Timeout, "timeout", cfg.Timeout, "maximum time for a single render")
	flags.StringVar(&a.cfg.PuppeteerConfig, "puppeteer-config", cfg.PuppeteerConfig, "puppeteer config file passed to the renderer")
	flags.StringVar(&a.cfg.TempDir, "temp-dir", cfg.TempDir, "parent directory for scratch files")
	flags.StringVar(&a.cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(a.renderCommand())
	root.AddCommand(a.validateCommand())

	return root
}

// setup validates the settings and creates the logger.
func (a *app) setup() error {
	if a.verbose {
		a.cfg.LogLevel = log.DebugLevel.String()
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, _ := a.cfg.Level()
	a.logger = newLogger(a.stderr, level)
	a.logger.Debug("configuration",
		"renderer", a.cfg.Renderer,
		"timeout", a.cfg.Timeout,
		"puppeteer_config", a.cfg.PuppeteerConfig,
		"temp_dir", a.cfg.TempDir)
	return nil
}

func (a *app) serve(ctx context.Context) error {
	a.logger.Info("starting", "version", version, "commit", commit)

	srv := server.New(a.cfg.Invoker(a.logger), a.logger, version)
	return srv.Run(ctx)
}
