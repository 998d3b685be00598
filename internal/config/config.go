// Package config resolves runtime settings for the Mermaid MCP server.
//
// Settings come from built-in defaults, then MERMAID_MCP_* environment
// variables, then command-line flags. There is no configuration file: MCP
// clients launch the server with a command line and an environment, so
// those are the only inputs.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ironsheep/mermaid-mcp/internal/render"
)

// Environment variables.
const (
	EnvRenderer        = "MERMAID_MCP_RENDERER"
	EnvTimeout         = "MERMAID_MCP_TIMEOUT"
	EnvPuppeteerConfig = "MERMAID_MCP_PUPPETEER_CONFIG"
	EnvTempDir         = "MERMAID_MCP_TEMP_DIR"
	EnvLogLevel        = "MERMAID_MCP_LOG_LEVEL"
)

// Config holds the server settings.
type Config struct {
	// Renderer is the renderer command line, split on whitespace, e.g.
	// "mmdc" or "npx -y @mermaid-js/mermaid-cli".
	Renderer string

	// Timeout bounds each renderer run.
	Timeout time.Duration

	// PuppeteerConfig is an optional puppeteer JSON config passed to mmdc
	// (needed e.g. for --no-sandbox in containers).
	PuppeteerConfig string

	// TempDir is where scratch directories are created; empty means the
	// system default.
	TempDir string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Renderer: render.DefaultCommand,
		Timeout:  render.DefaultTimeout,
		LogLevel: log.InfoLevel.String(),
	}
}

// FromEnv returns Default overridden by any MERMAID_MCP_* variables found
// through getenv (normally os.Getenv).
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()

	if v := strings.TrimSpace(getenv(EnvRenderer)); v != "" {
		cfg.Renderer = v
	}
	if v := strings.TrimSpace(getenv(EnvTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Timeout = d
	}
	if v := strings.TrimSpace(getenv(EnvPuppeteerConfig)); v != "" {
		cfg.PuppeteerConfig = v
	}
	if v := strings.TrimSpace(getenv(EnvTempDir)); v != "" {
		cfg.TempDir = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	var errs []error

	if len(strings.Fields(c.Renderer)) == 0 {
		errs = append(errs, errors.New("renderer command is empty"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c Config) Level() (log.Level, error) {
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel)))
	if err != nil {
		return level, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}

// Invoker builds a render invoker from the settings.
func (c Config) Invoker(logger *log.Logger) *render.Invoker {
	fields := strings.Fields(c.Renderer)
	var command string
	var args []string
	if len(fields) > 0 {
		command, args = fields[0], fields[1:]
	}

	inv := render.NewInvoker(command, args...)
	inv.Timeout = c.Timeout
	inv.PuppeteerConfig = c.PuppeteerConfig
	inv.TempDir = c.TempDir
	inv.Logger = logger
	return inv
}
