package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ironsheep/mermaid-mcp/internal/imaging"
)

const (
	// DefaultCommand is the Mermaid CLI executable.
	DefaultCommand = "mmdc"

	// DefaultTimeout bounds a single renderer run.
	DefaultTimeout = 30 * time.Second

	// maxDiagnostics bounds how much renderer stderr is kept per run.
	maxDiagnostics = 64 << 10

	// waitDelay bounds how long Wait keeps copying output after the
	// renderer exits or is killed. Headless browsers spawned by mmdc can
	// keep the stderr pipe open after their parent dies.
	waitDelay = 2 * time.Second

	inputName  = "input.mmd"
	outputBase = "output"
)

var discardLogger = log.New(io.Discard)

// Result is the outcome of one render. Exactly one of Image and Err is set.
type Result struct {
	// OK reports whether the render succeeded.
	OK bool

	// Image holds the rendered bytes on success.
	Image []byte

	// MIMEType is "image/png" or "image/svg+xml" on success.
	MIMEType string

	// Info describes the rendered image on success.
	Info *imaging.ImageInfo

	// Err describes the failure. It wraps one of the package sentinel errors
	// except when the scratch directory could not be prepared.
	Err error

	// Diagnostics holds the renderer's standard error output, if any.
	Diagnostics string

	// Duration is the wall time spent in Render.
	Duration time.Duration
}

func succeeded(data []byte, format Format, info *imaging.ImageInfo) *Result {
	return &Result{
		OK:       true,
		Image:    data,
		MIMEType: format.MIMEType(),
		Info:     info,
	}
}

func failed(err error, diagnostics string) *Result {
	return &Result{
		Err:         err,
		Diagnostics: diagnostics,
	}
}

// Invoker spawns the Mermaid CLI. The zero value is not usable; call
// NewInvoker. Fields must not be changed while renders are in flight.
type Invoker struct {
	// Command is the renderer executable.
	Command string

	// Args are placed before the generated flags, e.g. for
	// "npx -y @mermaid-js/mermaid-cli".
	Args []string

	// Env is appended to the current process environment.
	Env []string

	// Timeout bounds each run. Zero means DefaultTimeout.
	Timeout time.Duration

	// PuppeteerConfig, if set, is passed to the renderer with -p.
	PuppeteerConfig string

	// TempDir is where scratch directories are created. Empty means
	// os.TempDir().
	TempDir string

	// Logger receives progress and renderer output. Nil disables logging.
	Logger *log.Logger
}

// NewInvoker returns an Invoker for the given command and leading arguments.
func NewInvoker(command string, args ...string) *Invoker {
	if command == "" {
		command = DefaultCommand
	}
	return &Invoker{
		Command: command,
		Args:    args,
		Timeout: DefaultTimeout,
	}
}

func (inv *Invoker) timeout() time.Duration {
	if inv.Timeout <= 0 {
		return DefaultTimeout
	}
	return inv.Timeout
}

func (inv *Invoker) logger() *log.Logger {
	if inv.Logger == nil {
		return discardLogger
	}
	return inv.Logger
}

// args builds the renderer argument list for one request.
func (inv *Invoker) args(req Request, input, output string) []string {
	args := make([]string, 0, len(inv.Args)+12)
	args = append(args, inv.Args...)
	args = append(args, "-i", input, "-o", output, "-e", string(req.Format))
	if bg := req.background(); bg != "" {
		args = append(args, "-b", bg)
	}
	if req.Theme != "" {
		args = append(args, "-t", string(req.Theme))
	}
	if inv.PuppeteerConfig != "" {
		args = append(args, "-p", inv.PuppeteerConfig)
	}
	return args
}

// Render runs the renderer for req and reports the outcome. It never
// returns nil and never panics on bad input. The scratch directory is
// removed before Render returns.
//
// ctx bounds the run in addition to the invoker's timeout; cancelling it
// kills the renderer and yields ErrCanceled.
func (inv *Invoker) Render(ctx context.Context, req Request) *Result {
	start := time.Now()
	id := uuid.NewString()
	logger := inv.logger().With("render", id[:8])

	res := inv.render(ctx, req, logger)
	res.Duration = time.Since(start)

	if res.OK {
		logger.Info("render complete",
			"format", res.Info.Format,
			"bytes", len(res.Image),
			"width", res.Info.Width,
			"height", res.Info.Height,
			"elapsed", res.Duration.Round(time.Millisecond))
	} else {
		logger.Warn("render failed", "err", res.Err, "elapsed", res.Duration.Round(time.Millisecond))
	}
	return res
}

func (inv *Invoker) render(ctx context.Context, req Request, logger *log.Logger) *Result {
	req, err := req.normalize()
	if err != nil {
		return failed(err, "")
	}

	dir, err := os.MkdirTemp(inv.TempDir, "mermaid-render-*")
	if err != nil {
		return failed(fmt.Errorf("failed to create scratch directory: %w", err), "")
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.Warn("failed to remove scratch directory", "dir", dir, "err", err)
		}
	}()

	input := filepath.Join(dir, inputName)
	output := filepath.Join(dir, outputBase+req.Format.Ext())

	if err := os.WriteFile(input, []byte(req.Diagram), 0o600); err != nil {
		return failed(fmt.Errorf("failed to write diagram: %w", err), "")
	}

	runCtx, cancel := context.WithTimeout(ctx, inv.timeout())
	defer cancel()

	args := inv.args(req, input, output)
	cmd := exec.CommandContext(runCtx, inv.Command, args...)
	cmd.Stdin = nil
	cmd.WaitDelay = waitDelay
	if len(inv.Env) > 0 {
		cmd.Env = append(os.Environ(), inv.Env...)
	}

	stderr := newLineCapture(logger, "stderr", maxDiagnostics)
	cmd.Stdout = newLineCapture(logger, "stdout", 0)
	cmd.Stderr = stderr

	logger.Debug("spawning renderer", "cmd", inv.Command, "args", args)

	if err := cmd.Start(); err != nil {
		if ctx.Err() != nil {
			return failed(fmt.Errorf("%w: %w", ErrCanceled, ctx.Err()), "")
		}
		return failed(fmt.Errorf("%w: %w", ErrSpawn, err), "")
	}

	waitErr := cmd.Wait()
	diagnostics := stderr.String()

	if waitErr != nil && !errors.Is(waitErr, exec.ErrWaitDelay) {
		switch {
		case ctx.Err() != nil:
			return failed(fmt.Errorf("%w: %w", ErrCanceled, ctx.Err()), diagnostics)
		case runCtx.Err() != nil:
			return failed(fmt.Errorf("%w after %s", ErrTimeout, inv.timeout()), diagnostics)
		}

		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			if summary := summarize(diagnostics); summary != "" {
				return failed(fmt.Errorf("%w: exit status %d: %s", ErrRenderer, exitErr.ExitCode(), summary), diagnostics)
			}
			return failed(fmt.Errorf("%w: exit status %d", ErrRenderer, exitErr.ExitCode()), diagnostics)
		}
		return failed(fmt.Errorf("%w: %w", ErrRenderer, waitErr), diagnostics)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		return failed(fmt.Errorf("%w: %w", ErrOutput, err), diagnostics)
	}

	info, err := imaging.Inspect(data, string(req.Format))
	if err != nil {
		return failed(fmt.Errorf("%w: %w", ErrOutput, err), diagnostics)
	}

	return succeeded(data, req.Format, info)
}
