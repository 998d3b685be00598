// Package render runs the Mermaid CLI (mmdc) against diagram text and
// normalises the outcome into a Result.
//
// Each call to Invoker.Render is independent: it allocates its own scratch
// directory, writes the diagram to an input file, spawns the renderer pointed
// at that file and an output path, waits for it under a timeout and reads the
// output back. The scratch directory is removed before Render returns on every
// path, including spawn failure and timeout.
//
// # Renderer Command
//
// The renderer is invoked as
//
//	<command> [args...] -i <dir>/input.mmd -o <dir>/output.<ext> -e <format> [-b <background>] [-t <theme>] [-p <puppeteer config>]
//
// PNG output gets "-b transparent" unless an explicit background is requested.
// Standard input is /dev/null. Standard error is captured line by line and
// attached to failed results as diagnostics.
//
// # Timeouts
//
// On timeout or cancellation only the direct child is killed. When the
// command is a launcher such as "npx -y @mermaid-js/mermaid-cli", the node and
// Chromium processes it started may outlive it. The wait for their output
// pipes is capped so Render still returns promptly, but the processes
// themselves are not reaped. Install mmdc directly where that matters.
//
// # Failures
//
// Render never returns a Go error. Failures are reported through Result.Err,
// which wraps one of the sentinel errors in this package:
//
//   - ErrInvalidRequest: the request was rejected before spawning
//   - ErrSpawn: the renderer binary could not be started
//   - ErrTimeout: the renderer exceeded the timeout and was killed
//   - ErrCanceled: the caller's context was cancelled
//   - ErrRenderer: the renderer exited non-zero (diagnostics attached)
//   - ErrOutput: the renderer exited zero but the output is missing or unusable
//
// # Prerequisites
//
// Install the Mermaid CLI:
//   - npm install -g @mermaid-js/mermaid-cli
//   - or configure the command as "npx -y @mermaid-js/mermaid-cli"
package render
