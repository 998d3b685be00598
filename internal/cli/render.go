package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/mermaid-mcp/internal/render"
)

// errInvalidDiagram is returned by the local commands when the renderer
// rejects the diagram. Details have already been printed.
var errInvalidDiagram = errors.New("mermaid diagram is invalid")

func (a *app) renderCommand() *cobra.Command {
	var format, theme, background, output string

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a diagram file locally",
		Long:  `Render a Mermaid file (or stdin when the file is "-" or omitted) with the configured renderer.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			diagram, err := readDiagram(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			req, err := render.NewRequest(diagram, format, theme, background)
			if err != nil {
				return err
			}

			res := a.cfg.Invoker(a.logger).Render(cmd.Context(), req)
			if !res.OK {
				return failure(cmd.ErrOrStderr(), res)
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(res.Image)
				return err
			}
			if err := os.WriteFile(output, res.Image, 0o644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			a.logger.Info("wrote image", "path", output, "mime", res.MIMEType, "width", res.Info.Width, "height", res.Info.Height)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(render.DefaultFormat), "output format: png or svg")
	cmd.Flags().StringVarP(&theme, "theme", "t", "", "mermaid theme: default, dark, forest, neutral")
	cmd.Flags().StringVarP(&background, "background", "b", "", "background colour (default transparent for png)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func (a *app) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a diagram file locally",
		Long:  `Validate a Mermaid file (or stdin when the file is "-" or omitted) with the configured renderer.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			diagram, err := readDiagram(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			req, err := render.NewRequest(diagram, "", "", "")
			if err != nil {
				return err
			}

			res := a.cfg.Invoker(a.logger).Render(cmd.Context(), req)
			if !res.OK {
				return failure(cmd.ErrOrStderr(), res)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Mermaid diagram is valid")
			return nil
		},
	}
}

// failure prints res and returns the error the command exits with. An
// interrupted render reports the context error rather than an invalid diagram.
func failure(w io.Writer, res *render.Result) error {
	if errors.Is(res.Err, render.ErrCanceled) {
		return res.Err
	}
	printFailure(w, res)
	return errInvalidDiagram
}

// readDiagram reads the file named by args[0], or stdin when there is no
// argument or it is "-".
func readDiagram(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read diagram: %w", err)
	}
	return string(data), nil
}

func printFailure(w io.Writer, res *render.Result) {
	fmt.Fprintln(w, "Mermaid diagram is invalid")
	fmt.Fprintln(w, res.Err)
	if res.Diagnostics != "" {
		fmt.Fprintf(w, "Detailed error output:\n%s\n", res.Diagnostics)
	}
}
