package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rockgraph/pkg/extract"
	pkgio "github.com/matzehuels/rockgraph/pkg/io"
)

// extractCommand creates the extract command, which runs only the extractor.
func (c *CLI) extractCommand() *cobra.Command {
	var (
		src    sourceFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "extract <source-dir>",
		Short: "Print the sub-project declarations of a source tree",
		Long: `Print the sub-project declarations of a TheRock source tree.

Each line has the form "project:dep1, dep2". The output can be fed back to
'rockgraph graph --declarations' to re-render without running cmake again.`,
		Example: `  rockgraph extract ~/src/TheRock -o therock_deps.txt`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExtract(cmd.Context(), src.cmakeSource(c.Logger), args[0], output, cmd)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	src.register(cmd)
	return cmd
}

func (c *CLI) runExtract(ctx context.Context, source extract.Source, dir, output string, cmd *cobra.Command) error {
	prog := newProgress(c.Logger)

	var spinner *Spinner
	if !c.verbose() {
		spinner = newSpinnerWithContext(ctx, "Evaluating build description...")
		spinner.Start()
	}
	decls, err := source.Extract(ctx, dir)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		printError(c.Out, "Extraction failed")
		return fmt.Errorf("extract: %w", err)
	}
	prog.done(fmt.Sprintf("Extracted %d declarations", len(decls)))

	if output == "" {
		return extract.Write(cmd.OutOrStdout(), decls)
	}
	if err := pkgio.WriteFileAtomic(output, extract.Marshal(decls)); err != nil {
		return err
	}
	printSuccess(c.Out, "Wrote %d declarations", len(decls))
	printFile(c.Out, output)
	return nil
}
