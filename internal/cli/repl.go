package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newReplCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Parse one command per input line until EOF",
		Long:  "Each non-blank line is treated as a final transcript. Results are printed in the selected output format.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.validate(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if err := render(out, opts.output, opts.parser.Parse(line)); err != nil {
					return err
				}
				if opts.output == formatYAML {
					fmt.Fprintln(out, "---")
				}
			}
			return scanner.Err()
		},
	}
}
