package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newParseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "parse <text...>",
		Short:   "Parse a command and print intent, entities and confidence",
		Example: `  interpret parse show me all armed robberies this month -o json`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			result := opts.parser.Parse(strings.Join(args, " "))
			return render(cmd.OutOrStdout(), opts.output, result)
		},
	}
}

func newSummaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <text...>",
		Short: "Print the one-line summary of a command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := opts.parser.Parse(strings.Join(args, " "))
			_, err := cmd.OutOrStdout().Write([]byte(summaryOf(result) + "\n"))
			return err
		},
	}
}
