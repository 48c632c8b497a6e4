// Package cli implements the interpret command-line tool.
package cli

import (
	"fmt"
	"time"

	"crime-case-workers/internal/interpreter"

	"github.com/spf13/cobra"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

type options struct {
	output string
	parser *interpreter.Parser
}

// NewRootCmd builds the interpret command tree. A nil clock uses wall time.
func NewRootCmd(now func() time.Time) *cobra.Command {
	opts := &options{parser: interpreter.NewParser(interpreter.WithClock(now))}

	root := &cobra.Command{
		Use:           "interpret",
		Short:         "Turn spoken case-search commands into structured queries",
		Long:          "Parses final voice transcripts into intents and entities, the same way the parse-voice-command worker does.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", formatText, "Output format: text, json or yaml")

	root.AddCommand(
		newParseCmd(opts),
		newSummaryCmd(opts),
		newReplCmd(opts),
	)
	return root
}

func (o *options) validate() error {
	switch o.output {
	case formatText, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want text, json or yaml)", o.output)
}
