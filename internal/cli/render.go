package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"crime-case-workers/internal/interpreter"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

var (
	intentStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#39BAE6"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB454"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7680"))
	questionStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#F07178"))
)

type result struct {
	interpreter.ParsedCommand
	Summary string `json:"summary"`
}

func summaryOf(cmd interpreter.ParsedCommand) string {
	return interpreter.FormatCommandSummary(cmd)
}

func render(w io.Writer, format string, cmd interpreter.ParsedCommand) error {
	switch format {
	case formatJSON:
		b, err := json.Marshal(result{ParsedCommand: cmd, Summary: summaryOf(cmd)})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case formatYAML:
		return renderYAML(w, cmd)
	default:
		_, err := fmt.Fprintln(w, renderText(cmd))
		return err
	}
}

// renderYAML goes through JSON so the keys match the API field names.
func renderYAML(w io.Writer, cmd interpreter.ParsedCommand) error {
	raw, err := json.Marshal(result{ParsedCommand: cmd, Summary: summaryOf(cmd)})
	if err != nil {
		return err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	b, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func renderText(cmd interpreter.ParsedCommand) string {
	var b strings.Builder
	b.WriteString(intentStyle.Render(string(cmd.Intent)))
	b.WriteString(" ")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("(confidence %.2f)", cmd.Confidence)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("summary: "))
	b.WriteString(summaryOf(cmd))

	if kw := cmd.Entities.Keywords; len(kw) > 0 {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("keywords: "))
		b.WriteString(strings.Join(kw, ", "))
	}
	if cmd.NeedsClarification && cmd.ClarificationQuestion != nil {
		b.WriteString("\n")
		b.WriteString(questionStyle.Render(*cmd.ClarificationQuestion))
	}
	return b.String()
}
