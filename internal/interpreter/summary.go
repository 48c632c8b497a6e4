package interpreter

import "strings"

const generalSearch = "General search"

func FormatCommandSummary(cmd ParsedCommand) string {
	e := cmd.Entities
	var parts []string

	if len(e.CrimeType) > 0 {
		parts = append(parts, "Crime: "+strings.Join(e.CrimeType, ", "))
	}
	if e.Location != nil {
		parts = append(parts, "Location: "+*e.Location)
	}
	if e.TimeRange != nil && e.TimeRange.Relative != "" {
		parts = append(parts, "Time: "+e.TimeRange.Relative)
	}
	if e.Suspect != nil {
		parts = append(parts, "Suspect: "+*e.Suspect)
	}
	if e.CaseID != nil {
		parts = append(parts, "Case: "+*e.CaseID)
	}

	if len(parts) == 0 {
		return generalSearch
	}
	return strings.Join(parts, " | ")
}
