package notifycaseupdate

import (
	"fmt"
	"regexp"
	"strings"

	"crime-case-workers/internal/models"
)

var templates = map[models.WorkflowStage]models.NotificationTemplate{
	models.StagePendingReview: {
		Type:    string(models.StagePendingReview),
		Subject: "Case {{caseNumber}} submitted for review",
		Body:    "Hi {{name}},\n\nCase {{caseNumber}} ({{title}}) is waiting for an investigator to review it.\n{{comment}}",
		SMS:     "Case {{caseNumber}} submitted for review.",
	},
	models.StageUnderReview: {
		Type:    string(models.StageUnderReview),
		Subject: "Case {{caseNumber}} is under review",
		Body:    "Hi {{name}},\n\nAn investigator has started reviewing case {{caseNumber}} ({{title}}).\n{{comment}}",
		SMS:     "Case {{caseNumber}} is under review.",
	},
	models.StageNeedsEditing: {
		Type:    string(models.StageNeedsEditing),
		Subject: "Case {{caseNumber}} needs changes",
		Body:    "Hi {{name}},\n\nThe reviewer sent case {{caseNumber}} ({{title}}) back for editing.\n{{comment}}",
		SMS:     "Case {{caseNumber}} needs edits before approval.",
	},
	models.StageApproved: {
		Type:    string(models.StageApproved),
		Subject: "Case {{caseNumber}} approved",
		Body:    "Hi {{name}},\n\nCase {{caseNumber}} ({{title}}) was approved and is queued for publishing.\n{{comment}}",
		SMS:     "Case {{caseNumber}} approved.",
	},
	models.StagePublished: {
		Type:    string(models.StagePublished),
		Subject: "Case {{caseNumber}} published",
		Body:    "Hi {{name}},\n\nCase {{caseNumber}} ({{title}}) is now published and searchable.\n{{comment}}",
		SMS:     "Case {{caseNumber}} is published.",
	},
}

var leftoverPlaceholder = regexp.MustCompile(`\{\{[^}]+\}\}`)

// renderTemplate substitutes {{key}} placeholders; unknown keys render empty.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl
	for k, v := range data {
		value := ""
		if s, ok := v.(string); ok {
			value = s
		} else if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, "{{"+k+"}}", value)
	}
	return strings.TrimSpace(leftoverPlaceholder.ReplaceAllString(result, ""))
}
