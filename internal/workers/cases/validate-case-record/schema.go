package validatecaserecord

func stringField(minLength, maxLength int) map[string]interface{} {
	field := map[string]interface{}{"type": "string", "maxLength": maxLength}
	if minLength > 0 {
		field["minLength"] = minLength
	}
	return field
}

// caseSchema mirrors the column constraints of the cases table.
var caseSchema = map[string]interface{}{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type":    "object",
	"required": []interface{}{
		"case_number", "title", "description", "crime_type",
		"status", "severity", "location", "date_reported",
	},
	"properties": map[string]interface{}{
		"case_number": map[string]interface{}{
			"type":      "string",
			"minLength": 3,
			"maxLength": 50,
			"pattern":   "^[A-Za-z0-9-]+$",
		},
		"title":            stringField(3, 200),
		"description":      stringField(10, 5000),
		"crime_type":       stringField(2, 100),
		"status":           stringField(2, 50),
		"location":         stringField(2, 200),
		"primary_suspect":  stringField(0, 200),
		"evidence_summary": stringField(0, 5000),
		"severity": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"low", "medium", "high", "critical"},
		},
		"workflow_stage": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"pending_review", "under_review", "needs_editing", "approved", "published"},
		},
		"date_reported": map[string]interface{}{
			"type":    "string",
			"format":  "date",
			"pattern": `^\d{4}-\d{2}-\d{2}$`,
		},
		"reported_by": map[string]interface{}{"type": "string"},
	},
}
