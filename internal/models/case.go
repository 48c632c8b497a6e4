package models

import "time"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// AtLeast reports whether s is as severe as threshold. Unknown values rank lowest.
func (s Severity) AtLeast(threshold Severity) bool {
	return severityRank[s] >= severityRank[threshold] && severityRank[s] > 0
}

type WorkflowStage string

const (
	StagePendingReview WorkflowStage = "pending_review"
	StageUnderReview   WorkflowStage = "under_review"
	StageNeedsEditing  WorkflowStage = "needs_editing"
	StageApproved      WorkflowStage = "approved"
	StagePublished     WorkflowStage = "published"
)

var stageTransitions = map[WorkflowStage][]WorkflowStage{
	StagePendingReview: {StageUnderReview},
	StageUnderReview:   {StageNeedsEditing, StageApproved},
	StageNeedsEditing:  {StagePendingReview},
	StageApproved:      {StagePublished},
}

// CanTransition reports whether a case may move from s to next.
func (s WorkflowStage) CanTransition(next WorkflowStage) bool {
	for _, allowed := range stageTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s WorkflowStage) IsValid() bool {
	switch s {
	case StagePendingReview, StageUnderReview, StageNeedsEditing, StageApproved, StagePublished:
		return true
	}
	return false
}

const DateLayout = "2006-01-02"

// CaseRecord is a crime case as stored in postgres and indexed in
// Elasticsearch once published.
type CaseRecord struct {
	ID              string        `json:"id" db:"id"`
	CaseNumber      string        `json:"case_number" db:"case_number"`
	Title           string        `json:"title" db:"title"`
	Description     string        `json:"description" db:"description"`
	CrimeType       string        `json:"crime_type" db:"crime_type"`
	Status          string        `json:"status" db:"status"`
	Severity        Severity      `json:"severity" db:"severity"`
	Location        string        `json:"location" db:"location"`
	PrimarySuspect  *string       `json:"primary_suspect,omitempty" db:"primary_suspect"`
	EvidenceSummary *string       `json:"evidence_summary,omitempty" db:"evidence_summary"`
	DateReported    time.Time     `json:"date_reported" db:"date_reported"`
	WorkflowStage   WorkflowStage `json:"workflow_stage" db:"workflow_stage"`
	ReportedBy      string        `json:"reported_by" db:"reported_by"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// SearchDocument is the Elasticsearch representation of a published case.
func (c *CaseRecord) SearchDocument() map[string]interface{} {
	doc := map[string]interface{}{
		"id":             c.ID,
		"case_number":    c.CaseNumber,
		"title":          c.Title,
		"description":    c.Description,
		"crime_type":     c.CrimeType,
		"status":         c.Status,
		"severity":       string(c.Severity),
		"location":       c.Location,
		"date_reported":  c.DateReported.Format(DateLayout),
		"workflow_stage": string(c.WorkflowStage),
	}
	if c.PrimarySuspect != nil {
		doc["primary_suspect"] = *c.PrimarySuspect
	}
	if c.EvidenceSummary != nil {
		doc["evidence_summary"] = *c.EvidenceSummary
	}
	return doc
}

// CaseIndexMapping fixes the case index field types. Exact-match fields are
// lowercase-normalized keywords so term queries match regardless of the
// casing a case was filed with.
func CaseIndexMapping() map[string]interface{} {
	exact := map[string]interface{}{"type": "keyword", "normalizer": "lowercase_keyword"}
	return map[string]interface{}{
		"settings": map[string]interface{}{
			"analysis": map[string]interface{}{
				"normalizer": map[string]interface{}{
					"lowercase_keyword": map[string]interface{}{
						"type":   "custom",
						"filter": []string{"lowercase", "asciifolding"},
					},
				},
			},
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id":               map[string]interface{}{"type": "keyword"},
				"case_number":      exact,
				"crime_type":       exact,
				"workflow_stage":   exact,
				"severity":         exact,
				"status":           exact,
				"title":            map[string]interface{}{"type": "text"},
				"description":      map[string]interface{}{"type": "text"},
				"evidence_summary": map[string]interface{}{"type": "text"},
				"location":         map[string]interface{}{"type": "text"},
				"primary_suspect":  map[string]interface{}{"type": "text"},
				"date_reported":    map[string]interface{}{"type": "date", "format": "yyyy-MM-dd"},
			},
		},
	}
}

type AuditEntry struct {
	EventType    string                 `json:"eventType"`
	ResourceType string                 `json:"resourceType"`
	ResourceID   string                 `json:"resourceId"`
	Details      map[string]interface{} `json:"details"`
	CreatedAt    string                 `json:"createdAt"`
}
