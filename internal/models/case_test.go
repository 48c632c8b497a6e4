package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorkflowStage_CanTransition(t *testing.T) {
	tests := []struct {
		from, to WorkflowStage
		allowed  bool
	}{
		{StagePendingReview, StageUnderReview, true},
		{StageUnderReview, StageNeedsEditing, true},
		{StageUnderReview, StageApproved, true},
		{StageNeedsEditing, StagePendingReview, true},
		{StageApproved, StagePublished, true},
		{StagePendingReview, StagePublished, false},
		{StagePublished, StagePendingReview, false},
		{StageApproved, StageUnderReview, false},
		{WorkflowStage("archived"), StagePublished, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to))
		})
	}
}

func TestSeverity_AtLeast(t *testing.T) {
	assert.True(t, SeverityCritical.AtLeast(SeverityHigh))
	assert.True(t, SeverityHigh.AtLeast(SeverityHigh))
	assert.False(t, SeverityMedium.AtLeast(SeverityHigh))
	assert.False(t, Severity("unknown").AtLeast(SeverityLow))
}

func TestCaseRecord_SearchDocument(t *testing.T) {
	suspect := "john doe"
	c := &CaseRecord{
		ID:             "id-1",
		CaseNumber:     "CR-2024-001",
		Title:          "Armed robbery at corner store",
		CrimeType:      "armed robbery",
		Severity:       SeverityHigh,
		Location:       "sector 9",
		PrimarySuspect: &suspect,
		DateReported:   time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		WorkflowStage:  StagePublished,
	}

	doc := c.SearchDocument()
	assert.Equal(t, "2024-06-10", doc["date_reported"])
	assert.Equal(t, "john doe", doc["primary_suspect"])
	assert.Equal(t, "published", doc["workflow_stage"])
	_, hasEvidence := doc["evidence_summary"]
	assert.False(t, hasEvidence)
}

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleInvestigator.IsValid())
	assert.False(t, Role("superuser").IsValid())
}

func TestCaseIndexMapping_ExactFieldsAreKeywords(t *testing.T) {
	props := CaseIndexMapping()["mappings"].(map[string]interface{})["properties"].(map[string]interface{})

	for _, field := range []string{"case_number", "crime_type", "workflow_stage", "severity"} {
		def := props[field].(map[string]interface{})
		assert.Equal(t, "keyword", def["type"], field)
		assert.Equal(t, "lowercase_keyword", def["normalizer"], field)
	}
	assert.Equal(t, "date", props["date_reported"].(map[string]interface{})["type"])

	// every field the indexer writes has an explicit type
	suspect, evidence := "x", "y"
	doc := (&CaseRecord{PrimarySuspect: &suspect, EvidenceSummary: &evidence}).SearchDocument()
	for field := range doc {
		assert.Contains(t, props, field)
	}
}
