package createcaserecord

// CaseData mirrors the payload checked by validate-case-record.
type CaseData struct {
	CaseNumber      string  `json:"case_number"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	CrimeType       string  `json:"crime_type"`
	Status          string  `json:"status"`
	Severity        string  `json:"severity"`
	Location        string  `json:"location"`
	PrimarySuspect  *string `json:"primary_suspect,omitempty"`
	EvidenceSummary *string `json:"evidence_summary,omitempty"`
	DateReported    string  `json:"date_reported"` // YYYY-MM-DD
}

type Input struct {
	CaseData   CaseData `json:"caseData"`
	ReportedBy string   `json:"reportedBy"`
}

type Output struct {
	CaseID        string `json:"caseId"`
	CaseNumber    string `json:"caseNumber"`
	WorkflowStage string `json:"workflowStage"`
	CreatedAt     string `json:"createdAt"` // ISO 8601
}
