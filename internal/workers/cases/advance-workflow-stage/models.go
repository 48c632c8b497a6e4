package advanceworkflowstage

type Input struct {
	CaseNumber  string `json:"caseNumber"`
	TargetStage string `json:"targetStage"`
	ActorID     string `json:"actorId"`
	Comment     string `json:"comment,omitempty"`
}

type Output struct {
	CaseNumber    string `json:"caseNumber"`
	PreviousStage string `json:"previousStage"`
	WorkflowStage string `json:"workflowStage"`
	Severity      string `json:"severity"`
	ReportedBy    string `json:"reportedBy"`
	Changed       bool   `json:"changed"`
	Indexed       bool   `json:"indexed"`
	UpdatedAt     string `json:"updatedAt"`
}
