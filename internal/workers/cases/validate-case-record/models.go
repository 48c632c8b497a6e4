package validatecaserecord

import "crime-case-workers/internal/common/validation"

type Input struct {
	CaseData map[string]interface{} `json:"caseData"`
}

type Output struct {
	IsValid bool                         `json:"isValid"`
	Errors  []validation.ValidationError `json:"errors"`
}
