package matchcases

type Input struct {
	CaseNumber string                 `json:"caseNumber"`
	Case       map[string]interface{} `json:"case"`
	SkipCache  bool                   `json:"skipCache,omitempty"`
}

type Match struct {
	CaseNumber string  `json:"caseNumber"`
	Score      float64 `json:"score"` // 0-100
	Reason     string  `json:"reason,omitempty"`
}

type Output struct {
	CaseNumber string  `json:"caseNumber"`
	Matches    []Match `json:"matches"`
	FromCache  bool    `json:"fromCache"`
}

type matchRequest struct {
	Case       map[string]interface{} `json:"case"`
	MaxResults int                    `json:"maxResults"`
}

type matchResponse struct {
	Matches []Match `json:"matches"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
