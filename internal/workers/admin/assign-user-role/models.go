package assignuserrole

type Input struct {
	UserID     string `json:"userId"`
	Role       string `json:"role"`
	AssignedBy string `json:"assignedBy"`
}

type Output struct {
	UserID     string `json:"userId"`
	Role       string `json:"role"`
	AssignedAt string `json:"assignedAt"`
}
