package leads

// CreateLeadRequest is the body of POST /api/leads.
type CreateLeadRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	Company    string `json:"company" validate:"max=200"`
	Email      string `json:"email" validate:"omitempty,email,max=200"`
	Status     Status `json:"status" validate:"omitempty,oneof=new contacted qualified lost"`
	Source     string `json:"source" validate:"max=100"`
	AssignedTo string `json:"assignedTo" validate:"max=100"`
}

// AssignRequest is the body of PUT /api/leads/{id}/assign.
type AssignRequest struct {
	Assignee string `json:"assignee" validate:"required,max=100"`
}
