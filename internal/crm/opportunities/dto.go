package opportunities

// CreateOpportunityRequest is the body of POST /api/opportunities.
type CreateOpportunityRequest struct {
	LeadID     string  `json:"leadId" validate:"omitempty,uuid"`
	Title      string  `json:"title" validate:"required,max=200"`
	Stage      Stage   `json:"stage" validate:"omitempty,oneof=prospecting proposal negotiation won lost"`
	Amount     float64 `json:"amount" validate:"gte=0"`
	VendorID   *int64  `json:"vendorId" validate:"omitempty,gt=0"`
	AssignedTo string  `json:"assignedTo" validate:"max=100"`
}

// AssignRequest is the body of PUT /api/opportunities/{id}/assign.
type AssignRequest struct {
	Assignee string `json:"assignee" validate:"required,max=100"`
}
