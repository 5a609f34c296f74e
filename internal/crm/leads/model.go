// Package leads manages prospective customers before they become
// opportunities.
package leads

import (
	"time"

	"github.com/google/uuid"
)

// Status is the qualification state of a lead.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusLost      Status = "lost"
)

// Lead is a row of the leads table.
type Lead struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Company    string    `json:"company"`
	Email      string    `json:"email"`
	Status     Status    `json:"status"`
	Source     string    `json:"source"`
	AssignedTo string    `json:"assignedTo"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
