// Package opportunities tracks deals through the sales pipeline.
package opportunities

import (
	"time"

	"github.com/google/uuid"
)

// Stage is a pipeline stage.
type Stage string

const (
	StageProspecting Stage = "prospecting"
	StageProposal    Stage = "proposal"
	StageNegotiation Stage = "negotiation"
	StageWon         Stage = "won"
	StageLost        Stage = "lost"
)

// Stages lists the pipeline in order.
var Stages = []Stage{StageProspecting, StageProposal, StageNegotiation, StageWon, StageLost}

// Opportunity is a row of the opportunities table.
type Opportunity struct {
	ID         uuid.UUID  `json:"id"`
	LeadID     *uuid.UUID `json:"leadId,omitempty"`
	Title      string     `json:"title"`
	Stage      Stage      `json:"stage"`
	Amount     float64    `json:"amount"`
	VendorID   *int64     `json:"vendorId,omitempty"`
	AssignedTo string     `json:"assignedTo"`
	CreatedAt  time.Time  `json:"createdAt"`
}
