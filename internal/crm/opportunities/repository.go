package opportunities

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	crmshared "github.com/odyssey-erp/odyssey-crm/internal/crm/shared"
	"github.com/odyssey-erp/odyssey-crm/internal/listview"
	"github.com/odyssey-erp/odyssey-crm/internal/platform/db"
	"github.com/odyssey-erp/odyssey-crm/internal/shared"
)

const opportunityColumns = "id, lead_id, title, stage, amount, vendor_id, assigned_to, created_at"

func stageOptions() []string {
	out := make([]string, 0, len(Stages))
	for _, s := range Stages {
		out = append(out, string(s))
	}
	return out
}

// ListSpec answers GET /api/opportunities.
var ListSpec = crmshared.ListSpec{
	Table:         "opportunities",
	Select:        opportunityColumns,
	SearchColumns: []string{"title", "assigned_to"},
	DateColumn:    "created_at",
	SortColumns: map[string]string{
		"title":      "title",
		"stage":      "stage",
		"amount":     "amount",
		"assignedTo": "assigned_to",
		"createdAt":  "created_at",
	},
	Filters: map[string]crmshared.FilterColumn{
		"stage":      {Column: "stage", Options: stageOptions()},
		"assignedTo": {Column: "assigned_to", Label: "Assigned To", Parse: crmshared.Text},
		"vendorId":   {Column: "vendor_id", Label: "Vendor", Parse: crmshared.Int64},
	},
	Defaults: listview.Defaults{PageSize: 10, SortColumn: "createdAt", SortDirection: listview.SortDesc},
}

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	crmshared.Querier
	db.TxBeginner
}

// Repository provides Postgres persistence for opportunities.
type Repository struct {
	db     DB
	lister *crmshared.Lister[Opportunity]
}

// NewRepository constructs a Repository.
func NewRepository(pool DB) *Repository {
	return &Repository{db: pool, lister: crmshared.NewLister(pool, ListSpec, scanOpportunity)}
}

func scanOpportunity(row pgx.Row) (Opportunity, error) {
	var o Opportunity
	var stage string
	err := row.Scan(&o.ID, &o.LeadID, &o.Title, &stage, &o.Amount, &o.VendorID, &o.AssignedTo, &o.CreatedAt)
	o.Stage = Stage(stage)
	return o, err
}

// List returns one page of opportunities.
func (r *Repository) List(ctx context.Context, state listview.FilterState) ([]Opportunity, int, error) {
	return r.lister.List(ctx, state)
}

// Get returns one opportunity.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Opportunity, error) {
	o, err := scanOpportunity(r.db.QueryRow(ctx, "SELECT "+opportunityColumns+" FROM opportunities WHERE id = $1", id))
	return o, crmshared.MapError(err)
}

// Create inserts an opportunity.
func (r *Repository) Create(ctx context.Context, o Opportunity) (Opportunity, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO opportunities (id, lead_id, title, stage, amount, vendor_id, assigned_to)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+opportunityColumns, o.ID, o.LeadID, o.Title, string(o.Stage), o.Amount, o.VendorID, o.AssignedTo)
	created, err := scanOpportunity(row)
	return created, crmshared.MapError(err)
}

// Assign sets the assignee and records the change in the activity log within
// one transaction. It returns the updated opportunity and the previous
// assignee.
func (r *Repository) Assign(ctx context.Context, id uuid.UUID, assignee, actor string) (Opportunity, string, error) {
	var (
		opp      Opportunity
		previous string
	)
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, "SELECT assigned_to FROM opportunities WHERE id = $1 FOR UPDATE", id).Scan(&previous); err != nil {
			return err
		}
		var err error
		opp, err = scanOpportunity(tx.QueryRow(ctx, `UPDATE opportunities SET assigned_to = $2
WHERE id = $1
RETURNING `+opportunityColumns, id, assignee))
		if err != nil {
			return err
		}
		return shared.NewActivityLog(tx).Record(ctx, shared.Activity{
			Entity:   "opportunity",
			EntityID: id.String(),
			Action:   "assigned",
			Actor:    actor,
			Meta:     map[string]any{"assignee": assignee, "previous": previous},
		})
	})
	if err != nil {
		return Opportunity{}, "", crmshared.MapError(err)
	}
	return opp, previous, nil
}
