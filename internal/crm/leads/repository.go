package leads

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	crmshared "github.com/odyssey-erp/odyssey-crm/internal/crm/shared"
	"github.com/odyssey-erp/odyssey-crm/internal/listview"
	"github.com/odyssey-erp/odyssey-crm/internal/platform/db"
	"github.com/odyssey-erp/odyssey-crm/internal/shared"
)

const leadColumns = "id, name, company, email, status, source, assigned_to, created_at, updated_at"

// ListSpec answers GET /api/leads.
var ListSpec = crmshared.ListSpec{
	Table:         "leads",
	Select:        leadColumns,
	SearchColumns: []string{"name", "company", "email"},
	DateColumn:    "created_at",
	SortColumns: map[string]string{
		"name":       "name",
		"company":    "company",
		"email":      "email",
		"status":     "status",
		"source":     "source",
		"assignedTo": "assigned_to",
		"createdAt":  "created_at",
	},
	Filters: map[string]crmshared.FilterColumn{
		"status": {
			Column:  "status",
			Options: []string{string(StatusNew), string(StatusContacted), string(StatusQualified), string(StatusLost)},
		},
		"source":     {Column: "source", Parse: crmshared.Text},
		"assignedTo": {Column: "assigned_to", Label: "Assigned To", Parse: crmshared.Text},
	},
	Defaults: listview.Defaults{PageSize: 10, SortColumn: "createdAt", SortDirection: listview.SortDesc},
}

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	crmshared.Querier
	db.TxBeginner
}

// Repository provides Postgres persistence for leads.
type Repository struct {
	db     DB
	lister *crmshared.Lister[Lead]
}

// NewRepository constructs a Repository.
func NewRepository(pool DB) *Repository {
	return &Repository{db: pool, lister: crmshared.NewLister(pool, ListSpec, scanLead)}
}

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	var status string
	err := row.Scan(&l.ID, &l.Name, &l.Company, &l.Email, &status, &l.Source, &l.AssignedTo, &l.CreatedAt, &l.UpdatedAt)
	l.Status = Status(status)
	return l, err
}

// List returns one page of leads.
func (r *Repository) List(ctx context.Context, state listview.FilterState) ([]Lead, int, error) {
	return r.lister.List(ctx, state)
}

// Get returns one lead.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.db.QueryRow(ctx, "SELECT "+leadColumns+" FROM leads WHERE id = $1", id))
	return lead, crmshared.MapError(err)
}

// Create inserts a lead.
func (r *Repository) Create(ctx context.Context, l Lead) (Lead, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO leads (id, name, company, email, status, source, assigned_to)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+leadColumns, l.ID, l.Name, l.Company, l.Email, string(l.Status), l.Source, l.AssignedTo)
	created, err := scanLead(row)
	return created, crmshared.MapError(err)
}

// Assign sets the assignee and records the change in the activity log within
// one transaction. It returns the updated lead and the previous assignee.
func (r *Repository) Assign(ctx context.Context, id uuid.UUID, assignee, actor string) (Lead, string, error) {
	var (
		lead     Lead
		previous string
	)
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, "SELECT assigned_to FROM leads WHERE id = $1 FOR UPDATE", id).Scan(&previous); err != nil {
			return err
		}
		var err error
		lead, err = scanLead(tx.QueryRow(ctx, `UPDATE leads SET assigned_to = $2, updated_at = NOW()
WHERE id = $1
RETURNING `+leadColumns, id, assignee))
		if err != nil {
			return err
		}
		return shared.NewActivityLog(tx).Record(ctx, shared.Activity{
			Entity:   "lead",
			EntityID: id.String(),
			Action:   "assigned",
			Actor:    actor,
			Meta:     map[string]any{"assignee": assignee, "previous": previous},
		})
	})
	if err != nil {
		return Lead{}, "", crmshared.MapError(err)
	}
	return lead, previous, nil
}
