package vendors

import (
	"context"

	"github.com/jackc/pgx/v5"

	crmshared "github.com/odyssey-erp/odyssey-crm/internal/crm/shared"
	"github.com/odyssey-erp/odyssey-crm/internal/listview"
)

const vendorColumns = "id, name, email, phone, is_active, created_at"

// ListSpec answers GET /api/vendors.
var ListSpec = crmshared.ListSpec{
	Table:         "vendors",
	Select:        vendorColumns,
	SearchColumns: []string{"name", "email", "phone"},
	DateColumn:    "created_at",
	SortColumns: map[string]string{
		"id":        "id",
		"name":      "name",
		"email":     "email",
		"isActive":  "is_active",
		"createdAt": "created_at",
	},
	Filters: map[string]crmshared.FilterColumn{
		"isActive": {Column: "is_active", Label: "Active", Options: []string{"true", "false"}, Parse: crmshared.Bool},
	},
	Defaults: listview.Defaults{PageSize: 20, SortColumn: "name", SortDirection: listview.SortAsc},
}

// Repository provides Postgres persistence for vendors.
type Repository struct {
	db     crmshared.Querier
	lister *crmshared.Lister[Vendor]
}

// NewRepository constructs a Repository.
func NewRepository(db crmshared.Querier) *Repository {
	return &Repository{db: db, lister: crmshared.NewLister(db, ListSpec, scanVendor)}
}

func scanVendor(row pgx.Row) (Vendor, error) {
	var v Vendor
	err := row.Scan(&v.ID, &v.Name, &v.Email, &v.Phone, &v.IsActive, &v.CreatedAt)
	return v, err
}

// List returns one page of vendors.
func (r *Repository) List(ctx context.Context, state listview.FilterState) ([]Vendor, int, error) {
	return r.lister.List(ctx, state)
}

// Get returns one vendor.
func (r *Repository) Get(ctx context.Context, id int64) (Vendor, error) {
	v, err := scanVendor(r.db.QueryRow(ctx, "SELECT "+vendorColumns+" FROM vendors WHERE id = $1", id))
	return v, crmshared.MapError(err)
}

// Create inserts a vendor.
func (r *Repository) Create(ctx context.Context, v Vendor) (Vendor, error) {
	created, err := scanVendor(r.db.QueryRow(ctx, `INSERT INTO vendors (name, email, phone, is_active)
VALUES ($1, $2, $3, $4)
RETURNING `+vendorColumns, v.Name, v.Email, v.Phone, v.IsActive))
	return created, crmshared.MapError(err)
}
