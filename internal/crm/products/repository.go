package products

import (
	"context"

	"github.com/jackc/pgx/v5"

	crmshared "github.com/odyssey-erp/odyssey-crm/internal/crm/shared"
	"github.com/odyssey-erp/odyssey-crm/internal/listview"
)

const productColumns = "id, code, name, vendor_id, price, is_active, created_at"

// ListSpec answers GET /api/products.
var ListSpec = crmshared.ListSpec{
	Table:         "products",
	Select:        productColumns,
	SearchColumns: []string{"code", "name"},
	DateColumn:    "created_at",
	SortColumns: map[string]string{
		"code":      "code",
		"name":      "name",
		"price":     "price",
		"createdAt": "created_at",
	},
	Filters: map[string]crmshared.FilterColumn{
		"vendorId": {Column: "vendor_id", Label: "Vendor", Parse: crmshared.Int64},
		"isActive": {Column: "is_active", Label: "Active", Options: []string{"true", "false"}, Parse: crmshared.Bool},
	},
	Defaults: listview.Defaults{PageSize: 20, SortColumn: "code", SortDirection: listview.SortAsc},
}

// Repository provides Postgres persistence for products.
type Repository struct {
	db     crmshared.Querier
	lister *crmshared.Lister[Product]
}

// NewRepository constructs a Repository.
func NewRepository(db crmshared.Querier) *Repository {
	return &Repository{db: db, lister: crmshared.NewLister(db, ListSpec, scanProduct)}
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.VendorID, &p.Price, &p.IsActive, &p.CreatedAt)
	return p, err
}

// List returns one page of products.
func (r *Repository) List(ctx context.Context, state listview.FilterState) ([]Product, int, error) {
	return r.lister.List(ctx, state)
}

// Get returns one product.
func (r *Repository) Get(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id))
	return p, crmshared.MapError(err)
}

// Create inserts a product. An unknown vendor surfaces as a validation error.
func (r *Repository) Create(ctx context.Context, p Product) (Product, error) {
	created, err := scanProduct(r.db.QueryRow(ctx, `INSERT INTO products (code, name, vendor_id, price, is_active)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+productColumns, p.Code, p.Name, p.VendorID, p.Price, p.IsActive))
	return created, crmshared.MapError(err)
}
