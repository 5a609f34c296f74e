package products

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-crm/internal/listview"
	"github.com/odyssey-erp/odyssey-crm/internal/platform/httpx"
)

// Store is the persistence the service depends on.
type Store interface {
	List(ctx context.Context, state listview.FilterState) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, p Product) (Product, error)
}

// Service implements product use cases.
type Service struct {
	store    Store
	validate *validator.Validate
}

// NewService constructs a Service.
func NewService(store Store) *Service {
	return &Service{store: store, validate: validator.New()}
}

// List returns one page of products.
func (s *Service) List(ctx context.Context, state listview.FilterState) ([]Product, int, error) {
	return s.store.List(ctx, state)
}

// Get returns one product by id.
func (s *Service) Get(ctx context.Context, rawID string) (Product, error) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return Product{}, fmt.Errorf("%w: invalid product id %q", httpx.ErrValidation, rawID)
	}
	return s.store.Get(ctx, id)
}

// Create validates and stores a product. Codes are stored upper case.
func (s *Service) Create(ctx context.Context, req CreateProductRequest) (Product, error) {
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.Struct(req); err != nil {
		return Product{}, err
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return s.store.Create(ctx, Product{
		Code:     req.Code,
		Name:     req.Name,
		VendorID: req.VendorID,
		Price:    req.Price,
		IsActive: active,
	})
}
