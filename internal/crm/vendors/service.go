package vendors

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
	List(ctx context.Context, state listview.FilterState) ([]Vendor, int, error)
	Get(ctx context.Context, id int64) (Vendor, error)
	Create(ctx context.Context, v Vendor) (Vendor, error)
}

// Service implements vendor use cases.
type Service struct {
	store    Store
	validate *validator.Validate
}

// NewService constructs a Service.
func NewService(store Store) *Service {
	return &Service{store: store, validate: validator.New()}
}

// List returns one page of vendors.
func (s *Service) List(ctx context.Context, state listview.FilterState) ([]Vendor, int, error) {
	return s.store.List(ctx, state)
}

// Get returns one vendor by id.
func (s *Service) Get(ctx context.Context, rawID string) (Vendor, error) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return Vendor{}, fmt.Errorf("%w: invalid vendor id %q", httpx.ErrValidation, rawID)
	}
	return s.store.Get(ctx, id)
}

// Create validates and stores a vendor. Vendors start active.
func (s *Service) Create(ctx context.Context, req CreateVendorRequest) (Vendor, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.Struct(req); err != nil {
		return Vendor{}, err
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return s.store.Create(ctx, Vendor{
		Name:     req.Name,
		Email:    strings.TrimSpace(req.Email),
		Phone:    strings.TrimSpace(req.Phone),
		IsActive: active,
	})
}
