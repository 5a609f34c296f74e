package leads

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-crm/internal/listview"
	"github.com/odyssey-erp/odyssey-crm/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-crm/jobs"
)

// Store is the persistence the service depends on.
type Store interface {
	List(ctx context.Context, state listview.FilterState) ([]Lead, int, error)
	Get(ctx context.Context, id uuid.UUID) (Lead, error)
	Create(ctx context.Context, l Lead) (Lead, error)
	Assign(ctx context.Context, id uuid.UUID, assignee, actor string) (Lead, string, error)
}

// Notifier tells assignees about new work.
type Notifier interface {
	NotifyAssignment(ctx context.Context, payload jobs.AssignmentPayload) error
}

// Service implements lead use cases.
type Service struct {
	store    Store
	notifier Notifier
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a Service. notifier may be nil.
func NewService(store Store, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		notifier: notifier,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// List returns one page of leads.
func (s *Service) List(ctx context.Context, state listview.FilterState) ([]Lead, int, error) {
	return s.store.List(ctx, state)
}

// Get returns one lead by id.
func (s *Service) Get(ctx context.Context, rawID string) (Lead, error) {
	id, err := parseID(rawID)
	if err != nil {
		return Lead{}, err
	}
	return s.store.Get(ctx, id)
}

// Create validates and stores a new lead.
func (s *Service) Create(ctx context.Context, req CreateLeadRequest) (Lead, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.Struct(req); err != nil {
		return Lead{}, err
	}
	if req.Status == "" {
		req.Status = StatusNew
	}
	return s.store.Create(ctx, Lead{
		ID:         uuid.New(),
		Name:       req.Name,
		Company:    strings.TrimSpace(req.Company),
		Email:      strings.TrimSpace(req.Email),
		Status:     req.Status,
		Source:     strings.TrimSpace(req.Source),
		AssignedTo: strings.TrimSpace(req.AssignedTo),
	})
}

// Assign hands the lead to a new owner and queues the notification. A failed
// enqueue is logged; the assignment itself stands.
func (s *Service) Assign(ctx context.Context, rawID string, req AssignRequest, actor string) (Lead, error) {
	id, err := parseID(rawID)
	if err != nil {
		return Lead{}, err
	}
	req.Assignee = strings.TrimSpace(req.Assignee)
	if err := s.validate.Struct(req); err != nil {
		return Lead{}, err
	}
	lead, previous, err := s.store.Assign(ctx, id, req.Assignee, actor)
	if err != nil {
		return Lead{}, err
	}
	if s.notifier == nil || previous == lead.AssignedTo {
		return lead, nil
	}
	err = s.notifier.NotifyAssignment(ctx, jobs.AssignmentPayload{
		Entity:     "lead",
		EntityID:   lead.ID.String(),
		Title:      lead.Name,
		Assignee:   lead.AssignedTo,
		Previous:   previous,
		AssignedAt: s.now().UTC(),
	})
	if err != nil {
		s.logger.Warn("enqueue assignment notification", slog.String("lead_id", lead.ID.String()), slog.Any("error", err))
	}
	return lead, nil
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid lead id %q", httpx.ErrValidation, raw)
	}
	return id, nil
}
