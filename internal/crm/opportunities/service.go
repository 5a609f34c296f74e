package opportunities

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
	List(ctx context.Context, state listview.FilterState) ([]Opportunity, int, error)
	Get(ctx context.Context, id uuid.UUID) (Opportunity, error)
	Create(ctx context.Context, o Opportunity) (Opportunity, error)
	Assign(ctx context.Context, id uuid.UUID, assignee, actor string) (Opportunity, string, error)
}

// Notifier tells assignees about new work.
type Notifier interface {
	NotifyAssignment(ctx context.Context, payload jobs.AssignmentPayload) error
}

// Service implements opportunity use cases.
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
	return &Service{store: store, notifier: notifier, validate: validator.New(), logger: logger, now: time.Now}
}

// List returns one page of opportunities.
func (s *Service) List(ctx context.Context, state listview.FilterState) ([]Opportunity, int, error) {
	return s.store.List(ctx, state)
}

// Get returns one opportunity by id.
func (s *Service) Get(ctx context.Context, rawID string) (Opportunity, error) {
	id, err := parseID(rawID)
	if err != nil {
		return Opportunity{}, err
	}
	return s.store.Get(ctx, id)
}

// Create validates and stores a new opportunity in the prospecting stage
// unless another stage is given.
func (s *Service) Create(ctx context.Context, req CreateOpportunityRequest) (Opportunity, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validate.Struct(req); err != nil {
		return Opportunity{}, err
	}
	o := Opportunity{
		ID:         uuid.New(),
		Title:      req.Title,
		Stage:      req.Stage,
		Amount:     req.Amount,
		VendorID:   req.VendorID,
		AssignedTo: strings.TrimSpace(req.AssignedTo),
	}
	if o.Stage == "" {
		o.Stage = StageProspecting
	}
	if req.LeadID != "" {
		leadID := uuid.MustParse(req.LeadID)
		o.LeadID = &leadID
	}
	return s.store.Create(ctx, o)
}

// Assign hands the opportunity to a new owner and queues the notification.
func (s *Service) Assign(ctx context.Context, rawID string, req AssignRequest, actor string) (Opportunity, error) {
	id, err := parseID(rawID)
	if err != nil {
		return Opportunity{}, err
	}
	req.Assignee = strings.TrimSpace(req.Assignee)
	if err := s.validate.Struct(req); err != nil {
		return Opportunity{}, err
	}
	opp, previous, err := s.store.Assign(ctx, id, req.Assignee, actor)
	if err != nil {
		return Opportunity{}, err
	}
	if s.notifier == nil || previous == opp.AssignedTo {
		return opp, nil
	}
	err = s.notifier.NotifyAssignment(ctx, jobs.AssignmentPayload{
		Entity:     "opportunity",
		EntityID:   opp.ID.String(),
		Title:      opp.Title,
		Assignee:   opp.AssignedTo,
		Previous:   previous,
		AssignedAt: s.now().UTC(),
	})
	if err != nil {
		s.logger.Warn("enqueue assignment notification", slog.String("opportunity_id", opp.ID.String()), slog.Any("error", err))
	}
	return opp, nil
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid opportunity id %q", httpx.ErrValidation, raw)
	}
	return id, nil
}
