package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

const defaultSLAHours = 24

// StatsCache is the optional dashboard stats cache consumed by the service.
// A nil cache disables caching.
type StatsCache interface {
	Get(ctx context.Context, dest any) bool
	Set(ctx context.Context, value any)
	Invalidate(ctx context.Context)
}

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	dispatcher events.Dispatcher
	statsCache StatsCache
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	Dispatcher  events.Dispatcher
	StatsCache  StatsCache
	Clock       func() time.Time
}

// TicketCreateInput describes ticket creation payload. SLA arrives untyped
// because clients may send it as a number or a string; non-numeric input
// silently falls back to the default allowance.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    string
	Category    string
	Assignee    string
	SLA         any
}

// TicketUpdateInput is a partial update; nil fields are left untouched. SLA
// is untyped for the same reason as on create: clients send it as a number
// or a string.
type TicketUpdateInput struct {
	Title       *string
	Description *string
	Priority    *string
	Category    *string
	Assignee    *string
	SLA         any
	Status      *string
}

// TicketListFilter describes listing filters; empty strings impose no constraint.
type TicketListFilter struct {
	Status   string
	Priority string
	Assignee string
	Search   string
}

// TicketView annotates a ticket with read-time derived fields.
type TicketView struct {
	domain.Ticket
	SLAStatus    string
	CommentCount int64
}

// TicketDetail is a ticket with its comment thread.
type TicketDetail struct {
	domain.Ticket
	SLAStatus string
	Comments  []domain.Comment
}

// DashboardStats is the single-pass aggregation over the full ticket set.
type DashboardStats struct {
	Total    int `json:"total"`
	Open     int `json:"open"`
	Resolved int `json:"resolved"`
	Closed   int `json:"closed"`
	Overdue  int `json:"overdue"`
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		dispatcher: deps.Dispatcher,
		statsCache: deps.StatsCache,
		now:        now,
	}
}

// CreateTicket validates input, assigns defaults and an id, and persists the
// ticket. Ids derive from the creation millisecond; same-millisecond creations
// can collide, which is accepted.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	if input.Title == "" || input.Description == "" || input.Priority == "" {
		return nil, apperrors.NewMissingRequiredField("Title, description, and priority are required")
	}
	priority := domain.TicketPriority(input.Priority)
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewInvalidPriority("Invalid priority. Must be one of: low, medium, high, urgent")
	}

	ticket := &domain.Ticket{
		ID:          newTicketID(s.now()),
		Title:       input.Title,
		Description: input.Description,
		Priority:    priority,
		Category:    input.Category,
		Assignee:    input.Assignee,
		Status:      domain.TicketStatusOpen,
		SLAHours:    coerceSLAHours(input.SLA),
	}
	if ticket.Category == "" {
		ticket.Category = "general"
	}
	if ticket.Assignee == "" {
		ticket.Assignee = "Unassigned"
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			Title:    ticket.Title,
			Priority: ticket.Priority,
		},
	})
	return ticket, nil
}

// ListTickets applies the filter, annotates each row with its SLA status and
// comment count, and returns tickets newest first.
func (s *TicketService) ListTickets(ctx context.Context, filter TicketListFilter) ([]TicketView, error) {
	repoFilter := repository.TicketFilter{}
	if filter.Status != "" {
		status := domain.TicketStatus(filter.Status)
		repoFilter.Status = &status
	}
	if filter.Priority != "" {
		priority := domain.TicketPriority(filter.Priority)
		repoFilter.Priority = &priority
	}
	if filter.Assignee != "" {
		repoFilter.Assignee = &filter.Assignee
	}
	if filter.Search != "" {
		repoFilter.Search = &filter.Search
	}

	rows, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	now := s.now()
	views := make([]TicketView, 0, len(rows))
	for _, row := range rows {
		views = append(views, TicketView{
			Ticket:       row.Ticket,
			SLAStatus:    domain.SLAStatus(row.Status, row.CreatedAt, row.SLAHours, now),
			CommentCount: row.CommentCount,
		})
	}
	return views, nil
}

// GetTicket fetches one ticket with its comment thread, oldest comment first.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*TicketDetail, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Ticket", map[string]any{"id": id})
		}
		return nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	return &TicketDetail{
		Ticket:    *ticket,
		SLAStatus: domain.SLAStatus(ticket.Status, ticket.CreatedAt, ticket.SLAHours, s.now()),
		Comments:  comments,
	}, nil
}

// UpdateTicket applies a partial update. The ticket must exist before the
// patch is examined, so a missing id wins over an empty patch. Only supplied
// fields are written and updated_at is refreshed on every success. Priority
// and status values are not re-validated here, mirroring the permissive
// update contract.
func (s *TicketService) UpdateTicket(ctx context.Context, id string, input TicketUpdateInput) (*domain.Ticket, error) {
	exists, err := s.tickets.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NewNotFound("Ticket", map[string]any{"id": id})
	}

	patch := repository.TicketPatch{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Assignee:    input.Assignee,
	}
	if input.Priority != nil {
		priority := domain.TicketPriority(*input.Priority)
		patch.Priority = &priority
	}
	if input.Status != nil {
		status := domain.TicketStatus(*input.Status)
		patch.Status = &status
	}
	if input.SLA != nil {
		hours := coerceSLAHours(input.SLA)
		patch.SLAHours = &hours
	}
	if patch.Empty() {
		return nil, apperrors.NewNoFieldsProvided()
	}

	ticket, err := s.tickets.UpdateFields(ctx, id, patch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Ticket", map[string]any{"id": id})
		}
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		Payload:  events.TicketUpdatedPayload{Fields: patchFieldNames(input)},
	})
	return ticket, nil
}

// DeleteTicket removes a ticket; its comments go with it via the cascading
// foreign key.
func (s *TicketService) DeleteTicket(ctx context.Context, id string) error {
	if err := s.tickets.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Ticket", map[string]any{"id": id})
		}
		return err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: id,
	})
	return nil
}

// DashboardStats folds the full ticket set into total and per-status counts
// plus the number of unfinished tickets past their SLA allowance. Results are
// served from the stats cache when fresh.
func (s *TicketService) DashboardStats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	if s.statsCache != nil && s.statsCache.Get(ctx, &stats) {
		return stats, nil
	}

	clocks, err := s.tickets.ListClocks(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	now := s.now()
	for _, clock := range clocks {
		stats.Total++
		switch clock.Status {
		case domain.TicketStatusOpen:
			stats.Open++
		case domain.TicketStatusResolved:
			stats.Resolved++
		case domain.TicketStatusClosed:
			stats.Closed++
		}
		if domain.SLABreached(clock.Status, clock.CreatedAt, clock.SLAHours, now) {
			stats.Overdue++
		}
	}

	if s.statsCache != nil {
		s.statsCache.Set(ctx, stats)
	}
	return stats, nil
}

func newTicketID(now time.Time) string {
	return "TKT-" + strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
}

// coerceSLAHours accepts the SLA allowance as a JSON number or string and
// falls back to the default on anything that does not parse to a nonzero
// integer.
func coerceSLAHours(raw any) int {
	switch v := raw.(type) {
	case nil:
		return defaultSLAHours
	case float64:
		if int(v) != 0 {
			return int(v)
		}
	case int:
		if v != 0 {
			return v
		}
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed != 0 {
			return parsed
		}
	}
	return defaultSLAHours
}

func patchFieldNames(input TicketUpdateInput) []string {
	fields := []string{}
	if input.Title != nil {
		fields = append(fields, "title")
	}
	if input.Description != nil {
		fields = append(fields, "description")
	}
	if input.Priority != nil {
		fields = append(fields, "priority")
	}
	if input.Category != nil {
		fields = append(fields, "category")
	}
	if input.Assignee != nil {
		fields = append(fields, "assignee")
	}
	if input.SLA != nil {
		fields = append(fields, "sla")
	}
	if input.Status != nil {
		fields = append(fields, "status")
	}
	return fields
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
