package service_test

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

// fakeTicketRepo is an in-memory repository.TicketRepository. When wired to a
// fakeCommentRepo it mirrors the schema's ON DELETE CASCADE.
type fakeTicketRepo struct {
	tickets     map[string]*domain.Ticket
	commentRepo *fakeCommentRepo
	now         func() time.Time
	updateCalls int
}

func newFakeTicketRepo(now func() time.Time) *fakeTicketRepo {
	if now == nil {
		now = time.Now
	}
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}, now: now}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	stored := *ticket
	stored.CreatedAt = r.now()
	stored.UpdatedAt = stored.CreatedAt
	r.tickets[stored.ID] = &stored
	*ticket = stored
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := r.tickets[id]
	return ok, nil
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]repository.TicketWithCount, error) {
	var result []repository.TicketWithCount
	for _, ticket := range r.tickets {
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && ticket.Priority != *filter.Priority {
			continue
		}
		if filter.Assignee != nil && ticket.Assignee != *filter.Assignee {
			continue
		}
		if filter.Search != nil {
			needle := strings.ToLower(*filter.Search)
			if !strings.Contains(strings.ToLower(ticket.Title), needle) &&
				!strings.Contains(strings.ToLower(ticket.Description), needle) &&
				!strings.Contains(strings.ToLower(ticket.ID), needle) {
				continue
			}
		}
		row := repository.TicketWithCount{Ticket: *ticket}
		if r.commentRepo != nil {
			row.CommentCount = r.commentRepo.countByTicket(ticket.ID)
		}
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakeTicketRepo) UpdateFields(_ context.Context, id string, patch repository.TicketPatch) (*domain.Ticket, error) {
	r.updateCalls++
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if patch.Title != nil {
		ticket.Title = *patch.Title
	}
	if patch.Description != nil {
		ticket.Description = *patch.Description
	}
	if patch.Priority != nil {
		ticket.Priority = *patch.Priority
	}
	if patch.Category != nil {
		ticket.Category = *patch.Category
	}
	if patch.Assignee != nil {
		ticket.Assignee = *patch.Assignee
	}
	if patch.SLAHours != nil {
		ticket.SLAHours = *patch.SLAHours
	}
	if patch.Status != nil {
		ticket.Status = *patch.Status
	}
	ticket.UpdatedAt = r.now().Add(time.Millisecond)
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	if r.commentRepo != nil {
		r.commentRepo.deleteByTicket(id)
	}
	return nil
}

func (r *fakeTicketRepo) ListClocks(_ context.Context) ([]repository.TicketClock, error) {
	var result []repository.TicketClock
	for _, ticket := range r.tickets {
		result = append(result, repository.TicketClock{
			Status:    ticket.Status,
			CreatedAt: ticket.CreatedAt,
			SLAHours:  ticket.SLAHours,
		})
	}
	return result, nil
}

// fakeCommentRepo is an in-memory repository.CommentRepository that preserves
// insertion order for stable tie-breaking.
type fakeCommentRepo struct {
	comments []*domain.Comment
	now      func() time.Time
}

func newFakeCommentRepo(now func() time.Time) *fakeCommentRepo {
	if now == nil {
		now = time.Now
	}
	return &fakeCommentRepo{now: now}
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	stored := *comment
	stored.CreatedAt = r.now()
	r.comments = append(r.comments, &stored)
	*comment = stored
	return nil
}

func (r *fakeCommentRepo) GetByID(_ context.Context, id string) (*domain.Comment, error) {
	for _, comment := range r.comments {
		if comment.ID == id {
			copied := *comment
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeCommentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	var result []domain.Comment
	for _, comment := range r.comments {
		if comment.TicketID == ticketID {
			result = append(result, *comment)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakeCommentRepo) UpdateText(_ context.Context, id, text string) (*domain.Comment, error) {
	for _, comment := range r.comments {
		if comment.ID == id {
			comment.Text = text
			comment.CreatedAt = r.now().Add(time.Millisecond)
			copied := *comment
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeCommentRepo) Delete(_ context.Context, id string) error {
	for i, comment := range r.comments {
		if comment.ID == id {
			r.comments = append(r.comments[:i], r.comments[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeCommentRepo) countByTicket(ticketID string) int64 {
	var count int64
	for _, comment := range r.comments {
		if comment.TicketID == ticketID {
			count++
		}
	}
	return count
}

func (r *fakeCommentRepo) deleteByTicket(ticketID string) {
	kept := r.comments[:0]
	for _, comment := range r.comments {
		if comment.TicketID != ticketID {
			kept = append(kept, comment)
		}
	}
	r.comments = kept
}
