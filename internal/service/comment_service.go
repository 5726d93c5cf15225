package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// CommentService manages the comment thread attached to a ticket.
type CommentService struct {
	comments   repository.CommentRepository
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// CommentDependencies bundles collaborators for the comment service.
type CommentDependencies struct {
	CommentRepo repository.CommentRepository
	TicketRepo  repository.TicketRepository
	Dispatcher  events.Dispatcher
	Clock       func() time.Time
}

// CommentCreateInput describes comment creation payload.
type CommentCreateInput struct {
	TicketID string
	Text     string
	Author   string
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &CommentService{
		comments:   deps.CommentRepo,
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		now:        now,
	}
}

// ListComments returns a ticket's thread oldest first. The ticket must exist.
func (s *CommentService) ListComments(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	exists, err := s.tickets.Exists(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NewNotFound("Ticket", map[string]any{"id": ticketID})
	}
	return s.comments.ListByTicket(ctx, ticketID)
}

// AddComment validates input, verifies the owning ticket exists, and persists
// the comment. The existence check and insert are separate statements; a
// concurrent ticket delete between them is possible and accepted.
func (s *CommentService) AddComment(ctx context.Context, input CommentCreateInput) (*domain.Comment, error) {
	if input.TicketID == "" || input.Text == "" || input.Author == "" {
		return nil, apperrors.NewMissingRequiredField("Ticket ID, text, and author are required")
	}
	exists, err := s.tickets.Exists(ctx, input.TicketID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NewNotFound("Ticket", map[string]any{"id": input.TicketID})
	}

	comment := &domain.Comment{
		ID:       uuid.NewString(),
		TicketID: input.TicketID,
		Text:     input.Text,
		Author:   input.Author,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventCommentAdded,
		TicketID: comment.TicketID,
		Payload: events.CommentAddedPayload{
			CommentID:   comment.ID,
			Author:      comment.Author,
			BodyPreview: stringPreview(comment.Text, 120),
		},
	})
	return comment, nil
}

// UpdateComment replaces the comment text; created_at resets to now since the
// data model keeps a single timestamp per comment.
func (s *CommentService) UpdateComment(ctx context.Context, id, text string) (*domain.Comment, error) {
	if text == "" {
		return nil, apperrors.NewMissingRequiredField("Comment text is required")
	}
	comment, err := s.comments.UpdateText(ctx, id, text)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Comment", map[string]any{"id": id})
		}
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventCommentUpdated,
		TicketID: comment.TicketID,
		Payload:  events.CommentUpdatedPayload{CommentID: comment.ID},
	})
	return comment, nil
}

// DeleteComment removes a single comment by id.
func (s *CommentService) DeleteComment(ctx context.Context, id string) error {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Comment", map[string]any{"id": id})
		}
		return err
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Comment", map[string]any{"id": id})
		}
		return err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventCommentDeleted,
		TicketID: comment.TicketID,
		Payload:  events.CommentDeletedPayload{CommentID: id},
	})
	return nil
}

func (s *CommentService) publishEvent(ctx context.Context, event events.Event) {
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

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
