package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

func newCommentFixture(t *testing.T) (*service.CommentService, *fakeTicketRepo, *fakeCommentRepo) {
	t.Helper()
	clock := newStepClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)).Now
	comments := newFakeCommentRepo(clock)
	tickets := newFakeTicketRepo(clock)
	tickets.commentRepo = comments
	svc := service.NewCommentService(service.CommentDependencies{
		CommentRepo: comments,
		TicketRepo:  tickets,
		Clock:       clock,
	})
	return svc, tickets, comments
}

func seedTicket(tickets *fakeTicketRepo, id string) {
	tickets.tickets[id] = &domain.Ticket{
		ID:       id,
		Title:    "seed",
		Status:   domain.TicketStatusOpen,
		SLAHours: 24,
	}
}

func TestAddCommentValidation(t *testing.T) {
	svc, tickets, comments := newCommentFixture(t)
	seedTicket(tickets, "TKT-1")

	tests := []struct {
		name  string
		input service.CommentCreateInput
	}{
		{name: "missing ticket id", input: service.CommentCreateInput{Text: "x", Author: "a"}},
		{name: "missing text", input: service.CommentCreateInput{TicketID: "TKT-1", Author: "a"}},
		{name: "missing author", input: service.CommentCreateInput{TicketID: "TKT-1", Text: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddComment(context.Background(), tt.input)
			var domainErr *apperrors.DomainError
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, "MISSING_REQUIRED_FIELD", domainErr.Code)
		})
	}
	assert.Empty(t, comments.comments)
}

func TestAddCommentTicketMissing(t *testing.T) {
	svc, _, comments := newCommentFixture(t)

	_, err := svc.AddComment(context.Background(), service.CommentCreateInput{
		TicketID: "TKT-GHOST",
		Text:     "hello",
		Author:   "ann",
	})
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
	assert.Empty(t, comments.comments, "nothing persists when the ticket is absent")
}

func TestAddCommentAssignsIDAndTimestamp(t *testing.T) {
	svc, tickets, _ := newCommentFixture(t)
	seedTicket(tickets, "TKT-1")

	comment, err := svc.AddComment(context.Background(), service.CommentCreateInput{
		TicketID: "TKT-1",
		Text:     "hello",
		Author:   "ann",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, comment.ID)
	assert.Equal(t, "TKT-1", comment.TicketID)
	assert.False(t, comment.CreatedAt.IsZero())
}

func TestListCommentsRequiresTicket(t *testing.T) {
	svc, _, _ := newCommentFixture(t)

	_, err := svc.ListComments(context.Background(), "TKT-GHOST")
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestListCommentsOldestFirst(t *testing.T) {
	svc, tickets, _ := newCommentFixture(t)
	seedTicket(tickets, "TKT-1")
	ctx := context.Background()

	_, err := svc.AddComment(ctx, service.CommentCreateInput{TicketID: "TKT-1", Text: "first", Author: "ann"})
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, service.CommentCreateInput{TicketID: "TKT-1", Text: "second", Author: "bob"})
	require.NoError(t, err)

	listed, err := svc.ListComments(ctx, "TKT-1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "first", listed[0].Text)
	assert.Equal(t, "second", listed[1].Text)
}

func TestUpdateCommentResetsTimestamp(t *testing.T) {
	svc, tickets, _ := newCommentFixture(t)
	seedTicket(tickets, "TKT-1")
	ctx := context.Background()

	created, err := svc.AddComment(ctx, service.CommentCreateInput{TicketID: "TKT-1", Text: "draft", Author: "ann"})
	require.NoError(t, err)

	updated, err := svc.UpdateComment(ctx, created.ID, "final")
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Text)
	assert.True(t, updated.CreatedAt.After(created.CreatedAt), "update resets created_at, not a separate edit time")
}

func TestUpdateCommentValidation(t *testing.T) {
	svc, _, _ := newCommentFixture(t)

	_, err := svc.UpdateComment(context.Background(), "some-id", "")
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "MISSING_REQUIRED_FIELD", domainErr.Code)

	_, err = svc.UpdateComment(context.Background(), "missing-id", "text")
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestDeleteComment(t *testing.T) {
	svc, tickets, comments := newCommentFixture(t)
	seedTicket(tickets, "TKT-1")
	ctx := context.Background()

	created, err := svc.AddComment(ctx, service.CommentCreateInput{TicketID: "TKT-1", Text: "bye", Author: "ann"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteComment(ctx, created.ID))
	assert.Empty(t, comments.comments)

	err = svc.DeleteComment(ctx, created.ID)
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}
