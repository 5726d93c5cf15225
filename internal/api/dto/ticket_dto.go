package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CreateTicketRequest payload. SLA stays untyped so numeric and string values
// are both accepted; anything unparsable falls back to the default allowance.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	Assignee    string `json:"assignee"`
	SLA         any    `json:"sla"`
}

// UpdateTicketRequest is a partial update; absent fields stay untouched. SLA
// is untyped so numbers and strings are both accepted, as on create.
type UpdateTicketRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Category    *string `json:"category"`
	Assignee    *string `json:"assignee"`
	SLA         any     `json:"sla"`
	Status      *string `json:"status"`
}

// TicketResponse is returned from create and update.
type TicketResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    string                `json:"category"`
	Assignee    string                `json:"assignee"`
	Status      domain.TicketStatus   `json:"status"`
	SLA         int                   `json:"sla"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// TicketSummary is a listing row annotated with read-time derived fields.
type TicketSummary struct {
	TicketResponse
	SLAStatus    string `json:"sla_status"`
	CommentCount int64  `json:"comment_count"`
}

// TicketDetailResponse is a ticket with its comment thread.
type TicketDetailResponse struct {
	TicketResponse
	SLAStatus string            `json:"sla_status"`
	Comments  []CommentResponse `json:"comments"`
}

// DashboardStatsResponse mirrors the aggregation result.
type DashboardStatsResponse struct {
	Total    int `json:"total"`
	Open     int `json:"open"`
	Resolved int `json:"resolved"`
	Closed   int `json:"closed"`
	Overdue  int `json:"overdue"`
}

// MessageResponse is the body for successful deletes.
type MessageResponse struct {
	Message string `json:"message"`
}
