package dto

import "time"

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	TicketID string `json:"ticketId"`
	Text     string `json:"text"`
	Author   string `json:"author"`
}

// UpdateCommentRequest payload.
type UpdateCommentRequest struct {
	Text string `json:"text"`
}

// CommentResponse represents a thread entry.
type CommentResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}
