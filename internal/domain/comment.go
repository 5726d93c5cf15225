package domain

import "time"

// Comment is a timestamped note attached to exactly one ticket.
// Updating a comment replaces its text and resets CreatedAt; there is no
// separate edit timestamp.
type Comment struct {
	ID        string
	TicketID  string
	Text      string
	Author    string
	CreatedAt time.Time
}
