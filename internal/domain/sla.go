package domain

import (
	"fmt"
	"time"
)

// SLA status labels surfaced to clients.
const (
	SLACompleted = "Completed"
	SLAOverdue   = "Overdue"
	SLADueSoon   = "Due Soon"
)

// dueSoonWindowHours is how close to breach a ticket may get before it is
// flagged as due soon.
const dueSoonWindowHours = 2

// SLAStatus classifies a ticket's time-to-breach at the given instant.
// Resolved and closed tickets are always "Completed" regardless of elapsed
// time. Otherwise the label depends on fractional elapsed hours against the
// ticket's SLA allowance, with remaining time rendered to zero decimal places.
func SLAStatus(status TicketStatus, createdAt time.Time, slaHours int, now time.Time) string {
	if status == TicketStatusResolved || status == TicketStatusClosed {
		return SLACompleted
	}
	elapsed := now.Sub(createdAt).Hours()
	sla := float64(slaHours)
	switch {
	case elapsed > sla:
		return SLAOverdue
	case elapsed > sla-dueSoonWindowHours:
		return SLADueSoon
	default:
		return fmt.Sprintf("%.0fh remaining", sla-elapsed)
	}
}

// SLABreached reports whether an unfinished ticket has exceeded its SLA
// allowance. Used by the dashboard overdue count.
func SLABreached(status TicketStatus, createdAt time.Time, slaHours int, now time.Time) bool {
	if status != TicketStatusOpen && status != TicketStatusInProgress {
		return false
	}
	return now.Sub(createdAt).Hours() > float64(slaHours)
}
