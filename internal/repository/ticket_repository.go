package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// TicketFilter captures listing parameters. Nil fields impose no constraint;
// supplied fields are ANDed together.
type TicketFilter struct {
	Status   *domain.TicketStatus
	Priority *domain.TicketPriority
	Assignee *string
	Search   *string
}

// TicketPatch marks which ticket fields a partial update supplies. Nil means
// absent; only present fields are written. updated_at is refreshed on every
// successful update regardless of which fields changed.
type TicketPatch struct {
	Title       *string
	Description *string
	Priority    *domain.TicketPriority
	Category    *string
	Assignee    *string
	SLAHours    *int
	Status      *domain.TicketStatus
}

// Empty reports whether the patch carries no fields.
func (p TicketPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.Category == nil && p.Assignee == nil && p.SLAHours == nil && p.Status == nil
}

// TicketWithCount pairs a ticket with its comment count for listings.
type TicketWithCount struct {
	domain.Ticket
	CommentCount int64
}

// TicketClock carries the fields needed to evaluate a ticket's SLA clock.
type TicketClock struct {
	Status    domain.TicketStatus
	CreatedAt time.Time
	SLAHours  int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	Exists(ctx context.Context, id string) (bool, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]TicketWithCount, error)
	UpdateFields(ctx context.Context, id string, patch TicketPatch) (*domain.Ticket, error)
	Delete(ctx context.Context, id string) error
	ListClocks(ctx context.Context) ([]TicketClock, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, title, description, priority, category, assignee, status, sla, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, title, description, priority, category, assignee, status, sla)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		ticket.Priority,
		ticket.Category,
		ticket.Assignee,
		ticket.Status,
		ticket.SLAHours,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Priority,
		&ticket.Category,
		&ticket.Assignee,
		&ticket.Status,
		&ticket.SLAHours,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) Exists(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM tickets WHERE id=$1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]TicketWithCount, error) {
	base := `SELECT t.id, t.title, t.description, t.priority, t.category, t.assignee, t.status, t.sla,
                    t.created_at, t.updated_at, COUNT(c.id) AS comment_count
             FROM tickets t
             LEFT JOIN comments c ON t.id = c.ticket_id`
	clauses := []string{}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("t.status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("t.priority=$%d", len(args)))
	}
	if filter.Assignee != nil {
		args = append(args, *filter.Assignee)
		clauses = append(clauses, fmt.Sprintf("t.assignee=$%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		args = append(args, "%"+strings.TrimSpace(*filter.Search)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(t.title ILIKE %s OR t.description ILIKE %s OR t.id ILIKE %s)",
			placeholder, placeholder, placeholder))
	}

	query := base
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " GROUP BY t.id ORDER BY t.created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TicketWithCount
	for rows.Next() {
		var row TicketWithCount
		if err := rows.Scan(
			&row.ID,
			&row.Title,
			&row.Description,
			&row.Priority,
			&row.Category,
			&row.Assignee,
			&row.Status,
			&row.SLAHours,
			&row.CreatedAt,
			&row.UpdatedAt,
			&row.CommentCount,
		); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *ticketRepository) UpdateFields(ctx context.Context, id string, patch TicketPatch) (*domain.Ticket, error) {
	sets := []string{}
	args := []any{}

	appendSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if patch.Title != nil {
		appendSet("title", *patch.Title)
	}
	if patch.Description != nil {
		appendSet("description", *patch.Description)
	}
	if patch.Priority != nil {
		appendSet("priority", *patch.Priority)
	}
	if patch.Category != nil {
		appendSet("category", *patch.Category)
	}
	if patch.Assignee != nil {
		appendSet("assignee", *patch.Assignee)
	}
	if patch.SLAHours != nil {
		appendSet("sla", *patch.SLAHours)
	}
	if patch.Status != nil {
		appendSet("status", *patch.Status)
	}
	sets = append(sets, "updated_at=NOW()")

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$%d RETURNING `+ticketColumns,
		strings.Join(sets, ", "), len(args))

	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Priority,
		&ticket.Category,
		&ticket.Assignee,
		&ticket.Status,
		&ticket.SLAHours,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) ListClocks(ctx context.Context) ([]TicketClock, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, created_at, sla FROM tickets`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TicketClock
	for rows.Next() {
		var clock TicketClock
		if err := rows.Scan(&clock.Status, &clock.CreatedAt, &clock.SLAHours); err != nil {
			return nil, err
		}
		result = append(result, clock)
	}
	return result, rows.Err()
}
