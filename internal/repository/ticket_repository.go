package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/kivustream/streampass/internal/model"
)

// TicketRepo provides data access to the tickets table.  A ticket row is
// the durable record of an approved payment and the sole source of
// entitlement truth; the in-memory payment attempt is discarded once the
// row exists.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the provided database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// ticketsPerPage is the page size for ticket listings.
const ticketsPerPage = 20

// Grant inserts the entitlement ticket for an approved payment.  The
// (user_id, event_id) unique key makes grants idempotent at the database
// level: a duplicate (card approval racing a mobile-money confirmation)
// surfaces as ErrConflict and the caller may treat the viewer as already
// entitled.
func (r *TicketRepo) Grant(ctx context.Context, t model.Ticket) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tickets (user_id, event_id, amount_cents, currency, method, promo_id, reference)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.EventID, t.AmountCents, t.Currency, t.Method, t.PromoID, t.Reference,
	)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 { // duplicate key
			return 0, ErrConflict
		}
		return 0, fmt.Errorf("grant ticket: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("grant ticket: %w", err)
	}
	return uint64(id), nil
}

// Exists reports whether the viewer holds a ticket for the event.
func (r *TicketRepo) Exists(ctx context.Context, viewerID, eventID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM tickets WHERE user_id = ? AND event_id = ?`,
		viewerID, eventID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check ticket: %w", err)
	}
	return true, nil
}

// ListByUser returns one page of the viewer's tickets, newest first.
// Page numbers are 1-based.
func (r *TicketRepo) ListByUser(ctx context.Context, viewerID uint64, page int) (model.TicketPage, error) {
	if page < 1 {
		page = 1
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE user_id = ?`, viewerID,
	).Scan(&total); err != nil {
		return model.TicketPage{}, fmt.Errorf("count tickets: %w", err)
	}
	lastPage := (total + ticketsPerPage - 1) / ticketsPerPage
	if lastPage < 1 {
		lastPage = 1
	}

	offset := (page - 1) * ticketsPerPage
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, event_id, amount_cents, currency, method, promo_id, reference, created_at
		 FROM tickets WHERE user_id = ?
		 ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		viewerID, ticketsPerPage, offset,
	)
	if err != nil {
		return model.TicketPage{}, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	items := []model.Ticket{}
	for rows.Next() {
		var t model.Ticket
		var promoID sql.NullInt64
		if err := rows.Scan(&t.ID, &t.UserID, &t.EventID, &t.AmountCents, &t.Currency,
			&t.Method, &promoID, &t.Reference, &t.CreatedAt); err != nil {
			return model.TicketPage{}, err
		}
		if promoID.Valid {
			id := uint64(promoID.Int64)
			t.PromoID = &id
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return model.TicketPage{}, err
	}

	return model.TicketPage{
		Items:       items,
		CurrentPage: page,
		LastPage:    lastPage,
		HasMore:     page < lastPage,
	}, nil
}
