package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kivustream/streampass/internal/model"
)

// PromoRepo provides read access to the promos and promo_values tables.
// Amount-typed promos carry one row per currency in promo_values;
// percentage-typed ones store their percentage inline.
type PromoRepo struct {
	db *sql.DB
}

// NewPromoRepo returns a new PromoRepo bound to the provided database.
func NewPromoRepo(db *sql.DB) *PromoRepo { return &PromoRepo{db: db} }

// ListByEvent returns every promo attached to the event, with the
// per-currency values loaded for amount-typed promos.  The result is
// handed straight to the promo resolver; a miss against this list must
// abort the payment submission before any gateway call.
func (r *PromoRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.PromoCode, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, event_id, code, type, value_percentage
		 FROM promos WHERE event_id = ?`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list promos: %w", err)
	}
	defer rows.Close()

	var promos []model.PromoCode
	var amountIDs []uint64
	byID := map[uint64]int{}
	for rows.Next() {
		var p model.PromoCode
		var pct sql.NullInt64
		if err := rows.Scan(&p.ID, &p.EventID, &p.Code, &p.Type, &pct); err != nil {
			return nil, err
		}
		if pct.Valid {
			p.ValuePercentage = pct.Int64
		}
		if p.Type == model.PromoAmount {
			p.ValueByCurrency = map[string]int64{}
			amountIDs = append(amountIDs, p.ID)
		}
		byID[p.ID] = len(promos)
		promos = append(promos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(amountIDs) == 0 {
		return promos, nil
	}

	// Load per-currency values for the amount-typed promos in one query.
	query := `SELECT promo_id, currency, value_cents FROM promo_values WHERE promo_id IN (`
	args := make([]interface{}, 0, len(amountIDs))
	for i, id := range amountIDs {
		if i > 0 {
			query += ","
		}
		query += "?"
		args = append(args, id)
	}
	query += ")"

	vrows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list promo values: %w", err)
	}
	defer vrows.Close()
	for vrows.Next() {
		var promoID uint64
		var currency string
		var cents int64
		if err := vrows.Scan(&promoID, &currency, &cents); err != nil {
			return nil, err
		}
		if idx, ok := byID[promoID]; ok {
			promos[idx].ValueByCurrency[currency] = cents
		}
	}
	if err := vrows.Err(); err != nil {
		return nil, err
	}
	return promos, nil
}
