package promo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kivustream/streampass/internal/model"
)

var promos = []model.PromoCode{
	{ID: 1, EventID: 7, Code: "SAVE10", Type: model.PromoPercentage, ValuePercentage: 10},
	{ID: 2, EventID: 7, Code: "FLAT5", Type: model.PromoAmount, ValueByCurrency: map[string]int64{"USD": 500, "CDF": 1200000}},
	{ID: 3, EventID: 7, Code: "FREE", Type: model.PromoPercentage, ValuePercentage: 100},
	{ID: 4, EventID: 7, Code: "TOOBIG", Type: model.PromoAmount, ValueByCurrency: map[string]int64{"USD": 20000}},
	{ID: 5, EventID: 7, Code: "BADPCT", Type: model.PromoPercentage, ValuePercentage: -10},
	{ID: 6, EventID: 7, Code: "BADAMT", Type: model.PromoAmount, ValueByCurrency: map[string]int64{"USD": -500}},
}

func TestApply_EmptyCodePassesThrough(t *testing.T) {
	res, err := Apply(promos, "", 10000, "USD")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), res.AmountCents)
	assert.Zero(t, res.PromoID)
}

func TestApply_Percentage(t *testing.T) {
	res, err := Apply(promos, "SAVE10", 10000, "USD")
	require.NoError(t, err)
	assert.Equal(t, int64(9000), res.AmountCents)
	assert.Equal(t, uint64(1), res.PromoID)
}

func TestApply_AmountPerCurrency(t *testing.T) {
	res, err := Apply(promos, "FLAT5", 10000, "USD")
	require.NoError(t, err)
	assert.Equal(t, int64(9500), res.AmountCents)

	res, err = Apply(promos, "FLAT5", 5000000, "CDF")
	require.NoError(t, err)
	assert.Equal(t, int64(3800000), res.AmountCents)
}

func TestApply_AmountUnknownCurrencyDiscountsNothing(t *testing.T) {
	res, err := Apply(promos, "FLAT5", 10000, "EUR")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), res.AmountCents)
}

func TestApply_Idempotent(t *testing.T) {
	first, err := Apply(promos, "SAVE10", 10000, "USD")
	require.NoError(t, err)
	second, err := Apply(promos, "SAVE10", 10000, "USD")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestApply_NotFound(t *testing.T) {
	_, err := Apply(promos, "save10", 10000, "USD") // wrong case is a miss
	assert.ErrorIs(t, err, ErrPromoNotFound)

	_, err = Apply(promos, "NOPE", 10000, "USD")
	assert.ErrorIs(t, err, ErrPromoNotFound)

	_, err = Apply(nil, "SAVE10", 10000, "USD")
	assert.ErrorIs(t, err, ErrPromoNotFound)
}

func TestApply_FullDiscountIsZeroNotNegative(t *testing.T) {
	res, err := Apply(promos, "FREE", 10000, "USD")
	require.NoError(t, err)
	assert.Zero(t, res.AmountCents)
}

func TestApply_NegativeResultRejected(t *testing.T) {
	_, err := Apply(promos, "TOOBIG", 10000, "USD")
	assert.ErrorIs(t, err, ErrInvalidPromoResult)
}

func TestApply_NegativeDiscountRejected(t *testing.T) {
	// A negative value would charge the viewer more than the listed
	// price; such promo data is rejected, never applied.
	_, err := Apply(promos, "BADPCT", 10000, "USD")
	assert.ErrorIs(t, err, ErrInvalidPromoResult)

	_, err = Apply(promos, "BADAMT", 10000, "USD")
	assert.ErrorIs(t, err, ErrInvalidPromoResult)
}
