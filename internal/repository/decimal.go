package repository

import (
	"eventtickets/internal/domain"
	"github.com/shopspring/decimal"
)

// Money columns travel as text between postgres and the decimal type so no
// float conversion ever touches an amount.
func decimalFromStore(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, &domain.PermanentStoreError{Op: "decode numeric", Err: err}
	}
	return d, nil
}
