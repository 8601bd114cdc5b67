package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WishlistEntry is an instrument the user watches but does not own. A symbol
// never appears as both a Holding and a WishlistEntry for the same user.
type WishlistEntry struct {
	ID              int             `db:"id"`
	UserID          int             `db:"user_id"`
	Symbol          string          `db:"symbol"`
	DisplayName     string          `db:"display_name"`
	AddedAt         time.Time       `db:"added_at"`
	PriceAtAddition decimal.Decimal `db:"price_at_addition"`
}
