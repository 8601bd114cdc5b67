package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is a user's current position in one instrument. There is exactly
// one row per (user_id, symbol); symbols are stored upper-cased.
type Holding struct {
	ID              int             `db:"id"`
	UserID          int             `db:"user_id"`
	Symbol          string          `db:"symbol"`
	DisplayName     string          `db:"display_name"`
	Quantity        int64           `db:"quantity"`
	AverageCost     decimal.Decimal `db:"average_cost"`
	FirstAcquiredAt time.Time       `db:"first_acquired_at"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}
