package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord is one buy or sell event. Rows are append-only: they are
// never updated or deleted once written. The sale economics fields are nil on
// purchase rows; SourcePlatform is empty on sale rows.
type TransactionRecord struct {
	ID                  int              `db:"id"`
	UserID              int              `db:"user_id"`
	HoldingID           int              `db:"holding_id"`
	Symbol              string           `db:"symbol"`
	DisplayName         string           `db:"display_name"`
	IsPurchase          bool             `db:"is_purchase"`
	Quantity            int64            `db:"quantity"`
	PricePerUnit        decimal.Decimal  `db:"price_per_unit"`
	TotalProceeds       *decimal.Decimal `db:"total_proceeds"`
	ProfitOrLossPercent *decimal.Decimal `db:"profit_or_loss_percent"`
	GainAmount          *decimal.Decimal `db:"gain_amount"`
	SourcePlatform      string           `db:"source_platform"`
	TransactionAt       time.Time        `db:"transaction_at"`
	CreatedAt           time.Time        `db:"created_at"`
}
