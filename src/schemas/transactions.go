package schemas

import (
	"time"

	"stockfolio/src/models"

	"github.com/shopspring/decimal"
)

type TransactionRecordResponse struct {
	ID                  int              `json:"id"`
	HoldingID           int              `json:"holding_id"`
	Symbol              string           `json:"symbol"`
	DisplayName         string           `json:"display_name"`
	IsPurchase          bool             `json:"is_purchase"`
	Quantity            int64            `json:"quantity"`
	PricePerUnit        decimal.Decimal  `json:"price_per_unit"`
	TotalProceeds       *decimal.Decimal `json:"total_proceeds,omitempty"`
	ProfitOrLossPercent *decimal.Decimal `json:"profit_or_loss_percent,omitempty"`
	GainAmount          *decimal.Decimal `json:"gain_amount,omitempty"`
	SourcePlatform      string           `json:"source_platform,omitempty"`
	TransactionAt       time.Time        `json:"transaction_at"`
}

func NewTransactionRecordResponse(t *models.TransactionRecord) *TransactionRecordResponse {
	return &TransactionRecordResponse{
		ID:                  t.ID,
		HoldingID:           t.HoldingID,
		Symbol:              t.Symbol,
		DisplayName:         t.DisplayName,
		IsPurchase:          t.IsPurchase,
		Quantity:            t.Quantity,
		PricePerUnit:        t.PricePerUnit,
		TotalProceeds:       t.TotalProceeds,
		ProfitOrLossPercent: t.ProfitOrLossPercent,
		GainAmount:          t.GainAmount,
		SourcePlatform:      t.SourcePlatform,
		TransactionAt:       t.TransactionAt,
	}
}
