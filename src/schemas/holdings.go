package schemas

import (
	"time"

	"stockfolio/src/models"

	"github.com/shopspring/decimal"
)

// PurchaseRequest records a buy of whole shares at a unit price.
type PurchaseRequest struct {
	Symbol       string          `json:"symbol"`
	DisplayName  string          `json:"display_name"`
	Quantity     int64           `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	PurchaseDate time.Time       `json:"purchase_date"`
	Platform     string          `json:"platform"`
}

// SaleRequest sells part or all of an existing holding identified by id.
type SaleRequest struct {
	HoldingID int             `json:"holding_id"`
	Quantity  int64           `json:"quantity"`
	SalePrice decimal.Decimal `json:"sale_price"`
}

type HoldingResponse struct {
	ID              int             `json:"id"`
	UserID          int             `json:"user_id"`
	Symbol          string          `json:"symbol"`
	DisplayName     string          `json:"display_name"`
	Quantity        int64           `json:"quantity"`
	AverageCost     decimal.Decimal `json:"average_cost"`
	FirstAcquiredAt time.Time       `json:"first_acquired_at"`
}

func NewHoldingResponse(h *models.Holding) *HoldingResponse {
	return &HoldingResponse{
		ID:              h.ID,
		UserID:          h.UserID,
		Symbol:          h.Symbol,
		DisplayName:     h.DisplayName,
		Quantity:        h.Quantity,
		AverageCost:     h.AverageCost,
		FirstAcquiredAt: h.FirstAcquiredAt,
	}
}

// RemovedWishlistEntry is the snapshot of a wishlist entry dropped because
// the user bought the instrument, returned for caller display.
type RemovedWishlistEntry struct {
	AddedAt         time.Time       `json:"added_at"`
	PriceAtAddition decimal.Decimal `json:"price_at_addition"`
}

type PurchaseResult struct {
	Holding              *HoldingResponse      `json:"holding"`
	WishlistRemoved      bool                  `json:"wishlist_removed"`
	RemovedWishlistEntry *RemovedWishlistEntry `json:"removed_wishlist_entry,omitempty"`
}

type SaleResult struct {
	Holding             *HoldingResponse `json:"holding"`
	TotalProceeds       decimal.Decimal  `json:"total_proceeds"`
	GainAmount          decimal.Decimal  `json:"gain_amount"`
	ProfitOrLossPercent decimal.Decimal  `json:"profit_or_loss_percent"`
}

type DeletedHoldingResponse struct {
	ID                 int       `json:"id"`
	OriginalHoldingID  int       `json:"original_holding_id"`
	Symbol             string    `json:"symbol"`
	DisplayName        string    `json:"display_name"`
	QuantityAtDeletion int64     `json:"quantity_at_deletion"`
	DeletedAt          time.Time `json:"deleted_at"`
}

func NewDeletedHoldingResponse(d *models.DeletedHolding) *DeletedHoldingResponse {
	return &DeletedHoldingResponse{
		ID:                 d.ID,
		OriginalHoldingID:  d.OriginalHoldingID,
		Symbol:             d.Symbol,
		DisplayName:        d.DisplayName,
		QuantityAtDeletion: d.QuantityAtDeletion,
		DeletedAt:          d.DeletedAt,
	}
}

type RemovalResult struct {
	Archived *DeletedHoldingResponse `json:"archived"`
}
