package schemas

import (
	"time"

	"stockfolio/src/models"

	"github.com/shopspring/decimal"
)

type CreateWishlistRequest struct {
	Symbol          string          `json:"symbol"`
	DisplayName     string          `json:"display_name"`
	PriceAtAddition decimal.Decimal `json:"price_at_addition"`
}

type WishlistEntryResponse struct {
	ID              int             `json:"id"`
	Symbol          string          `json:"symbol"`
	DisplayName     string          `json:"display_name"`
	AddedAt         time.Time       `json:"added_at"`
	PriceAtAddition decimal.Decimal `json:"price_at_addition"`
}

func NewWishlistEntryResponse(e *models.WishlistEntry) *WishlistEntryResponse {
	return &WishlistEntryResponse{
		ID:              e.ID,
		Symbol:          e.Symbol,
		DisplayName:     e.DisplayName,
		AddedAt:         e.AddedAt,
		PriceAtAddition: e.PriceAtAddition,
	}
}
