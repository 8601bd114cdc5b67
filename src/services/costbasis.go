package services

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// MergePurchase folds a purchase into an existing position using weighted
// average cost accounting. Lot identity is intentionally discarded: all
// purchases of a symbol blend into one running average.
func MergePurchase(oldQty int64, oldAvg decimal.Decimal, qty int64, price decimal.Decimal) (int64, decimal.Decimal) {
	if oldQty == 0 {
		return qty, price
	}
	newQty := oldQty + qty
	oldCost := decimal.NewFromInt(oldQty).Mul(oldAvg)
	addedCost := decimal.NewFromInt(qty).Mul(price)
	newAvg := oldCost.Add(addedCost).Div(decimal.NewFromInt(newQty))
	return newQty, newAvg
}

// SaleEconomics computes the realized figures for a sale against the average
// cost captured before the position was mutated.
//
// A zero cost basis would make the percent division degenerate. That state is
// reachable after a position is sold down to zero and the row kept, so it is
// clamped rather than rejected: the percent is 100 when the sale price is
// positive (the entire proceeds are gain) and 0 when the sale price is zero.
func SaleEconomics(qty int64, salePrice, averageCostAtSale decimal.Decimal) (totalProceeds, gainAmount, profitOrLossPercent decimal.Decimal) {
	quantity := decimal.NewFromInt(qty)
	totalProceeds = salePrice.Mul(quantity)
	diff := salePrice.Sub(averageCostAtSale)
	gainAmount = diff.Mul(quantity)

	if averageCostAtSale.IsZero() {
		if salePrice.IsPositive() {
			profitOrLossPercent = hundred
		} else {
			profitOrLossPercent = decimal.Zero
		}
		return totalProceeds, gainAmount, profitOrLossPercent
	}
	profitOrLossPercent = diff.Div(averageCostAtSale).Mul(hundred)
	return totalProceeds, gainAmount, profitOrLossPercent
}
