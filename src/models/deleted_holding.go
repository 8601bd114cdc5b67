package models

import "time"

// DeletedHolding is the write-once shadow of a removed Holding, written in the
// same transaction immediately before the holding row is deleted.
type DeletedHolding struct {
	ID                 int       `db:"id"`
	OriginalHoldingID  int       `db:"original_holding_id"`
	UserID             int       `db:"user_id"`
	Symbol             string    `db:"symbol"`
	DisplayName        string    `db:"display_name"`
	QuantityAtDeletion int64     `db:"quantity_at_deletion"`
	DeletedAt          time.Time `db:"deleted_at"`
}
