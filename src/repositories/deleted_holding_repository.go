package repositories

import (
	"context"

	"stockfolio/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DeletedHoldingRepository interface {
	Create(ctx context.Context, tx pgx.Tx, d *models.DeletedHolding) error
	ListByUser(ctx context.Context, userID int) ([]models.DeletedHolding, error)
}

type deletedHoldingRepo struct {
	db *pgxpool.Pool
}

func NewDeletedHoldingRepository(db *pgxpool.Pool) DeletedHoldingRepository {
	return &deletedHoldingRepo{db: db}
}

// Create writes the archive snapshot. It must run in the same transaction as
// the holding delete so neither is ever visible without the other.
func (r *deletedHoldingRepo) Create(ctx context.Context, tx pgx.Tx, d *models.DeletedHolding) error {
	return tx.QueryRow(ctx, `
		INSERT INTO deleted_holdings (original_holding_id, user_id, symbol, display_name, quantity_at_deletion, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		d.OriginalHoldingID, d.UserID, d.Symbol, d.DisplayName, d.QuantityAtDeletion, d.DeletedAt,
	).Scan(&d.ID)
}

func (r *deletedHoldingRepo) ListByUser(ctx context.Context, userID int) ([]models.DeletedHolding, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, original_holding_id, user_id, symbol, display_name, quantity_at_deletion, deleted_at
		FROM deleted_holdings
		WHERE user_id = $1
		ORDER BY deleted_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var archived []models.DeletedHolding
	for rows.Next() {
		var d models.DeletedHolding
		if err := rows.Scan(&d.ID, &d.OriginalHoldingID, &d.UserID, &d.Symbol, &d.DisplayName,
			&d.QuantityAtDeletion, &d.DeletedAt); err != nil {
			return nil, err
		}
		archived = append(archived, d)
	}
	return archived, rows.Err()
}
