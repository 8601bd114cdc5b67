package repositories

import (
	"context"

	"stockfolio/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, t *models.TransactionRecord) error
	ListByUser(ctx context.Context, userID int) ([]models.TransactionRecord, error)
}

type transactionRepo struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) TransactionRepository {
	return &transactionRepo{db: db}
}

// Create appends one record to the transaction ledger. Records are insert
// only; there is no update or delete path on this table.
func (r *transactionRepo) Create(ctx context.Context, tx pgx.Tx, t *models.TransactionRecord) error {
	query := `
		INSERT INTO transaction_records
			(user_id, holding_id, symbol, display_name, is_purchase, quantity, price_per_unit,
			 total_proceeds, profit_or_loss_percent, gain_amount, source_platform, transaction_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`

	var err error
	if tx == nil {
		// If no transaction is provided, create a new one
		tx, err = r.db.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err != nil {
				_ = tx.Rollback(ctx)
			}
		}()

		err = tx.QueryRow(ctx, query,
			t.UserID, t.HoldingID, t.Symbol, t.DisplayName, t.IsPurchase, t.Quantity, t.PricePerUnit,
			t.TotalProceeds, t.ProfitOrLossPercent, t.GainAmount, t.SourcePlatform, t.TransactionAt,
		).Scan(&t.ID, &t.CreatedAt)

		if err != nil {
			return err
		}

		return tx.Commit(ctx)
	}

	// Use the provided transaction
	return tx.QueryRow(ctx, query,
		t.UserID, t.HoldingID, t.Symbol, t.DisplayName, t.IsPurchase, t.Quantity, t.PricePerUnit,
		t.TotalProceeds, t.ProfitOrLossPercent, t.GainAmount, t.SourcePlatform, t.TransactionAt,
	).Scan(&t.ID, &t.CreatedAt)
}

// ListByUser returns the user's ledger most recent first.
func (r *transactionRepo) ListByUser(ctx context.Context, userID int) ([]models.TransactionRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, holding_id, symbol, display_name, is_purchase, quantity, price_per_unit,
		       total_proceeds, profit_or_loss_percent, gain_amount, source_platform, transaction_at, created_at
		FROM transaction_records
		WHERE user_id = $1
		ORDER BY transaction_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.TransactionRecord
	for rows.Next() {
		var t models.TransactionRecord
		if err := rows.Scan(&t.ID, &t.UserID, &t.HoldingID, &t.Symbol, &t.DisplayName, &t.IsPurchase,
			&t.Quantity, &t.PricePerUnit, &t.TotalProceeds, &t.ProfitOrLossPercent, &t.GainAmount,
			&t.SourcePlatform, &t.TransactionAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, t)
	}
	return records, rows.Err()
}
