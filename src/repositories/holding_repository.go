package repositories

import (
	"context"
	"errors"

	"stockfolio/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type HoldingRepository interface {
	GetBySymbolForUpdate(ctx context.Context, tx pgx.Tx, userID int, symbol string) (*models.Holding, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, userID, holdingID int) (*models.Holding, error)
	GetByUserAndSymbol(ctx context.Context, userID int, symbol string) (*models.Holding, error)
	ListByUser(ctx context.Context, userID int) ([]models.Holding, error)
	Create(ctx context.Context, tx pgx.Tx, h *models.Holding) error
	UpdatePosition(ctx context.Context, tx pgx.Tx, holdingID int, quantity int64, averageCost decimal.Decimal) error
	Delete(ctx context.Context, tx pgx.Tx, userID, holdingID int) error
}

type holdingRepo struct {
	db *pgxpool.Pool
}

func NewHoldingRepository(db *pgxpool.Pool) HoldingRepository {
	return &holdingRepo{db: db}
}

const holdingColumns = `id, user_id, symbol, display_name, quantity, average_cost, first_acquired_at, created_at, updated_at`

func scanHolding(row pgx.Row) (*models.Holding, error) {
	var h models.Holding
	err := row.Scan(&h.ID, &h.UserID, &h.Symbol, &h.DisplayName, &h.Quantity,
		&h.AverageCost, &h.FirstAcquiredAt, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &h, nil
}

// GetBySymbolForUpdate locks the (user, symbol) holding row for the rest of
// the transaction so concurrent read-modify-write merges serialize.
func (r *holdingRepo) GetBySymbolForUpdate(ctx context.Context, tx pgx.Tx, userID int, symbol string) (*models.Holding, error) {
	return scanHolding(tx.QueryRow(ctx,
		`SELECT `+holdingColumns+` FROM holdings WHERE user_id = $1 AND symbol = $2 FOR UPDATE`,
		userID, symbol))
}

func (r *holdingRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, userID, holdingID int) (*models.Holding, error) {
	return scanHolding(tx.QueryRow(ctx,
		`SELECT `+holdingColumns+` FROM holdings WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		holdingID, userID))
}

func (r *holdingRepo) GetByUserAndSymbol(ctx context.Context, userID int, symbol string) (*models.Holding, error) {
	return scanHolding(r.db.QueryRow(ctx,
		`SELECT `+holdingColumns+` FROM holdings WHERE user_id = $1 AND symbol = $2`,
		userID, symbol))
}

func (r *holdingRepo) ListByUser(ctx context.Context, userID int) ([]models.Holding, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+holdingColumns+` FROM holdings WHERE user_id = $1 ORDER BY symbol`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holdings []models.Holding
	for rows.Next() {
		var h models.Holding
		if err := rows.Scan(&h.ID, &h.UserID, &h.Symbol, &h.DisplayName, &h.Quantity,
			&h.AverageCost, &h.FirstAcquiredAt, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

// Create inserts a brand new position. A concurrent insert for the same
// (user_id, symbol) surfaces as a unique violation that the caller retries.
func (r *holdingRepo) Create(ctx context.Context, tx pgx.Tx, h *models.Holding) error {
	return tx.QueryRow(ctx, `
		INSERT INTO holdings (user_id, symbol, display_name, quantity, average_cost, first_acquired_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		h.UserID, h.Symbol, h.DisplayName, h.Quantity, h.AverageCost, h.FirstAcquiredAt,
	).Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
}

func (r *holdingRepo) UpdatePosition(ctx context.Context, tx pgx.Tx, holdingID int, quantity int64, averageCost decimal.Decimal) error {
	_, err := tx.Exec(ctx,
		`UPDATE holdings SET quantity = $1, average_cost = $2, updated_at = NOW() WHERE id = $3`,
		quantity, averageCost, holdingID)
	return err
}

func (r *holdingRepo) Delete(ctx context.Context, tx pgx.Tx, userID, holdingID int) error {
	tag, err := tx.Exec(ctx,
		`DELETE FROM holdings WHERE id = $1 AND user_id = $2`,
		holdingID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
