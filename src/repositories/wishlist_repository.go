package repositories

import (
	"context"
	"errors"

	"stockfolio/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WishlistRepository interface {
	FindMatch(ctx context.Context, tx pgx.Tx, userID int, symbol string) (*models.WishlistEntry, error)
	GetByID(ctx context.Context, userID, entryID int) (*models.WishlistEntry, error)
	ListByUser(ctx context.Context, userID int) ([]models.WishlistEntry, error)
	Create(ctx context.Context, e *models.WishlistEntry) error
	Delete(ctx context.Context, tx pgx.Tx, entryID int) error
}

type wishlistRepo struct {
	db *pgxpool.Pool
}

func NewWishlistRepository(db *pgxpool.Pool) WishlistRepository {
	return &wishlistRepo{db: db}
}

const wishlistColumns = `id, user_id, symbol, display_name, added_at, price_at_addition`

func scanWishlistEntry(row pgx.Row) (*models.WishlistEntry, error) {
	var e models.WishlistEntry
	err := row.Scan(&e.ID, &e.UserID, &e.Symbol, &e.DisplayName, &e.AddedAt, &e.PriceAtAddition)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// FindMatch looks up the user's wishlist entry for a symbol, matching
// case-insensitively.
func (r *wishlistRepo) FindMatch(ctx context.Context, tx pgx.Tx, userID int, symbol string) (*models.WishlistEntry, error) {
	query := `SELECT ` + wishlistColumns + ` FROM wishlist_entries WHERE user_id = $1 AND LOWER(symbol) = LOWER($2)`
	if tx != nil {
		return scanWishlistEntry(tx.QueryRow(ctx, query, userID, symbol))
	}
	return scanWishlistEntry(r.db.QueryRow(ctx, query, userID, symbol))
}

func (r *wishlistRepo) GetByID(ctx context.Context, userID, entryID int) (*models.WishlistEntry, error) {
	return scanWishlistEntry(r.db.QueryRow(ctx,
		`SELECT `+wishlistColumns+` FROM wishlist_entries WHERE id = $1 AND user_id = $2`,
		entryID, userID))
}

func (r *wishlistRepo) ListByUser(ctx context.Context, userID int) ([]models.WishlistEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+wishlistColumns+` FROM wishlist_entries WHERE user_id = $1 ORDER BY added_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.WishlistEntry
	for rows.Next() {
		var e models.WishlistEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Symbol, &e.DisplayName, &e.AddedAt, &e.PriceAtAddition); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *wishlistRepo) Create(ctx context.Context, e *models.WishlistEntry) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO wishlist_entries (user_id, symbol, display_name, added_at, price_at_addition)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		e.UserID, e.Symbol, e.DisplayName, e.AddedAt, e.PriceAtAddition,
	).Scan(&e.ID)
}

// Delete removes an entry by id. Deleting an entry that is already gone is
// not an error, which keeps the purchase-side reconciliation idempotent.
func (r *wishlistRepo) Delete(ctx context.Context, tx pgx.Tx, entryID int) error {
	query := `DELETE FROM wishlist_entries WHERE id = $1`
	var err error
	if tx != nil {
		_, err = tx.Exec(ctx, query, entryID)
	} else {
		_, err = r.db.Exec(ctx, query, entryID)
	}
	return err
}
