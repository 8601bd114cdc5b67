package services_test

import (
	"context"
	"testing"
	"time"

	"stockfolio/src/models"
	"stockfolio/src/repositories"
	"stockfolio/src/schemas"
	"stockfolio/src/services"

	"stockfolio/tests/init_test"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blindMatchWishlistRepo never finds an existing entry, so the duplicate
// pre-check passes and the insert runs into the unique constraint.
type blindMatchWishlistRepo struct {
	repositories.WishlistRepository
}

func (r *blindMatchWishlistRepo) FindMatch(ctx context.Context, tx pgx.Tx, userID int, symbol string) (*models.WishlistEntry, error) {
	return nil, nil
}

func TestWishlistService(t *testing.T) {
	db := init_test.SetupTestDB(t)

	holdingRepo := repositories.NewHoldingRepository(db)
	wishlistRepo := repositories.NewWishlistRepository(db)

	svc := services.NewWishlistService(holdingRepo, wishlistRepo).WithClock(testClock)
	ledger := services.NewLedgerService(db,
		holdingRepo,
		repositories.NewTransactionRepository(db),
		wishlistRepo,
		repositories.NewDeletedHoldingRepository(db),
	).WithClock(testClock)

	ctx := context.Background()

	t.Run("add, list and remove", func(t *testing.T) {
		const userID = 301
		defer init_test.CleanupTestData(t, db, userID)

		entry, err := svc.AddToWishlist(ctx, userID, &schemas.CreateWishlistRequest{
			Symbol:          "froto",
			DisplayName:     "Ford Otosan",
			PriceAtAddition: decimal.RequireFromString("950.5"),
		})
		require.NoError(t, err)
		assert.Equal(t, "FROTO", entry.Symbol)
		assert.True(t, entry.AddedAt.Equal(testClock()))

		entries, err := svc.ListWishlist(ctx, userID)
		require.NoError(t, err)
		require.Len(t, entries, 1)

		require.NoError(t, svc.RemoveFromWishlist(ctx, userID, entry.ID))

		entries, err = svc.ListWishlist(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("a held symbol cannot be watched", func(t *testing.T) {
		const userID = 302
		defer init_test.CleanupTestData(t, db, userID)

		_, err := ledger.RecordPurchase(ctx, userID, &schemas.PurchaseRequest{
			Symbol:       "TUPRS",
			DisplayName:  "Tupras",
			Quantity:     2,
			PricePerUnit: decimal.RequireFromString("140"),
			PurchaseDate: time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		var validationErr *services.ValidationError
		_, err = svc.AddToWishlist(ctx, userID, &schemas.CreateWishlistRequest{
			Symbol:          "tuprs",
			DisplayName:     "Tupras",
			PriceAtAddition: decimal.RequireFromString("139"),
		})
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("duplicate watches are rejected", func(t *testing.T) {
		const userID = 303
		defer init_test.CleanupTestData(t, db, userID)

		_, err := svc.AddToWishlist(ctx, userID, &schemas.CreateWishlistRequest{
			Symbol:          "BIMAS",
			DisplayName:     "BIM",
			PriceAtAddition: decimal.RequireFromString("500"),
		})
		require.NoError(t, err)

		var validationErr *services.ValidationError
		_, err = svc.AddToWishlist(ctx, userID, &schemas.CreateWishlistRequest{
			Symbol:          "bimas",
			DisplayName:     "BIM",
			PriceAtAddition: decimal.RequireFromString("505"),
		})
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("a concurrent duplicate add is rejected, not a storage failure", func(t *testing.T) {
		const userID = 305
		defer init_test.CleanupTestData(t, db, userID)

		_, err := svc.AddToWishlist(ctx, userID, &schemas.CreateWishlistRequest{
			Symbol:          "SAHOL",
			DisplayName:     "Sabanci Holding",
			PriceAtAddition: decimal.RequireFromString("90"),
		})
		require.NoError(t, err)

		// The blind duplicate check stands in for another worker inserting
		// the entry between the check and our insert; the unique constraint
		// must still surface as a validation failure.
		racing := services.NewWishlistService(holdingRepo,
			&blindMatchWishlistRepo{WishlistRepository: wishlistRepo},
		).WithClock(testClock)

		var validationErr *services.ValidationError
		_, err = racing.AddToWishlist(ctx, userID, &schemas.CreateWishlistRequest{
			Symbol:          "SAHOL",
			DisplayName:     "Sabanci Holding",
			PriceAtAddition: decimal.RequireFromString("91"),
		})
		require.ErrorAs(t, err, &validationErr)

		entries, err := svc.ListWishlist(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("removing another user's entry is not found", func(t *testing.T) {
		const userID = 304
		defer init_test.CleanupTestData(t, db, userID)

		entry, err := svc.AddToWishlist(ctx, userID, &schemas.CreateWishlistRequest{
			Symbol:          "PGSUS",
			DisplayName:     "Pegasus",
			PriceAtAddition: decimal.RequireFromString("210"),
		})
		require.NoError(t, err)

		var notFoundErr *services.NotFoundError
		err = svc.RemoveFromWishlist(ctx, userID+1, entry.ID)
		require.ErrorAs(t, err, &notFoundErr)
	})
}
