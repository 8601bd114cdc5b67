package services_test

import (
	"context"
	"errors"
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

var testClock = func() time.Time {
	return time.Date(2024, 11, 10, 15, 0, 0, 0, time.UTC)
}

func newTestLedgerService(t *testing.T) (*services.LedgerService, func(int)) {
	t.Helper()
	db := init_test.SetupTestDB(t)

	svc := services.NewLedgerService(db,
		repositories.NewHoldingRepository(db),
		repositories.NewTransactionRepository(db),
		repositories.NewWishlistRepository(db),
		repositories.NewDeletedHoldingRepository(db),
	).WithClock(testClock)

	cleanup := func(userID int) {
		init_test.CleanupTestData(t, db, userID)
	}
	return svc, cleanup
}

func purchase(symbol, name string, qty int64, price string) *schemas.PurchaseRequest {
	return &schemas.PurchaseRequest{
		Symbol:       symbol,
		DisplayName:  name,
		Quantity:     qty,
		PricePerUnit: decimal.RequireFromString(price),
		PurchaseDate: time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
		Platform:     "midas",
	}
}

func TestRecordPurchase(t *testing.T) {
	svc, cleanup := newTestLedgerService(t)
	ctx := context.Background()

	t.Run("first purchase creates the holding at the purchase price", func(t *testing.T) {
		const userID = 201
		defer cleanup(userID)

		result, err := svc.RecordPurchase(ctx, userID, purchase("thyao", "Turkish Airlines", 10, "100"))
		require.NoError(t, err)

		assert.Equal(t, "THYAO", result.Holding.Symbol)
		assert.Equal(t, int64(10), result.Holding.Quantity)
		assert.True(t, result.Holding.AverageCost.Equal(decimal.RequireFromString("100")))
		assert.False(t, result.WishlistRemoved)

		records, err := svc.ListTransactions(ctx, userID)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.True(t, records[0].IsPurchase)
		assert.Equal(t, int64(10), records[0].Quantity)
		assert.True(t, records[0].PricePerUnit.Equal(decimal.RequireFromString("100")))
		assert.Equal(t, "midas", records[0].SourcePlatform)
	})

	t.Run("repeat purchase merges into the weighted average", func(t *testing.T) {
		const userID = 202
		defer cleanup(userID)

		_, err := svc.RecordPurchase(ctx, userID, purchase("THYAO", "Turkish Airlines", 10, "100"))
		require.NoError(t, err)

		result, err := svc.RecordPurchase(ctx, userID, purchase("THYAO", "Turkish Airlines", 5, "130"))
		require.NoError(t, err)

		assert.Equal(t, int64(15), result.Holding.Quantity)
		assert.True(t, result.Holding.AverageCost.Equal(decimal.RequireFromString("110")),
			"expected exactly 110, got %s", result.Holding.AverageCost)

		// Two rows on the ledger, one holding
		records, err := svc.ListTransactions(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, records, 2)

		holdings, err := svc.ListHoldings(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, holdings, 1)
	})

	t.Run("buying a watched symbol drops the wishlist entry atomically", func(t *testing.T) {
		const userID = 203
		defer cleanup(userID)

		db := init_test.SetupTestDB(t)
		wishlistRepo := repositories.NewWishlistRepository(db)
		addedAt := time.Date(2024, 9, 15, 8, 0, 0, 0, time.UTC)
		require.NoError(t, wishlistRepo.Create(ctx, &models.WishlistEntry{
			UserID:          userID,
			Symbol:          "ASELS",
			DisplayName:     "Aselsan",
			AddedAt:         addedAt,
			PriceAtAddition: decimal.RequireFromString("44.1"),
		}))

		result, err := svc.RecordPurchase(ctx, userID, purchase("asels", "Aselsan", 3, "47"))
		require.NoError(t, err)

		assert.True(t, result.WishlistRemoved)
		require.NotNil(t, result.RemovedWishlistEntry)
		assert.True(t, result.RemovedWishlistEntry.AddedAt.Equal(addedAt))
		assert.True(t, result.RemovedWishlistEntry.PriceAtAddition.Equal(decimal.RequireFromString("44.1")))

		// The entry is gone and the holding exists
		gone, err := wishlistRepo.FindMatch(ctx, nil, userID, "ASELS")
		require.NoError(t, err)
		assert.Nil(t, gone)

		holdings, err := svc.ListHoldings(ctx, userID)
		require.NoError(t, err)
		require.Len(t, holdings, 1)
		assert.Equal(t, "ASELS", holdings[0].Symbol)
	})

	t.Run("retries and merges when a concurrent purchase wins the insert", func(t *testing.T) {
		const userID = 205
		defer cleanup(userID)

		_, err := svc.RecordPurchase(ctx, userID, purchase("THYAO", "Turkish Airlines", 10, "100"))
		require.NoError(t, err)

		// The stale first read makes the engine attempt a fresh insert
		// against the row that already exists, exactly what happens when
		// another worker commits the first purchase in between.
		db := init_test.SetupTestDB(t)
		racing := services.NewLedgerService(db,
			&staleReadHoldingRepo{HoldingRepository: repositories.NewHoldingRepository(db)},
			repositories.NewTransactionRepository(db),
			repositories.NewWishlistRepository(db),
			repositories.NewDeletedHoldingRepository(db),
		).WithClock(testClock)

		result, err := racing.RecordPurchase(ctx, userID, purchase("THYAO", "Turkish Airlines", 5, "130"))
		require.NoError(t, err)

		assert.Equal(t, int64(15), result.Holding.Quantity)
		assert.True(t, result.Holding.AverageCost.Equal(decimal.RequireFromString("110")),
			"both purchases must be reflected, got avg %s", result.Holding.AverageCost)

		records, err := svc.ListTransactions(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, records, 2, "the failed first attempt must not leave a ledger row")
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		const userID = 204
		defer cleanup(userID)

		var validationErr *services.ValidationError

		_, err := svc.RecordPurchase(ctx, userID, purchase("", "No Symbol", 1, "10"))
		require.ErrorAs(t, err, &validationErr)

		_, err = svc.RecordPurchase(ctx, userID, purchase("THYAO", "Turkish Airlines", 0, "10"))
		require.ErrorAs(t, err, &validationErr)

		_, err = svc.RecordPurchase(ctx, userID, purchase("THYAO", "Turkish Airlines", 1, "-5"))
		require.ErrorAs(t, err, &validationErr)

		// Nothing was written
		records, err := svc.ListTransactions(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestRecordSale(t *testing.T) {
	svc, cleanup := newTestLedgerService(t)
	ctx := context.Background()

	t.Run("computes realized profit against the captured average cost", func(t *testing.T) {
		const userID = 211
		defer cleanup(userID)

		bought, err := svc.RecordPurchase(ctx, userID, purchase("SISE", "Sisecam", 10, "50"))
		require.NoError(t, err)

		result, err := svc.RecordSale(ctx, userID, &schemas.SaleRequest{
			HoldingID: bought.Holding.ID,
			Quantity:  4,
			SalePrice: decimal.RequireFromString("70"),
		})
		require.NoError(t, err)

		assert.True(t, result.TotalProceeds.Equal(decimal.RequireFromString("280")))
		assert.True(t, result.GainAmount.Equal(decimal.RequireFromString("80")))
		assert.True(t, result.ProfitOrLossPercent.Equal(decimal.RequireFromString("40")),
			"expected exactly 40, got %s", result.ProfitOrLossPercent)
		assert.Equal(t, int64(6), result.Holding.Quantity)
		assert.True(t, result.Holding.AverageCost.Equal(decimal.RequireFromString("50")),
			"average cost must not change on a partial sale")

		records, err := svc.ListTransactions(ctx, userID)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.False(t, records[0].IsPurchase)
		require.NotNil(t, records[0].GainAmount)
		assert.True(t, records[0].GainAmount.Equal(decimal.RequireFromString("80")))
	})

	t.Run("selling everything keeps the row and resets the average cost", func(t *testing.T) {
		const userID = 212
		defer cleanup(userID)

		bought, err := svc.RecordPurchase(ctx, userID, purchase("EREGL", "Eregli", 5, "30"))
		require.NoError(t, err)

		result, err := svc.RecordSale(ctx, userID, &schemas.SaleRequest{
			HoldingID: bought.Holding.ID,
			Quantity:  5,
			SalePrice: decimal.RequireFromString("33"),
		})
		require.NoError(t, err)

		assert.Equal(t, int64(0), result.Holding.Quantity)
		assert.True(t, result.Holding.AverageCost.IsZero())

		holdings, err := svc.ListHoldings(ctx, userID)
		require.NoError(t, err)
		require.Len(t, holdings, 1, "the holding row must survive a full liquidation")
		assert.Equal(t, int64(0), holdings[0].Quantity)
	})

	t.Run("overselling fails and changes nothing", func(t *testing.T) {
		const userID = 213
		defer cleanup(userID)

		bought, err := svc.RecordPurchase(ctx, userID, purchase("GARAN", "Garanti", 3, "90"))
		require.NoError(t, err)

		_, err = svc.RecordSale(ctx, userID, &schemas.SaleRequest{
			HoldingID: bought.Holding.ID,
			Quantity:  4,
			SalePrice: decimal.RequireFromString("95"),
		})

		var insufficientErr *services.InsufficientQuantityError
		require.ErrorAs(t, err, &insufficientErr)
		assert.Equal(t, int64(4), insufficientErr.Requested)
		assert.Equal(t, int64(3), insufficientErr.Held)

		// Holding and ledger are untouched
		holdings, err := svc.ListHoldings(ctx, userID)
		require.NoError(t, err)
		require.Len(t, holdings, 1)
		assert.Equal(t, int64(3), holdings[0].Quantity)
		assert.True(t, holdings[0].AverageCost.Equal(decimal.RequireFromString("90")))

		records, err := svc.ListTransactions(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, records, 1, "no sale record may exist after a rejected sale")
	})

	t.Run("selling an unknown or foreign holding is not found", func(t *testing.T) {
		const userID = 214
		defer cleanup(userID)
		defer cleanup(userID + 1)

		bought, err := svc.RecordPurchase(ctx, userID, purchase("AKBNK", "Akbank", 2, "60"))
		require.NoError(t, err)

		var notFoundErr *services.NotFoundError

		_, err = svc.RecordSale(ctx, userID, &schemas.SaleRequest{
			HoldingID: 999999,
			Quantity:  1,
			SalePrice: decimal.RequireFromString("10"),
		})
		require.ErrorAs(t, err, &notFoundErr)

		// Another user cannot sell this holding
		_, err = svc.RecordSale(ctx, userID+1, &schemas.SaleRequest{
			HoldingID: bought.Holding.ID,
			Quantity:  1,
			SalePrice: decimal.RequireFromString("10"),
		})
		require.ErrorAs(t, err, &notFoundErr)
	})

	t.Run("sale on a zero cost basis follows the clamp policy", func(t *testing.T) {
		const userID = 215
		defer cleanup(userID)

		bought, err := svc.RecordPurchase(ctx, userID, purchase("KCHOL", "Koc Holding", 4, "25"))
		require.NoError(t, err)

		// Liquidate fully, then the row carries quantity 0 / average 0.
		// A later purchase would normally restart the basis; selling without
		// one is the degenerate case.
		_, err = svc.RecordSale(ctx, userID, &schemas.SaleRequest{
			HoldingID: bought.Holding.ID,
			Quantity:  4,
			SalePrice: decimal.RequireFromString("25"),
		})
		require.NoError(t, err)

		_, err = svc.RecordPurchase(ctx, userID, purchase("KCHOL", "Koc Holding", 2, "0"))
		require.NoError(t, err)

		result, err := svc.RecordSale(ctx, userID, &schemas.SaleRequest{
			HoldingID: bought.Holding.ID,
			Quantity:  2,
			SalePrice: decimal.RequireFromString("12"),
		})
		require.NoError(t, err)

		assert.True(t, result.TotalProceeds.Equal(decimal.RequireFromString("24")))
		assert.True(t, result.GainAmount.Equal(decimal.RequireFromString("24")))
		assert.True(t, result.ProfitOrLossPercent.Equal(decimal.RequireFromString("100")),
			"zero cost basis clamps the percent to 100")
	})
}

// staleReadHoldingRepo answers the first locked read with "no row", as if a
// concurrent worker inserted the holding after our read. Later calls hit the
// real store.
type staleReadHoldingRepo struct {
	repositories.HoldingRepository
	calls int
}

func (r *staleReadHoldingRepo) GetBySymbolForUpdate(ctx context.Context, tx pgx.Tx, userID int, symbol string) (*models.Holding, error) {
	r.calls++
	if r.calls == 1 {
		return nil, nil
	}
	return r.HoldingRepository.GetBySymbolForUpdate(ctx, tx, userID, symbol)
}

// failingDeleteHoldingRepo simulates a storage fault between the archive
// write and the holding delete.
type failingDeleteHoldingRepo struct {
	repositories.HoldingRepository
}

func (r *failingDeleteHoldingRepo) Delete(ctx context.Context, tx pgx.Tx, userID, holdingID int) error {
	return errors.New("storage offline")
}

func TestRemoveHolding(t *testing.T) {
	svc, cleanup := newTestLedgerService(t)
	ctx := context.Background()

	t.Run("archives the snapshot then deletes the row", func(t *testing.T) {
		const userID = 221
		defer cleanup(userID)

		bought, err := svc.RecordPurchase(ctx, userID, purchase("THYAO", "Turkish Airlines", 8, "100"))
		require.NoError(t, err)

		result, err := svc.RemoveHolding(ctx, userID, bought.Holding.ID)
		require.NoError(t, err)

		assert.Equal(t, bought.Holding.ID, result.Archived.OriginalHoldingID)
		assert.Equal(t, "THYAO", result.Archived.Symbol)
		assert.Equal(t, int64(8), result.Archived.QuantityAtDeletion,
			"remaining quantity is recorded in the archive, not liquidated")
		assert.True(t, result.Archived.DeletedAt.Equal(testClock()))

		holdings, err := svc.ListHoldings(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, holdings)

		archived, err := svc.ListDeletedHoldings(ctx, userID)
		require.NoError(t, err)
		require.Len(t, archived, 1)

		// The ledger keeps the purchase row even after removal
		records, err := svc.ListTransactions(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("removing a missing holding is not found", func(t *testing.T) {
		const userID = 222
		defer cleanup(userID)

		var notFoundErr *services.NotFoundError
		_, err := svc.RemoveHolding(ctx, userID, 123456)
		require.ErrorAs(t, err, &notFoundErr)
	})

	t.Run("fault between archive and delete rolls back both", func(t *testing.T) {
		const userID = 223
		defer cleanup(userID)

		db := init_test.SetupTestDB(t)
		holdingRepo := repositories.NewHoldingRepository(db)
		faulty := services.NewLedgerService(db,
			&failingDeleteHoldingRepo{HoldingRepository: holdingRepo},
			repositories.NewTransactionRepository(db),
			repositories.NewWishlistRepository(db),
			repositories.NewDeletedHoldingRepository(db),
		).WithClock(testClock)

		bought, err := svc.RecordPurchase(ctx, userID, purchase("SISE", "Sisecam", 6, "40"))
		require.NoError(t, err)

		_, err = faulty.RemoveHolding(ctx, userID, bought.Holding.ID)

		var storageErr *services.StorageError
		require.ErrorAs(t, err, &storageErr)

		// The holding is still visible and no archive row leaked out
		holdings, err := svc.ListHoldings(ctx, userID)
		require.NoError(t, err)
		require.Len(t, holdings, 1)

		archived, err := svc.ListDeletedHoldings(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, archived)
	})
}
