package repositories_test

import (
	"context"
	"testing"
	"time"

	"stockfolio/src/database"
	"stockfolio/src/models"
	"stockfolio/src/repositories"

	"stockfolio/tests/init_test"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeletedHoldingRepository(t *testing.T) {
	db := init_test.SetupTestDB(t)
	repo := repositories.NewDeletedHoldingRepository(db)

	const userID = 104

	defer func() {
		init_test.CleanupTestData(t, db, userID)
	}()

	ctx := context.Background()

	t.Run("Create and ListByUser", func(t *testing.T) {
		first := &models.DeletedHolding{
			OriginalHoldingID:  42,
			UserID:             userID,
			Symbol:             "SISE",
			DisplayName:        "Sisecam",
			QuantityAtDeletion: 12,
			DeletedAt:          time.Date(2024, 11, 1, 10, 0, 0, 0, time.UTC),
		}
		second := &models.DeletedHolding{
			OriginalHoldingID:  43,
			UserID:             userID,
			Symbol:             "EREGL",
			DisplayName:        "Eregli",
			QuantityAtDeletion: 0,
			DeletedAt:          time.Date(2024, 11, 2, 10, 0, 0, 0, time.UTC),
		}

		err := database.WithTransaction(ctx, db, func(tx pgx.Tx) error {
			if err := repo.Create(ctx, tx, first); err != nil {
				return err
			}
			return repo.Create(ctx, tx, second)
		})
		require.NoError(t, err)
		require.NotZero(t, first.ID)
		require.NotZero(t, second.ID)

		archived, err := repo.ListByUser(ctx, userID)
		require.NoError(t, err)
		require.Len(t, archived, 2)

		// Most recent deletion first
		assert.Equal(t, "EREGL", archived[0].Symbol)
		assert.Equal(t, int64(0), archived[0].QuantityAtDeletion)
		assert.Equal(t, "SISE", archived[1].Symbol)
		assert.Equal(t, 42, archived[1].OriginalHoldingID)
	})

	t.Run("ListByUser scoped to owner", func(t *testing.T) {
		archived, err := repo.ListByUser(ctx, userID+1)
		require.NoError(t, err)
		assert.Empty(t, archived)
	})
}
