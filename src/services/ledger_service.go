package services

import (
	"context"
	"strings"
	"time"

	"stockfolio/src/database"
	"stockfolio/src/models"
	"stockfolio/src/repositories"
	"stockfolio/src/schemas"
	"stockfolio/src/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// LedgerServiceI is the portfolio ledger engine. Each mutating operation runs
// in a single transaction: the holding write, the ledger append and any
// wishlist reconciliation commit together or not at all.
type LedgerServiceI interface {
	RecordPurchase(ctx context.Context, userID int, req *schemas.PurchaseRequest) (*schemas.PurchaseResult, error)
	RecordSale(ctx context.Context, userID int, req *schemas.SaleRequest) (*schemas.SaleResult, error)
	RemoveHolding(ctx context.Context, userID, holdingID int) (*schemas.RemovalResult, error)
	ListHoldings(ctx context.Context, userID int) ([]*schemas.HoldingResponse, error)
	ListTransactions(ctx context.Context, userID int) ([]*schemas.TransactionRecordResponse, error)
	ListDeletedHoldings(ctx context.Context, userID int) ([]*schemas.DeletedHoldingResponse, error)
}

type LedgerService struct {
	db                    *pgxpool.Pool
	holdingRepository     repositories.HoldingRepository
	transactionRepository repositories.TransactionRepository
	wishlistRepository    repositories.WishlistRepository
	archiveRepository     repositories.DeletedHoldingRepository

	now func() time.Time
}

func NewLedgerService(
	db *pgxpool.Pool,
	holdingRepository repositories.HoldingRepository,
	transactionRepository repositories.TransactionRepository,
	wishlistRepository repositories.WishlistRepository,
	archiveRepository repositories.DeletedHoldingRepository,
) *LedgerService {
	return &LedgerService{
		db:                    db,
		holdingRepository:     holdingRepository,
		transactionRepository: transactionRepository,
		wishlistRepository:    wishlistRepository,
		archiveRepository:     archiveRepository,
		now:                   time.Now,
	}
}

// WithClock replaces the wall clock, used by tests for deterministic
// timestamps.
func (s *LedgerService) WithClock(now func() time.Time) *LedgerService {
	s.now = now
	return s
}

// NormalizeSymbol upper-cases and trims an instrument symbol. Holdings and
// wishlist entries are keyed on the normalized form.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// classify maps non-domain errors to StorageError. Engine operations return
// it at the transaction boundary so any pgx failure surfaces uniformly while
// validation and not-found errors pass through untouched.
func classify(op string, err error) error {
	switch err.(type) {
	case *ValidationError, *NotFoundError, *InsufficientQuantityError, *StorageError:
		return err
	}
	return newStorageError(op, err)
}

func (s *LedgerService) RecordPurchase(ctx context.Context, userID int, req *schemas.PurchaseRequest) (*schemas.PurchaseResult, error) {
	logger := utils.LoggerFromContext(ctx)

	symbol := NormalizeSymbol(req.Symbol)
	if symbol == "" {
		return nil, NewValidationError("symbol must not be empty")
	}
	if req.Quantity <= 0 {
		return nil, NewValidationError("quantity must be positive, got %d", req.Quantity)
	}
	if req.PricePerUnit.IsNegative() {
		return nil, NewValidationError("price per unit must not be negative, got %s", req.PricePerUnit)
	}

	purchaseDate := req.PurchaseDate
	if purchaseDate.IsZero() {
		purchaseDate = s.now()
	}

	var result *schemas.PurchaseResult
	attempt := func() error {
		return database.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
			existing, err := s.holdingRepository.GetBySymbolForUpdate(ctx, tx, userID, symbol)
			if err != nil {
				return err
			}

			holding := &models.Holding{
				UserID:          userID,
				Symbol:          symbol,
				DisplayName:     req.DisplayName,
				FirstAcquiredAt: purchaseDate,
			}
			if existing == nil {
				holding.Quantity, holding.AverageCost = MergePurchase(0, decimal.Zero, req.Quantity, req.PricePerUnit)
				if err := s.holdingRepository.Create(ctx, tx, holding); err != nil {
					return err
				}
			} else {
				// A merge keeps the original display name and acquisition
				// date; only quantity and average cost move.
				holding.ID = existing.ID
				holding.DisplayName = existing.DisplayName
				holding.FirstAcquiredAt = existing.FirstAcquiredAt
				holding.CreatedAt = existing.CreatedAt
				holding.UpdatedAt = existing.UpdatedAt
				holding.Quantity, holding.AverageCost = MergePurchase(existing.Quantity, existing.AverageCost, req.Quantity, req.PricePerUnit)
				if err := s.holdingRepository.UpdatePosition(ctx, tx, holding.ID, holding.Quantity, holding.AverageCost); err != nil {
					return err
				}
			}

			record := &models.TransactionRecord{
				UserID:         userID,
				HoldingID:      holding.ID,
				Symbol:         symbol,
				DisplayName:    holding.DisplayName,
				IsPurchase:     true,
				Quantity:       req.Quantity,
				PricePerUnit:   req.PricePerUnit,
				SourcePlatform: req.Platform,
				TransactionAt:  purchaseDate,
			}
			if err := s.transactionRepository.Create(ctx, tx, record); err != nil {
				return err
			}

			// Owning an instrument and watching it are mutually exclusive, so
			// acquiring a position drops the matching wishlist entry in the
			// same transaction.
			result = &schemas.PurchaseResult{Holding: schemas.NewHoldingResponse(holding)}
			entry, err := s.wishlistRepository.FindMatch(ctx, tx, userID, symbol)
			if err != nil {
				return err
			}
			if entry != nil {
				if err := s.wishlistRepository.Delete(ctx, tx, entry.ID); err != nil {
					return err
				}
				result.WishlistRemoved = true
				result.RemovedWishlistEntry = &schemas.RemovedWishlistEntry{
					AddedAt:         entry.AddedAt,
					PriceAtAddition: entry.PriceAtAddition,
				}
			}
			return nil
		})
	}

	err := attempt()
	if database.IsUniqueViolation(err) {
		// A concurrent first purchase created the row between our locked
		// read and our insert; the second attempt sees it and merges.
		err = attempt()
	}
	if err != nil {
		return nil, classify("record purchase", err)
	}

	logger.WithFields(logrus.Fields{
		"user_id":          userID,
		"symbol":           symbol,
		"quantity":         req.Quantity,
		"wishlist_removed": result.WishlistRemoved,
	}).Info("purchase recorded")
	return result, nil
}

func (s *LedgerService) RecordSale(ctx context.Context, userID int, req *schemas.SaleRequest) (*schemas.SaleResult, error) {
	logger := utils.LoggerFromContext(ctx)

	if req.Quantity <= 0 {
		return nil, NewValidationError("quantity must be positive, got %d", req.Quantity)
	}
	if req.SalePrice.IsNegative() {
		return nil, NewValidationError("sale price must not be negative, got %s", req.SalePrice)
	}

	soldAt := s.now()

	var result *schemas.SaleResult
	err := database.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		holding, err := s.holdingRepository.GetByIDForUpdate(ctx, tx, userID, req.HoldingID)
		if err != nil {
			return err
		}
		if holding == nil {
			return NewNotFoundError("holding %d not found", req.HoldingID)
		}
		if req.Quantity > holding.Quantity {
			return &InsufficientQuantityError{Requested: req.Quantity, Held: holding.Quantity}
		}

		// The cost basis must be captured before the position is mutated.
		averageCostAtSale := holding.AverageCost

		holding.Quantity -= req.Quantity
		if holding.Quantity == 0 {
			holding.AverageCost = decimal.Zero
		}
		if err := s.holdingRepository.UpdatePosition(ctx, tx, holding.ID, holding.Quantity, holding.AverageCost); err != nil {
			return err
		}

		totalProceeds, gainAmount, profitOrLossPercent := SaleEconomics(req.Quantity, req.SalePrice, averageCostAtSale)

		record := &models.TransactionRecord{
			UserID:              userID,
			HoldingID:           holding.ID,
			Symbol:              holding.Symbol,
			DisplayName:         holding.DisplayName,
			IsPurchase:          false,
			Quantity:            req.Quantity,
			PricePerUnit:        req.SalePrice,
			TotalProceeds:       &totalProceeds,
			ProfitOrLossPercent: &profitOrLossPercent,
			GainAmount:          &gainAmount,
			TransactionAt:       soldAt,
		}
		if err := s.transactionRepository.Create(ctx, tx, record); err != nil {
			return err
		}

		result = &schemas.SaleResult{
			Holding:             schemas.NewHoldingResponse(holding),
			TotalProceeds:       totalProceeds,
			GainAmount:          gainAmount,
			ProfitOrLossPercent: profitOrLossPercent,
		}
		return nil
	})
	if err != nil {
		return nil, classify("record sale", err)
	}

	logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"holding_id": req.HoldingID,
		"quantity":   req.Quantity,
		"gain":       result.GainAmount,
	}).Info("sale recorded")
	return result, nil
}

// RemoveHolding archives then deletes a holding unconditionally; a remaining
// quantity is recorded in the archive only, it is not liquidated.
func (s *LedgerService) RemoveHolding(ctx context.Context, userID, holdingID int) (*schemas.RemovalResult, error) {
	logger := utils.LoggerFromContext(ctx)

	deletedAt := s.now()

	var result *schemas.RemovalResult
	err := database.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		holding, err := s.holdingRepository.GetByIDForUpdate(ctx, tx, userID, holdingID)
		if err != nil {
			return err
		}
		if holding == nil {
			return NewNotFoundError("holding %d not found", holdingID)
		}

		archived := &models.DeletedHolding{
			OriginalHoldingID:  holding.ID,
			UserID:             userID,
			Symbol:             holding.Symbol,
			DisplayName:        holding.DisplayName,
			QuantityAtDeletion: holding.Quantity,
			DeletedAt:          deletedAt,
		}
		if err := s.archiveRepository.Create(ctx, tx, archived); err != nil {
			return err
		}
		if err := s.holdingRepository.Delete(ctx, tx, userID, holding.ID); err != nil {
			return err
		}

		result = &schemas.RemovalResult{Archived: schemas.NewDeletedHoldingResponse(archived)}
		return nil
	})
	if err != nil {
		return nil, classify("remove holding", err)
	}

	logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"holding_id": holdingID,
		"symbol":     result.Archived.Symbol,
	}).Info("holding removed and archived")
	return result, nil
}

func (s *LedgerService) ListHoldings(ctx context.Context, userID int) ([]*schemas.HoldingResponse, error) {
	holdings, err := s.holdingRepository.ListByUser(ctx, userID)
	if err != nil {
		return nil, newStorageError("list holdings", err)
	}
	responses := make([]*schemas.HoldingResponse, 0, len(holdings))
	for i := range holdings {
		responses = append(responses, schemas.NewHoldingResponse(&holdings[i]))
	}
	return responses, nil
}

func (s *LedgerService) ListTransactions(ctx context.Context, userID int) ([]*schemas.TransactionRecordResponse, error) {
	records, err := s.transactionRepository.ListByUser(ctx, userID)
	if err != nil {
		return nil, newStorageError("list transactions", err)
	}
	responses := make([]*schemas.TransactionRecordResponse, 0, len(records))
	for i := range records {
		responses = append(responses, schemas.NewTransactionRecordResponse(&records[i]))
	}
	return responses, nil
}

func (s *LedgerService) ListDeletedHoldings(ctx context.Context, userID int) ([]*schemas.DeletedHoldingResponse, error) {
	archived, err := s.archiveRepository.ListByUser(ctx, userID)
	if err != nil {
		return nil, newStorageError("list deleted holdings", err)
	}
	responses := make([]*schemas.DeletedHoldingResponse, 0, len(archived))
	for i := range archived {
		responses = append(responses, schemas.NewDeletedHoldingResponse(&archived[i]))
	}
	return responses, nil
}
