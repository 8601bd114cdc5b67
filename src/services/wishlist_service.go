package services

import (
	"context"
	"time"

	"stockfolio/src/database"
	"stockfolio/src/models"
	"stockfolio/src/repositories"
	"stockfolio/src/schemas"
	"stockfolio/src/utils"

	"github.com/sirupsen/logrus"
)

type WishlistServiceI interface {
	AddToWishlist(ctx context.Context, userID int, req *schemas.CreateWishlistRequest) (*schemas.WishlistEntryResponse, error)
	ListWishlist(ctx context.Context, userID int) ([]*schemas.WishlistEntryResponse, error)
	RemoveFromWishlist(ctx context.Context, userID, entryID int) error
}

type WishlistService struct {
	holdingRepository  repositories.HoldingRepository
	wishlistRepository repositories.WishlistRepository

	now func() time.Time
}

func NewWishlistService(holdingRepository repositories.HoldingRepository, wishlistRepository repositories.WishlistRepository) *WishlistService {
	return &WishlistService{
		holdingRepository:  holdingRepository,
		wishlistRepository: wishlistRepository,
		now:                time.Now,
	}
}

func (s *WishlistService) WithClock(now func() time.Time) *WishlistService {
	s.now = now
	return s
}

// AddToWishlist watches a symbol the user does not hold yet. Symbols already
// held cannot be watched; the ledger engine enforces the reverse direction by
// dropping the entry on purchase.
func (s *WishlistService) AddToWishlist(ctx context.Context, userID int, req *schemas.CreateWishlistRequest) (*schemas.WishlistEntryResponse, error) {
	logger := utils.LoggerFromContext(ctx)

	symbol := NormalizeSymbol(req.Symbol)
	if symbol == "" {
		return nil, NewValidationError("symbol must not be empty")
	}
	if req.PriceAtAddition.IsNegative() {
		return nil, NewValidationError("price at addition must not be negative, got %s", req.PriceAtAddition)
	}

	held, err := s.holdingRepository.GetByUserAndSymbol(ctx, userID, symbol)
	if err != nil {
		return nil, newStorageError("add to wishlist", err)
	}
	if held != nil {
		return nil, NewValidationError("%s is already in the portfolio and cannot be added to the wishlist", symbol)
	}

	existing, err := s.wishlistRepository.FindMatch(ctx, nil, userID, symbol)
	if err != nil {
		return nil, newStorageError("add to wishlist", err)
	}
	if existing != nil {
		return nil, NewValidationError("%s is already on the wishlist", symbol)
	}

	entry := &models.WishlistEntry{
		UserID:          userID,
		Symbol:          symbol,
		DisplayName:     req.DisplayName,
		AddedAt:         s.now(),
		PriceAtAddition: req.PriceAtAddition,
	}
	if err := s.wishlistRepository.Create(ctx, entry); err != nil {
		// A concurrent add can slip between the duplicate check and the
		// insert; the unique constraint reports it as the same duplicate.
		if database.IsUniqueViolation(err) {
			return nil, NewValidationError("%s is already on the wishlist", symbol)
		}
		return nil, newStorageError("add to wishlist", err)
	}

	logger.WithFields(logrus.Fields{
		"user_id": userID,
		"symbol":  symbol,
	}).Info("wishlist entry added")
	return schemas.NewWishlistEntryResponse(entry), nil
}

func (s *WishlistService) ListWishlist(ctx context.Context, userID int) ([]*schemas.WishlistEntryResponse, error) {
	entries, err := s.wishlistRepository.ListByUser(ctx, userID)
	if err != nil {
		return nil, newStorageError("list wishlist", err)
	}
	responses := make([]*schemas.WishlistEntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, schemas.NewWishlistEntryResponse(&entries[i]))
	}
	return responses, nil
}

func (s *WishlistService) RemoveFromWishlist(ctx context.Context, userID, entryID int) error {
	entry, err := s.wishlistRepository.GetByID(ctx, userID, entryID)
	if err != nil {
		return newStorageError("remove from wishlist", err)
	}
	if entry == nil {
		return NewNotFoundError("wishlist entry %d not found", entryID)
	}
	if err := s.wishlistRepository.Delete(ctx, nil, entry.ID); err != nil {
		return newStorageError("remove from wishlist", err)
	}
	return nil
}
