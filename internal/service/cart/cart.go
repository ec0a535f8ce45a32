// Package cart implements the per-user cart state machine. State per
// (user, item) pair is either absent or a quantity >= 1; "absent" and
// "quantity 0" are the same state and a zero-quantity row never persists.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MadridBabajev/ShoppingCart/internal/apperr"
	"github.com/MadridBabajev/ShoppingCart/internal/models"
	"github.com/MadridBabajev/ShoppingCart/internal/repo"
	"github.com/MadridBabajev/ShoppingCart/internal/transport"
)

type CartService struct {
	Repo *repo.GormRepo
}

func New(r *repo.GormRepo) *CartService {
	return &CartService{Repo: r}
}

// Increment adds one to the line, creating it with quantity 1 when absent.
// No stock cap is enforced: stock amounts are advisory display data.
func (s *CartService) Increment(ctx context.Context, userID, itemID uuid.UUID) (*models.CartItem, error) {
	return s.Repo.IncrementCartItem(ctx, userID, itemID)
}

// Decrement lowers the line by one, removing it at zero. Decrementing an
// absent line is a no-op, not an error.
func (s *CartService) Decrement(ctx context.Context, userID, itemID uuid.UUID) (*models.CartItem, error) {
	item, _, err := s.Repo.DecrementCartItem(ctx, userID, itemID)
	return item, err
}

func (s *CartService) SetQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.CartItem, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative: %w", apperr.ErrInvalidArgument)
	}
	if quantity == 0 {
		if _, err := s.Repo.DeleteCartItem(ctx, userID, itemID); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return s.Repo.SetCartItemQuantity(ctx, userID, itemID, quantity)
}

// Apply dispatches one of the three cart actions. Quantity is consulted
// only by ActionSetAmount and is required there.
func (s *CartService) Apply(ctx context.Context, userID, itemID uuid.UUID, action Action, quantity *int) (*models.CartItem, error) {
	switch action {
	case ActionIncrement:
		return s.Increment(ctx, userID, itemID)
	case ActionDecrement:
		return s.Decrement(ctx, userID, itemID)
	case ActionSetAmount:
		if quantity == nil {
			return nil, fmt.Errorf("set_amount requires a quantity: %w", apperr.ErrInvalidArgument)
		}
		return s.SetQuantity(ctx, userID, itemID, *quantity)
	default:
		return nil, fmt.Errorf("unknown cart action %d: %w", action, apperr.ErrInvalidArgument)
	}
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.Repo.ClearCart(ctx, userID)
}

// ListCartLines returns the user's lines joined with item snapshots. No
// ordering is guaranteed.
func (s *CartService) ListCartLines(ctx context.Context, userID uuid.UUID) ([]transport.CartLine, error) {
	items, err := s.Repo.GetCartItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ItemID)
	}
	catalog, err := s.Repo.GetItemsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Item, len(catalog))
	for _, ci := range catalog {
		byID[ci.ID] = ci
	}

	lines := make([]transport.CartLine, 0, len(items))
	for _, it := range items {
		line := transport.CartLine{ItemID: it.ItemID, Quantity: it.Quantity}
		if ci, ok := byID[it.ItemID]; ok {
			line.Name = ci.Name
			line.Price = ci.Price
			line.Rating = ci.Rating
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// GetCartLine fails with a not-found error only when the user does not
// exist; a missing line for an existing user yields (nil, nil).
func (s *CartService) GetCartLine(ctx context.Context, userID, itemID uuid.UUID) (*transport.CartLine, error) {
	if _, err := s.Repo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
		}
		return nil, err
	}

	item, err := s.Repo.GetCartItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}

	line := &transport.CartLine{ItemID: item.ItemID, Quantity: item.Quantity}
	if ci, err := s.Repo.GetItem(ctx, itemID); err == nil {
		line.Name = ci.Name
		line.Price = ci.Price
		line.Rating = ci.Rating
	}
	return line, nil
}
