// Package catalog produces item views, annotated with the requesting
// user's cart quantity when an identity is supplied.
package catalog

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

type CatalogService struct {
	Repo *repo.GormRepo
}

func New(r *repo.GormRepo) *CatalogService {
	return &CatalogService{Repo: r}
}

// ListItems returns a catalog page. userID may be nil for anonymous
// callers, whose views carry no cart annotation.
func (s *CatalogService) ListItems(ctx context.Context, userID *uuid.UUID, offset, limit int) (int64, []transport.ItemListElement, error) {
	total, items, err := s.Repo.GetItems(ctx, offset, limit)
	if err != nil {
		return 0, nil, err
	}

	quantities, err := s.cartQuantities(ctx, userID)
	if err != nil {
		return 0, nil, err
	}

	out := make([]transport.ItemListElement, 0, len(items))
	for _, it := range items {
		out = append(out, transport.ItemListElement{
			ID:     it.ID,
			Name:   it.Name,
			Price:  it.Price,
			Rating: it.Rating,
			InCart: quantities[it.ID],
		})
	}
	return total, out, nil
}

func (s *CatalogService) GetItem(ctx context.Context, userID *uuid.UUID, itemID uuid.UUID) (*transport.ItemDetails, error) {
	item, err := s.Repo.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("item %s: %w", itemID, apperr.ErrNotFound)
		}
		return nil, err
	}

	quantities, err := s.cartQuantities(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &transport.ItemDetails{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		Rating:      item.Rating,
		Amount:      item.Amount,
		Picture:     item.Picture,
		InCart:      quantities[item.ID],
	}, nil
}

func (s *CatalogService) CreateItem(ctx context.Context, req transport.CreateItemRequest) (*models.Item, error) {
	if req.Price < 0 {
		return nil, fmt.Errorf("price must not be negative: %w", apperr.ErrInvalidArgument)
	}
	if req.Amount < 0 {
		return nil, fmt.Errorf("amount must not be negative: %w", apperr.ErrInvalidArgument)
	}

	item := models.Item{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Rating:      req.Rating,
		Amount:      req.Amount,
		Picture:     req.Picture,
	}
	if err := s.Repo.CreateItem(ctx, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *CatalogService) PatchItem(ctx context.Context, req transport.PatchItemRequest, id uuid.UUID) (*models.Item, error) {
	if req.Price != nil && *req.Price < 0 {
		return nil, fmt.Errorf("price must not be negative: %w", apperr.ErrInvalidArgument)
	}

	item, err := s.Repo.PatchItem(ctx, req, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("item %s: %w", id, apperr.ErrNotFound)
	}
	return item, err
}

func (s *CatalogService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	err := s.Repo.DeleteItem(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("item %s: %w", id, apperr.ErrNotFound)
	}
	return err
}

func (s *CatalogService) cartQuantities(ctx context.Context, userID *uuid.UUID) (map[uuid.UUID]int, error) {
	if userID == nil {
		return nil, nil
	}
	lines, err := s.Repo.GetCartItems(ctx, *userID)
	if err != nil {
		return nil, err
	}
	quantities := make(map[uuid.UUID]int, len(lines))
	for _, l := range lines {
		quantities[l.ItemID] = l.Quantity
	}
	return quantities, nil
}
