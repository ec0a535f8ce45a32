package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MadridBabajev/ShoppingCart/internal/models"
)

// Cart mutations are single UPDATE/DELETE statements checked via
// RowsAffected, so two concurrent calls for the same (user, item) never
// lose an update.

func (r *GormRepo) IncrementCartItem(ctx context.Context, userID, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND item_id = ?", userID, itemID).
			Update("quantity", gorm.Expr("quantity + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.Where("user_id = ? AND item_id = ?", userID, itemID).First(&item).Error
		}

		item = models.CartItem{UserID: userID, ItemID: itemID, Quantity: 1}
		return tx.Create(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DecrementCartItem lowers the quantity by one, deleting the row when it
// reaches zero. A missing row is not an error.
func (r *GormRepo) DecrementCartItem(ctx context.Context, userID, itemID uuid.UUID) (*models.CartItem, bool, error) {
	var item models.CartItem
	deleted := false
	found := false

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND item_id = ? AND quantity > 1", userID, itemID).
			Update("quantity", gorm.Expr("quantity - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			found = true
			return tx.Where("user_id = ? AND item_id = ?", userID, itemID).First(&item).Error
		}

		del := tx.Where("user_id = ? AND item_id = ?", userID, itemID).Delete(&models.CartItem{})
		if del.Error != nil {
			return del.Error
		}
		deleted = del.RowsAffected > 0
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, deleted, nil
	}
	return &item, false, nil
}

// SetCartItemQuantity overwrites the quantity, creating the row when absent.
// Callers guarantee quantity > 0; quantity 0 goes through DeleteCartItem.
func (r *GormRepo) SetCartItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND item_id = ?", userID, itemID).
			Update("quantity", quantity)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.Where("user_id = ? AND item_id = ?", userID, itemID).First(&item).Error
		}

		item = models.CartItem{UserID: userID, ItemID: itemID, Quantity: quantity}
		return tx.Create(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepo) ClearCart(ctx context.Context, userID uuid.UUID) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}

func (r *GormRepo) GetCartItems(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetCartItem returns nil without an error when the line is absent.
func (r *GormRepo) GetCartItem(ctx context.Context, userID, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}
