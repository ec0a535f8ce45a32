package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"primaryKey"       json:"id"`
	Email        string    `gorm:"unique;not null"  json:"email"`
	FirstName    string    `gorm:"not null"         json:"first_name"`
	LastName     string    `gorm:"not null"         json:"last_name"`
	PasswordHash string    `gorm:"not null"         json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type Item struct {
	ID          uuid.UUID `gorm:"primaryKey"                json:"id"`
	Name        string    `gorm:"size:32;not null"          json:"name"`
	Description string    `gorm:"size:256"                  json:"description"`
	Price       int       `gorm:"not null;check:price>=0"   json:"price"`
	Rating      float64   `gorm:"not null;default:5"        json:"rating"`
	Amount      int       `gorm:"not null;check:amount>=0"  json:"amount"`
	Picture     []byte    `json:"picture,omitempty"`
}

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// CartItem is one cart line. A row with quantity 0 never persists: the row
// is deleted instead.
type CartItem struct {
	ID       uuid.UUID `gorm:"primaryKey"                                 json:"id"`
	UserID   uuid.UUID `gorm:"uniqueIndex:idx_user_item;not null"         json:"user_id"`
	ItemID   uuid.UUID `gorm:"uniqueIndex:idx_user_item;not null"         json:"item_id"`
	Quantity int       `gorm:"default:1;check:quantity>0"                 json:"quantity"`
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (CartItem) TableName() string {
	return "cart_items"
}

// RefreshToken keeps the current opaque token plus the just-superseded one,
// which stays valid for a short grace window after rotation.
type RefreshToken struct {
	ID                uuid.UUID  `gorm:"primaryKey"       json:"id"`
	UserID            uuid.UUID  `gorm:"index;not null"   json:"user_id"`
	Token             string     `gorm:"size:64;not null" json:"token"`
	ExpiresAt         time.Time  `gorm:"not null"         json:"expires_at"`
	PreviousToken     *string    `gorm:"size:64"          json:"previous_token,omitempty"`
	PreviousExpiresAt *time.Time `json:"previous_expires_at,omitempty"`
}

func (r *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
