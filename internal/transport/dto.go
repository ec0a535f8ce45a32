package transport

import "github.com/google/uuid"

type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	JWT          string `json:"jwt"`
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	JWT          string `json:"jwt"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type LogoutResponse struct {
	TokenDeleteCount int `json:"token_delete_count"`
}

type CartActionRequest struct {
	ItemID   uuid.UUID `json:"item_id"`
	Action   string    `json:"action"`
	Quantity *int      `json:"quantity,omitempty"`
}

// CartLine is a cart row joined with its item snapshot.
type CartLine struct {
	ItemID   uuid.UUID `json:"item_id"`
	Name     string    `json:"name"`
	Price    int       `json:"price"`
	Rating   float64   `json:"rating"`
	Quantity int       `json:"quantity"`
}

type ItemListElement struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Price  int       `json:"price"`
	Rating float64   `json:"rating"`
	InCart int       `json:"in_cart"`
}

type ItemDetails struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int       `json:"price"`
	Rating      float64   `json:"rating"`
	Amount      int       `json:"amount"`
	Picture     []byte    `json:"picture,omitempty"`
	InCart      int       `json:"in_cart"`
}

type CreateItemRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       int     `json:"price"`
	Rating      float64 `json:"rating"`
	Amount      int     `json:"amount"`
	Picture     []byte  `json:"picture,omitempty"`
}

type PatchItemRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *int     `json:"price,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	Amount      *int     `json:"amount,omitempty"`
}

type ListMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}
