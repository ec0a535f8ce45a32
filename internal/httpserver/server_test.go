package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/MadridBabajev/ShoppingCart/internal/models"
	"github.com/MadridBabajev/ShoppingCart/internal/repo"
	"github.com/MadridBabajev/ShoppingCart/internal/service/auth"
	"github.com/MadridBabajev/ShoppingCart/internal/service/cart"
	"github.com/MadridBabajev/ShoppingCart/internal/service/catalog"
	"github.com/MadridBabajev/ShoppingCart/internal/tokens"
	"github.com/MadridBabajev/ShoppingCart/internal/transport"
)

type testServer struct {
	e  *echo.Echo
	db *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Item{}, &models.CartItem{}, &models.RefreshToken{},
	))

	tm := &tokens.Manager{
		Secret:     []byte("test-jwt-secret"),
		Issuer:     "shop-test",
		Audience:   "shop-clients",
		DefaultTTL: time.Hour,
	}
	r := repo.New(db)

	e := echo.New()
	Register(e, &Deps{
		AuthHandler:    &AuthHTTP{Svc: auth.New(r, tm)},
		CartHandler:    &CartHTTP{Svc: cart.New(r)},
		CatalogHandler: &CatalogHTTP{Svc: catalog.New(r)},
		Tokens:         tm,
	})
	return &testServer{e: e, db: db}
}

func (s *testServer) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) registerUser(t *testing.T, email string) transport.TokenResponse {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/v1/register", "", transport.RegisterRequest{
		Email:           email,
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
		FirstName:       "Ada",
		LastName:        "Lovelace",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res transport.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func (s *testServer) createItem(t *testing.T, name string, price int) models.Item {
	t.Helper()

	item := models.Item{Name: name, Description: "test item", Price: price, Rating: 4.5, Amount: 10}
	require.NoError(t, s.db.Create(&item).Error)
	return item
}

func TestRegisterEndpoint(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	res := s.registerUser(t, "ada@example.com")
	assert.NotEmpty(t, res.JWT)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, 3600, res.ExpiresIn)

	// Same email again.
	rec := s.do(t, http.MethodPost, "/api/v1/register", "", transport.RegisterRequest{
		Email: "ada@example.com", Password: "x", ConfirmPassword: "x",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Mismatching confirmation.
	rec = s.do(t, http.MethodPost, "/api/v1/register", "", transport.RegisterRequest{
		Email: "eve@example.com", Password: "a", ConfirmPassword: "b",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	s.registerUser(t, "ada@example.com")

	rec := s.do(t, http.MethodPost, "/api/v1/login", "", transport.LoginRequest{
		Email: "ada@example.com", Password: "Secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var res transport.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEmpty(t, res.JWT)

	rec = s.do(t, http.MethodPost, "/api/v1/login", "", transport.LoginRequest{
		Email: "ada@example.com", Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/login", "", transport.LoginRequest{
		Email: "ghost@example.com", Password: "x",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefreshEndpoint(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	reg := s.registerUser(t, "ada@example.com")

	rec := s.do(t, http.MethodPost, "/api/v1/refresh", "", transport.RefreshRequest{
		JWT: reg.JWT, RefreshToken: reg.RefreshToken,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res transport.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEqual(t, reg.RefreshToken, res.RefreshToken)

	rec = s.do(t, http.MethodPost, "/api/v1/refresh", "", transport.RefreshRequest{
		JWT: "garbage", RefreshToken: reg.RefreshToken,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/refresh", "", transport.RefreshRequest{
		JWT: reg.JWT, RefreshToken: uuid.NewString(),
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutEndpoint(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	reg := s.registerUser(t, "ada@example.com")

	// No bearer token.
	rec := s.do(t, http.MethodPost, "/api/v1/logout", "", transport.LogoutRequest{RefreshToken: reg.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/logout", reg.JWT, transport.LogoutRequest{RefreshToken: reg.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code)

	var res transport.LogoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1, res.TokenDeleteCount)

	// Already gone: count drops to zero, still 200.
	rec = s.do(t, http.MethodPost, "/api/v1/logout", reg.JWT, transport.LogoutRequest{RefreshToken: reg.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Zero(t, res.TokenDeleteCount)
}

func TestCartEndpoints(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	reg := s.registerUser(t, "ada@example.com")
	item := s.createItem(t, "keyboard", 120)

	// Increment twice.
	for range 2 {
		rec := s.do(t, http.MethodPut, "/api/v1/cart", reg.JWT, transport.CartActionRequest{
			ItemID: item.ID, Action: "increment",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	var line transport.CartLine
	rec := s.do(t, http.MethodGet, "/api/v1/cart/"+item.ID.String(), reg.JWT, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &line))
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, "keyboard", line.Name)

	// Full cart listing joins the item snapshot.
	rec = s.do(t, http.MethodGet, "/api/v1/cart", reg.JWT, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var lines []transport.CartLine
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lines))
	require.Len(t, lines, 1)
	assert.Equal(t, "keyboard", lines[0].Name)
	assert.Equal(t, 120, lines[0].Price)
	assert.Equal(t, 2, lines[0].Quantity)

	// set_amount overwrites.
	q := 5
	rec = s.do(t, http.MethodPut, "/api/v1/cart", reg.JWT, transport.CartActionRequest{
		ItemID: item.ID, Action: "set_amount", Quantity: &q,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var row models.CartItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &row))
	assert.Equal(t, 5, row.Quantity)

	// set_amount zero removes the line.
	zero := 0
	rec = s.do(t, http.MethodPut, "/api/v1/cart", reg.JWT, transport.CartActionRequest{
		ItemID: item.ID, Action: "set_amount", Quantity: &zero,
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/cart/"+item.ID.String(), reg.JWT, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCartEndpoints_BadInput(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	reg := s.registerUser(t, "ada@example.com")
	item := s.createItem(t, "mouse", 30)

	// Unknown action verb.
	rec := s.do(t, http.MethodPut, "/api/v1/cart", reg.JWT, transport.CartActionRequest{
		ItemID: item.ID, Action: "obliterate",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// set_amount without a quantity.
	rec = s.do(t, http.MethodPut, "/api/v1/cart", reg.JWT, transport.CartActionRequest{
		ItemID: item.ID, Action: "set_amount",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Negative quantity.
	neg := -1
	rec = s.do(t, http.MethodPut, "/api/v1/cart", reg.JWT, transport.CartActionRequest{
		ItemID: item.ID, Action: "set_amount", Quantity: &neg,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Missing item id.
	rec = s.do(t, http.MethodPut, "/api/v1/cart", reg.JWT, transport.CartActionRequest{
		Action: "increment",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// No bearer token at all.
	rec = s.do(t, http.MethodPut, "/api/v1/cart", "", transport.CartActionRequest{
		ItemID: item.ID, Action: "increment",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClearCartEndpoint(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	reg := s.registerUser(t, "ada@example.com")
	first := s.createItem(t, "keyboard", 120)
	second := s.createItem(t, "mouse", 30)

	for _, id := range []uuid.UUID{first.ID, second.ID} {
		rec := s.do(t, http.MethodPut, "/api/v1/cart", reg.JWT, transport.CartActionRequest{
			ItemID: id, Action: "increment",
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := s.do(t, http.MethodDelete, "/api/v1/cart", reg.JWT, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/cart", reg.JWT, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var lines []transport.CartLine
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lines))
	assert.Empty(t, lines)
}

func TestItemsEndpoints(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	reg := s.registerUser(t, "ada@example.com")
	item := s.createItem(t, "keyboard", 120)
	s.createItem(t, "mouse", 30)

	rec := s.do(t, http.MethodPut, "/api/v1/cart", reg.JWT, transport.CartActionRequest{
		ItemID: item.ID, Action: "increment",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Anonymous listing: no cart annotation.
	rec = s.do(t, http.MethodGet, "/api/v1/items", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Data []transport.ItemListElement `json:"data"`
		Meta transport.ListMeta          `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Data, 2)
	assert.EqualValues(t, 2, page.Meta.Total)
	for _, el := range page.Data {
		assert.Zero(t, el.InCart)
	}

	// Authenticated listing annotates the carted item.
	rec = s.do(t, http.MethodGet, "/api/v1/items", reg.JWT, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))

	carted := 0
	for _, el := range page.Data {
		if el.ID == item.ID {
			carted = el.InCart
		}
	}
	assert.Equal(t, 1, carted)

	// Item details.
	rec = s.do(t, http.MethodGet, "/api/v1/items/"+item.ID.String(), reg.JWT, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var details transport.ItemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
	assert.Equal(t, "keyboard", details.Name)
	assert.Equal(t, 1, details.InCart)

	rec = s.do(t, http.MethodGet, "/api/v1/items/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestItemsPagination(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	for i := range 25 {
		s.createItem(t, fmt.Sprintf("item-%02d", i), 10+i)
	}

	rec := s.do(t, http.MethodGet, "/api/v1/items?page=3&size=10", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Data []transport.ItemListElement `json:"data"`
		Meta transport.ListMeta          `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Data, 5)
	assert.EqualValues(t, 25, page.Meta.Total)
	assert.EqualValues(t, 3, page.Meta.TotalPages)
}

func TestAdminItemEndpoints(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	reg := s.registerUser(t, "ada@example.com")

	// Creation needs auth.
	rec := s.do(t, http.MethodPost, "/api/v1/items", "", transport.CreateItemRequest{Name: "lamp", Price: 45})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/items", reg.JWT, transport.CreateItemRequest{
		Name: "lamp", Description: "desk lamp", Price: 45, Rating: 4, Amount: 3,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEqual(t, uuid.Nil, created.ID)

	// Patch a single field.
	price := 60
	rec = s.do(t, http.MethodPatch, "/api/v1/items/"+created.ID.String(), reg.JWT, transport.PatchItemRequest{Price: &price})
	require.Equal(t, http.StatusOK, rec.Code)
	var patched models.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &patched))
	assert.Equal(t, 60, patched.Price)
	assert.Equal(t, "lamp", patched.Name)

	// Negative price is rejected.
	bad := -1
	rec = s.do(t, http.MethodPatch, "/api/v1/items/"+created.ID.String(), reg.JWT, transport.PatchItemRequest{Price: &bad})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/items/"+created.ID.String(), reg.JWT, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/items/"+created.ID.String(), reg.JWT, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health/live", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health/ready", "", nil).Code)
}
