// Package auth issues JWT + refresh-token pairs and rotates refresh tokens
// with a short grace window for the superseded value.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MadridBabajev/ShoppingCart/internal/apperr"
	"github.com/MadridBabajev/ShoppingCart/internal/hash"
	"github.com/MadridBabajev/ShoppingCart/internal/logging"
	"github.com/MadridBabajev/ShoppingCart/internal/models"
	"github.com/MadridBabajev/ShoppingCart/internal/repo"
	"github.com/MadridBabajev/ShoppingCart/internal/tokens"
	"github.com/MadridBabajev/ShoppingCart/internal/transport"
)

const (
	// refreshTokenTTL is how long a freshly issued refresh token lives.
	refreshTokenTTL = 14 * 24 * time.Hour
	// graceTTL is how long the superseded token stays valid after rotation,
	// so one in-flight request racing the refresh still succeeds.
	graceTTL = time.Minute
)

type AuthService struct {
	Repo   *repo.GormRepo
	Tokens *tokens.Manager
}

func New(r *repo.GormRepo, tm *tokens.Manager) *AuthService {
	return &AuthService{Repo: r, Tokens: tm}
}

// Register creates the user together with its initial refresh token and
// returns a signed token pair. expiresInSeconds overrides the default
// access-token TTL when positive.
func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest, expiresInSeconds int) (*transport.TokenResponse, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if req.Password != req.ConfirmPassword {
		return nil, fmt.Errorf("password and confirmation do not match: %w", apperr.ErrInvalidArgument)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: pwHash,
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExists) {
			l.Warn("register_conflict", "email", req.Email)
			return nil, fmt.Errorf("email %s is already registered: %w", req.Email, apperr.ErrConflict)
		}
		return nil, err
	}

	rt := models.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.Repo.CreateRefreshToken(ctx, &rt); err != nil {
		return nil, err
	}

	l.Info("user_registered", "user_id", user.ID)
	return s.tokenResponse(&user, rt.Token, expiresInSeconds)
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest, expiresInSeconds int) (*transport.TokenResponse, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_failed", "reason", "unknown email")
			return nil, fmt.Errorf("no user with email %s: %w", req.Email, apperr.ErrNotFound)
		}
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		l.Warn("login_failed", "reason", "bad credentials", "user_id", user.ID)
		return nil, fmt.Errorf("user/password problem: %w", apperr.ErrUnauthorized)
	}

	// Lazy GC of rows with both expirations in the past. Best effort.
	if err := s.Repo.PurgeExpiredRefreshTokens(ctx, user.ID, time.Now()); err != nil {
		l.Warn("refresh_token_gc_failed", "error", err)
	}

	rt := models.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.Repo.CreateRefreshToken(ctx, &rt); err != nil {
		return nil, err
	}

	l.Info("user_logged_in", "user_id", user.ID)
	return s.tokenResponse(user, rt.Token, expiresInSeconds)
}

// Refresh exchanges an access token plus a refresh token for a fresh pair.
// The access token's signature is checked but its expiry is not. A current
// match rotates the stored token, keeping the old value alive for graceTTL;
// a previous match consumes the grace slot so exactly one stale call wins.
func (s *AuthService) Refresh(ctx context.Context, jwtStr, presented string, expiresInSeconds int) (*transport.TokenResponse, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := s.Tokens.ParseExpired(jwtStr)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, fmt.Errorf("jwt signature validation failed: %w", apperr.ErrUnauthorized)
		}
		return nil, fmt.Errorf("cannot parse the token: %w", apperr.ErrInvalidArgument)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("no email claim in jwt: %w", apperr.ErrInvalidArgument)
	}

	user, err := s.Repo.GetUserByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with email %s: %w", claims.Email, apperr.ErrNotFound)
		}
		return nil, err
	}

	now := time.Now()
	rows, err := s.Repo.ValidRefreshTokens(ctx, user.ID, presented, now)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		l.Warn("refresh_rejected", "user_id", user.ID)
		return nil, fmt.Errorf("no valid refresh tokens: %w", apperr.ErrUnauthorized)
	}

	rt := rows[0]
	if rt.Token == presented {
		prev := rt.Token
		prevExp := now.Add(graceTTL)
		rt.PreviousToken = &prev
		rt.PreviousExpiresAt = &prevExp
		rt.Token = uuid.NewString()
		rt.ExpiresAt = now.Add(refreshTokenTTL)
		if err := s.Repo.SaveRefreshToken(ctx, &rt); err != nil {
			return nil, err
		}
		l.Info("refresh_token_rotated", "user_id", user.ID)
	} else {
		// Grace-window hit: hand back the already-rotated current token and
		// close the window.
		rt.PreviousToken = nil
		rt.PreviousExpiresAt = nil
		if err := s.Repo.SaveRefreshToken(ctx, &rt); err != nil {
			return nil, err
		}
		l.Info("refresh_grace_window_used", "user_id", user.ID)
	}

	return s.tokenResponse(user, rt.Token, expiresInSeconds)
}

// Logout deletes every refresh-token row matching the given value in either
// slot. Zero matches is not an error.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID, refreshToken string) (int64, error) {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	if _, err := s.Repo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
		}
		return 0, err
	}

	deleted, err := s.Repo.DeleteRefreshTokens(ctx, userID, refreshToken)
	if err != nil {
		return 0, err
	}
	l.Info("user_logged_out", "user_id", userID, "tokens_deleted", deleted)
	return deleted, nil
}

func (s *AuthService) tokenResponse(user *models.User, refreshToken string, expiresInSeconds int) (*transport.TokenResponse, error) {
	ttl := s.Tokens.TTL(expiresInSeconds)
	signed, err := s.Tokens.Sign(user, ttl)
	if err != nil {
		return nil, err
	}
	return &transport.TokenResponse{
		JWT:          signed,
		RefreshToken: refreshToken,
		ExpiresIn:    int(ttl.Seconds()),
	}, nil
}
