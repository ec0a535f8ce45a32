// Package tokens signs and parses the HS256 access tokens carrying
// the user's identity claims.
package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MadridBabajev/ShoppingCart/internal/models"
)

type AccessClaims struct {
	Email     string `json:"email"`
	GivenName string `json:"given_name"`
	Surname   string `json:"family_name"`
	jwt.RegisteredClaims
}

type Manager struct {
	Secret     []byte
	Issuer     string
	Audience   string
	DefaultTTL time.Duration
}

// TTL clamps a caller-supplied expiration override to the configured default.
// Non-positive overrides mean "use the default".
func (m *Manager) TTL(overrideSeconds int) time.Duration {
	override := time.Duration(overrideSeconds) * time.Second
	if override <= 0 || override > m.DefaultTTL {
		return m.DefaultTTL
	}
	return override
}

func (m *Manager) Sign(user *models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Email:     user.Email,
		GivenName: user.FirstName,
		Surname:   user.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    m.Issuer,
			Audience:  jwt.ClaimStrings{m.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.Secret)
}

// Parse fully validates the token: signature, expiry, issuer and audience.
func (m *Manager) Parse(tokenStr string) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, m.keyFunc,
		jwt.WithIssuer(m.Issuer),
		jwt.WithAudience(m.Audience),
	)
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return &claims, nil
}

// ParseExpired validates the signature but not the registered claims. Used
// during refresh, where an expired access token is the normal case.
func (m *Manager) ParseExpired(tokenStr string) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, m.keyFunc,
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return &claims, nil
}

func (m *Manager) keyFunc(t *jwt.Token) (any, error) {
	if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, errors.New("unexpected sign method")
	}
	return m.Secret, nil
}
