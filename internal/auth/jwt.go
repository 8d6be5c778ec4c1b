package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/skynetfrank/user-service/internal/entity"
)

// DefaultTTL is the fixed validity window for issued tokens. There is no
// revocation mechanism; expiry is the only invalidation.
const DefaultTTL = 365 * 24 * time.Hour

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims is the minimal identity claim set embedded in every token.
type Claims struct {
	UID     string `json:"uid"`
	Name    string `json:"nombre"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// JWTer signs and verifies bearer tokens with a process-wide secret. TTL
// defaults to DefaultTTL when zero.
type JWTer struct {
	Secret []byte
	TTL    time.Duration
}

// Issue mints a token carrying the user's identity claims.
func (j *JWTer) Issue(u *entity.User) (string, error) {
	ttl := j.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	claims := Claims{
		UID:     u.ID.Hex(),
		Name:    u.FirstName,
		Email:   u.Email,
		IsAdmin: u.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// Parse verifies a token and returns its claims. Expiry and every other
// failure mode are distinguishable: ErrTokenExpired for a well-signed token
// past its window, ErrTokenInvalid for anything else (bad signature,
// malformed structure, wrong algorithm).
func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, ErrTokenInvalid
		}
		return j.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid {
		return c, nil
	}
	return nil, ErrTokenInvalid
}
