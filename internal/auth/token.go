package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Claims mirrors what the identity service puts into its bearer tokens.
type Claims struct {
	UserID string `json:"user_id"`
	Admin  bool   `json:"admin"`
	jwt.RegisteredClaims
}

// ParseToken validates a signed bearer token and returns the principal it
// carries. Expired, malformed or badly signed tokens all come back as
// ErrUnauthenticated.
func ParseToken(secret []byte, tokenString string) (domain.Principal, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return secret, nil
		},
	)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return domain.Principal{}, errors.Join(ErrUnauthenticated, errors.New("invalid token claims"))
	}

	return domain.Principal{UserID: claims.UserID, Admin: claims.Admin}, nil
}

// SignToken issues a token for the given principal. Token issuance belongs
// to the identity service; this exists for tests and local setups.
func SignToken(secret []byte, p domain.Principal, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID: p.UserID,
		Admin:  p.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
