package jwt

import (
	"errors"
	"fmt"
	"time"

	"finflow/internal/models"

	jwtgo "github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
)

type Claims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwtgo.RegisteredClaims
}

// NewToken issues a signed bearer token for the user. The expiry is the
// only revocation mechanism: there is no server-side blacklist.
func NewToken(user models.User, secret string, ttl time.Duration) (string, error) {
	const op = "lib.jwt.NewToken"

	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwtgo.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwtgo.NewNumericDate(time.Now()),
			ExpiresAt: jwtgo.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	token := jwtgo.NewWithClaims(jwtgo.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// ParseToken checks the signature and expiry and returns the embedded
// claims. Expiry is reported as ErrTokenExpired so callers can prompt
// re-login; every other defect collapses to ErrTokenInvalid.
func ParseToken(tokenStr, secret string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwtgo.ParseWithClaims(tokenStr, claims, func(t *jwtgo.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtgo.SigningMethodHMAC); !ok {
			return nil, jwtgo.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwtgo.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
