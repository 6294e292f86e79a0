package identity

import (
	"time"

	apperrors "github.com/artemk/movebid/internal/errors"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carried in access tokens. Tokens are issued by the external
// identity service; this package only needs to verify and read them. Issue
// exists for the seed script and tests.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Signer struct {
	secret []byte
	ttl    time.Duration
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl}
}

func (s *Signer) Issue(userID, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Signer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrUnauthorized
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.Unauthorized("invalid token")
	}
	if claims.Subject == "" {
		return nil, apperrors.Unauthorized("token has no subject")
	}
	return claims, nil
}
