package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is how long a minted token stays valid. Tokens are stateless:
// there is no revocation short of rotating the secret.
const SessionTTL = 8 * time.Hour

type Claims struct {
	ID     uint   `json:"id,omitempty"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	School string `json:"school,omitempty"`
	jwt.RegisteredClaims
}

func Sign(claims Claims, secret []byte) (string, error) {
	now := time.Now().UTC()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func Parse(raw string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
