package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestSignAndParse(t *testing.T) {
	raw, err := Sign(Claims{ID: 7, Name: "Jane Wanjiku", Role: "counsellor"}, secret)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := Parse(raw, secret)
	require.NoError(t, err)
	require.Equal(t, uint(7), claims.ID)
	require.Equal(t, "Jane Wanjiku", claims.Name)
	require.Equal(t, "counsellor", claims.Role)

	ttl := time.Until(claims.ExpiresAt.Time)
	require.Greater(t, ttl, 7*time.Hour)
	require.LessOrEqual(t, ttl, 8*time.Hour)
}

func TestParseWrongSecret(t *testing.T) {
	raw, err := Sign(Claims{Name: "Super Admin", Role: "admin"}, secret)
	require.NoError(t, err)

	_, err = Parse(raw, []byte("other-secret"))
	require.Error(t, err)
}

func TestParseExpired(t *testing.T) {
	expired := Claims{Name: "x", Role: "student"}
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expired).SignedString(secret)
	require.NoError(t, err)

	_, err = Parse(raw, secret)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseRejectsNonHMAC(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: "admin"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = Parse(raw, secret)
	require.Error(t, err)
}
