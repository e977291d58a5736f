package auth

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testIssuer struct {
	priv   ed25519.PrivateKey
	kid    string
	server *httptest.Server
	hits   int
}

func newTestIssuer(t *testing.T) *testIssuer {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	issuer := &testIssuer{priv: priv, kid: "key-1"}
	issuer.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		issuer.hits++
		fmt.Fprintf(w, `{"keys":[{"kty":"OKP","crv":"Ed25519","kid":%q,"x":%q}]}`,
			issuer.kid, base64.RawURLEncoding.EncodeToString(pub))
	}))
	t.Cleanup(issuer.server.Close)
	return issuer
}

func (i *testIssuer) sign(t *testing.T, claims jwt.MapClaims, kid string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}
	signed, err := token.SignedString(i.priv)
	require.NoError(t, err)
	return signed
}

func validClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub":   "user-123",
		"email": "user@example.com",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	issuer := newTestIssuer(t)
	a := New(issuer.server.URL)

	t.Run("valid token", func(t *testing.T) {
		claims, err := a.Verify(ctx, issuer.sign(t, validClaims(), issuer.kid))
		require.NoError(t, err)
		assert.Equal(t, "user-123", claims.Sub)
		assert.Equal(t, "user@example.com", claims.Email)
	})

	t.Run("key set is cached", func(t *testing.T) {
		before := issuer.hits
		_, err := a.Verify(ctx, issuer.sign(t, validClaims(), issuer.kid))
		require.NoError(t, err)
		assert.Equal(t, before, issuer.hits)
	})

	t.Run("missing kid falls back to the only key", func(t *testing.T) {
		_, err := a.Verify(ctx, issuer.sign(t, validClaims(), ""))
		assert.NoError(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := validClaims()
		claims["exp"] = time.Now().Add(-time.Hour).Unix()
		_, err := a.Verify(ctx, issuer.sign(t, claims, issuer.kid))
		assert.Error(t, err)
	})

	t.Run("token without exp", func(t *testing.T) {
		claims := validClaims()
		delete(claims, "exp")
		_, err := a.Verify(ctx, issuer.sign(t, claims, issuer.kid))
		assert.Error(t, err)
	})

	t.Run("missing email claim", func(t *testing.T) {
		claims := validClaims()
		delete(claims, "email")
		_, err := a.Verify(ctx, issuer.sign(t, claims, issuer.kid))
		assert.Error(t, err)
	})

	t.Run("missing iat claim", func(t *testing.T) {
		claims := validClaims()
		delete(claims, "iat")
		_, err := a.Verify(ctx, issuer.sign(t, claims, issuer.kid))
		assert.Error(t, err)
	})

	t.Run("rejects non-EdDSA algorithms", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims())
		signed, err := token.SignedString([]byte("shared secret"))
		require.NoError(t, err)
		_, err = a.Verify(ctx, signed)
		assert.Error(t, err)
	})

	t.Run("token signed by another key", func(t *testing.T) {
		rogue := newTestIssuer(t)
		rogue.kid = issuer.kid
		_, err := a.Verify(ctx, rogue.sign(t, validClaims(), rogue.kid))
		assert.Error(t, err)
	})
}

func TestVerifyEndpointDown(t *testing.T) {
	issuer := newTestIssuer(t)
	token := issuer.sign(t, validClaims(), issuer.kid)
	issuer.server.Close()

	a := New(issuer.server.URL)
	_, err := a.Verify(context.Background(), token)
	assert.Error(t, err)
}
