// Package auth verifies bearer tokens issued by the external auth provider.
// Tokens are EdDSA (Ed25519) JWTs verified against the provider's JWKS
// endpoint.
package auth

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// keyCacheTTL is how long a fetched JWK set stays valid.
const keyCacheTTL = 5 * time.Minute

// Claims is the verified identity carried by a token.
type Claims struct {
	Sub   string
	Email string
}

// Authenticator verifies tokens against a JWKS endpoint, caching the key set.
// It replaces ambient global key-client state with an explicitly constructed
// service object.
type Authenticator struct {
	jwksURL string
	client  *http.Client
	group   singleflight.Group

	mu        sync.RWMutex
	keys      map[string]ed25519.PublicKey
	fetchedAt time.Time
}

// New creates an Authenticator for the given JWKS endpoint.
func New(jwksURL string) *Authenticator {
	return &Authenticator{
		jwksURL: jwksURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify checks the token signature and required claims, returning the
// identity it carries.
func (a *Authenticator) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString,
		func(token *jwt.Token) (any, error) {
			kid, _ := token.Header["kid"].(string)
			return a.signingKey(ctx, kid)
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "parse token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" || email == "" {
		return nil, errors.New("token missing sub or email claim")
	}
	if _, ok := claims["iat"]; !ok {
		return nil, errors.New("token missing iat claim")
	}
	return &Claims{Sub: sub, Email: email}, nil
}

// signingKey returns the cached public key for kid, refreshing the JWK set
// when the cache is stale or the kid is unknown. Concurrent refreshes for the
// same endpoint collapse into one fetch.
func (a *Authenticator) signingKey(ctx context.Context, kid string) (ed25519.PublicKey, error) {
	a.mu.RLock()
	key, ok := a.keys[kid]
	fresh := time.Since(a.fetchedAt) < keyCacheTTL
	a.mu.RUnlock()
	if ok && fresh {
		return key, nil
	}

	if _, err, _ := a.group.Do("jwks", func() (any, error) {
		return nil, a.refresh(ctx)
	}); err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	key, ok = a.keys[kid]
	if !ok {
		// Single-key providers may omit kid from the token header.
		if kid == "" && len(a.keys) == 1 {
			for _, k := range a.keys {
				return k, nil
			}
		}
		return nil, errors.Errorf("no signing key for kid %q", kid)
	}
	return key, nil
}

func (a *Authenticator) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.jwksURL, nil)
	if err != nil {
		return errors.Wrap(err, "build jwks request")
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "fetch jwks")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return errors.Errorf("jwks endpoint status %d", resp.StatusCode)
	}

	var set struct {
		Keys []struct {
			Kty string `json:"kty"`
			Crv string `json:"crv"`
			Kid string `json:"kid"`
			X   string `json:"x"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return errors.Wrap(err, "decode jwks")
	}

	keys := make(map[string]ed25519.PublicKey)
	for _, k := range set.Keys {
		if k.Kty != "OKP" || k.Crv != "Ed25519" {
			continue
		}
		raw, err := base64.RawURLEncoding.DecodeString(k.X)
		if err != nil || len(raw) != ed25519.PublicKeySize {
			continue
		}
		keys[k.Kid] = ed25519.PublicKey(raw)
	}
	if len(keys) == 0 {
		return errors.New("jwks contains no usable Ed25519 keys")
	}

	a.mu.Lock()
	a.keys = keys
	a.fetchedAt = time.Now()
	a.mu.Unlock()
	return nil
}
