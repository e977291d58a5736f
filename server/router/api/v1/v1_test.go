package v1

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v5"
	"github.com/stretchr/testify/require"

	"github.com/codeWithHak/sorted/plugin/agent"
	"github.com/codeWithHak/sorted/server/auth"
	"github.com/codeWithHak/sorted/server/profile"
	"github.com/codeWithHak/sorted/store"
	"github.com/codeWithHak/sorted/store/db/sqlite"
)

// scriptedModel pops one canned completion per Complete call.
type scriptedModel struct {
	steps []func(*agent.ChatRequest) (*agent.Completion, error)
	calls int
}

func (m *scriptedModel) Complete(_ context.Context, req *agent.ChatRequest) (*agent.Completion, error) {
	if m.calls >= len(m.steps) {
		return nil, fmt.Errorf("model called %d times, scripted for %d", m.calls+1, len(m.steps))
	}
	step := m.steps[m.calls]
	m.calls++
	return step(req)
}

func reply(content string) func(*agent.ChatRequest) (*agent.Completion, error) {
	return func(*agent.ChatRequest) (*agent.Completion, error) {
		return &agent.Completion{Content: content}, nil
	}
}

type testEnv struct {
	echo    *echo.Echo
	store   *store.Store
	profile *profile.Profile
	priv    ed25519.PrivateKey
}

func newTestEnv(t *testing.T, model agent.LanguageModel) *testEnv {
	t.Helper()
	driver, err := sqlite.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { driver.Close() })
	require.NoError(t, driver.Migrate(context.Background()))
	st := store.New(driver)

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	jwks := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"keys":[{"kty":"OKP","crv":"Ed25519","kid":"k1","x":%q}]}`,
			base64.RawURLEncoding.EncodeToString(pub))
	}))
	t.Cleanup(jwks.Close)

	prof := &profile.Profile{
		Mode:             "dev",
		Driver:           "sqlite",
		DSN:              ":memory:",
		JWKSURL:          jwks.URL,
		OpenRouterAPIKey: "test-key",
		AIModel:          "test-model",
	}

	e := echo.New()
	svc := NewAPIV1Service(st, prof, auth.New(jwks.URL), model)
	svc.Register(e)
	return &testEnv{echo: e, store: st, profile: prof, priv: priv}
}

func (env *testEnv) token(t *testing.T, sub string) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, jwt.MapClaims{
		"sub":   sub,
		"email": sub + "@example.com",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	})
	token.Header["kid"] = "k1"
	signed, err := token.SignedString(env.priv)
	require.NoError(t, err)
	return signed
}

func (env *testEnv) request(t *testing.T, method, path, token string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}
