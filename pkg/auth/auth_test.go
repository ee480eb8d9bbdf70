package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glbrc/seqsync/pkg/syncerr"
	"github.com/labstack/echo/v4"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIssuer struct {
	key      *rsa.PrivateKey
	kid      string
	audience string
	noToken  bool
	noKeys   bool
}

func newFakeIssuer(t *testing.T) *fakeIssuer {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return &fakeIssuer{key: key, kid: "key-1", audience: "client-1"}
}

func (f *fakeIssuer) sign(t *testing.T, kid string) string {
	key, err := jwk.FromRaw(f.key)
	require.NoError(t, err)
	require.NoError(t, key.Set(jwk.KeyIDKey, kid))

	token := jwt.New()
	require.NoError(t, token.Set(jwt.AudienceKey, f.audience))
	require.NoError(t, token.Set(jwt.ExpirationKey, time.Now().Add(time.Hour)))
	require.NoError(t, token.Set("upn", "sync@glbrc.org"))

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.RS256, key))
	require.NoError(t, err)
	return string(signed)
}

func (f *fakeIssuer) keySet(t *testing.T) jwk.Set {
	key, err := jwk.FromRaw(&f.key.PublicKey)
	require.NoError(t, err)
	require.NoError(t, key.Set(jwk.KeyIDKey, "key-1"))
	require.NoError(t, key.Set(jwk.AlgorithmKey, jwa.RS256))

	set := jwk.NewSet()
	require.NoError(t, set.AddKey(key))
	return set
}

func (f *fakeIssuer) start(t *testing.T) *Authenticator {
	e := echo.New()
	e.POST("/token", func(c echo.Context) error {
		user, pw, ok := c.Request().BasicAuth()
		if !ok || user != "client-1" || pw != "secret" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid_client"})
		}
		if c.FormValue("grant_type") != "password" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
		}
		if f.noToken {
			return c.JSON(http.StatusOK, map[string]string{"access_token": "a"})
		}
		return c.JSON(http.StatusOK, map[string]string{"id_token": f.sign(t, f.kid)})
	})
	set := f.keySet(t)
	e.GET("/keys", func(c echo.Context) error {
		if f.noKeys {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.JSON(http.StatusOK, set)
	})

	server := httptest.NewServer(e)
	t.Cleanup(server.Close)
	return NewAuthenticator(server.URL+"/token", server.URL+"/keys", 2*time.Second)
}

var creds = Credentials{Username: "sync", Password: "pw", ClientID: "client-1", ClientSecret: "secret"}

func TestAuthenticator_Token(t *testing.T) {
	issuer := newFakeIssuer(t)
	a := issuer.start(t)

	token, err := a.Token(context.Background(), creds)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	verified, err := verify(token, issuer.keySet(t), "client-1")
	require.NoError(t, err)
	upn, ok := verified.Get("upn")
	assert.True(t, ok)
	assert.Equal(t, "sync@glbrc.org", upn)
}

func TestVerify_Rejects(t *testing.T) {
	issuer := newFakeIssuer(t)
	keys := issuer.keySet(t)

	_, err := verify("not-a-token", keys, "client-1")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = verify(issuer.sign(t, "key-2"), keys, "client-1")
	assert.ErrorIs(t, err, ErrUnknownKey)

	_, err = verify(issuer.sign(t, "key-1"), keys, "client-2")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticator_Failures(t *testing.T) {
	tests := []struct {
		name   string
		modify func(f *fakeIssuer)
		creds  Credentials
	}{
		{name: "bad client secret", modify: func(f *fakeIssuer) {}, creds: Credentials{ClientID: "client-1", ClientSecret: "nope"}},
		{name: "no id_token", modify: func(f *fakeIssuer) { f.noToken = true }, creds: creds},
		{name: "wrong audience", modify: func(f *fakeIssuer) { f.audience = "someone-else" }, creds: creds},
		{name: "unknown kid", modify: func(f *fakeIssuer) { f.kid = "key-2" }, creds: creds},
		{name: "keys unavailable", modify: func(f *fakeIssuer) { f.noKeys = true }, creds: creds},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			issuer := newFakeIssuer(t)
			test.modify(issuer)
			a := issuer.start(t)

			token, err := a.Token(context.Background(), test.creds)
			require.Error(t, err)
			assert.Empty(t, token)
			assert.True(t, syncerr.IsFatal(err))
		})
	}
}
