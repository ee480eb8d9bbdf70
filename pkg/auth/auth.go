// Package auth obtains the id_token the data catalog accepts. Tokens come from
// an OAuth2 password grant and are verified against the issuer's published
// signing keys before use.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/glbrc/seqsync/pkg/syncerr"
	"github.com/go-resty/resty/v2"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	DefaultTokenURL = "https://login.glbrc.org/adfs/oauth2/token"
	DefaultKeysURL  = "https://login.glbrc.org/adfs/discovery/keys"
)

var (
	ErrNoIDToken    = errors.New("no id_token returned")
	ErrInvalidToken = errors.New("id_token is invalid")
	ErrUnknownKey   = errors.New("id_token signed with an unknown key")
)

type Credentials struct {
	Username     string
	Password     string
	ClientID     string
	ClientSecret string
}

type Authenticator struct {
	r        *resty.Client
	tokenURL string
	keysURL  string
}

func NewAuthenticator(tokenURL, keysURL string, timeout time.Duration) *Authenticator {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	if keysURL == "" {
		keysURL = DefaultKeysURL
	}

	return &Authenticator{
		r:        resty.New().SetTimeout(timeout),
		tokenURL: tokenURL,
		keysURL:  keysURL,
	}
}

type tokenResponse struct {
	IDToken     string `json:"id_token"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Token returns a verified id_token for creds. Every failure is fatal since no
// catalog call can succeed without it.
func (a *Authenticator) Token(ctx context.Context, creds Credentials) (string, error) {
	var token tokenResponse
	resp, err := a.r.R().
		SetContext(ctx).
		SetBasicAuth(creds.ClientID, creds.ClientSecret).
		SetFormData(map[string]string{
			"grant_type": "password",
			"username":   creds.Username,
			"password":   creds.Password,
			"client_id":  creds.ClientID,
		}).
		SetResult(&token).
		Post(a.tokenURL)

	switch {
	case err != nil:
		return "", syncerr.Fatal("auth token", err)
	case resp.IsError():
		return "", syncerr.Fatalf("auth token", "(HTTP Status: %d) %s", resp.StatusCode(), resp.String())
	case token.IDToken == "":
		return "", syncerr.Fatal("auth token", ErrNoIDToken)
	}

	keys, err := jwk.Fetch(ctx, a.keysURL, jwk.WithHTTPClient(a.r.GetClient()))
	if err != nil {
		return "", syncerr.Fatal("auth keys", err)
	}

	verified, err := verify(token.IDToken, keys, creds.ClientID)
	if err != nil {
		return "", syncerr.Fatal("auth verify", err)
	}

	upn, _ := verified.Get("upn")
	log.Debugf("catalog token issued for %v, expires %v", upn, verified.Expiration())

	return token.IDToken, nil
}

// verify checks the RS256 signature, expiry and audience of an id_token.
func verify(idToken string, keys jwk.Set, audience string) (jwt.Token, error) {
	msg, err := jws.Parse([]byte(idToken))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}

	headers := msg.Signatures()[0].ProtectedHeaders()
	if alg := headers.Algorithm(); alg != jwa.RS256 {
		return nil, fmt.Errorf("%w: unexpected signing method %s", ErrInvalidToken, alg)
	}

	if _, ok := keys.LookupKeyID(headers.KeyID()); !ok {
		return nil, fmt.Errorf("%w: kid %q", ErrUnknownKey, headers.KeyID())
	}

	verified, err := jwt.Parse([]byte(idToken),
		jwt.WithKeySet(keys, jws.WithInferAlgorithmFromKey(true)),
		jwt.WithValidate(true),
		jwt.WithAudience(audience),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}

	return verified, nil
}
