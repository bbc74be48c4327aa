// Package auth identifies storefront customers from bearer tokens and
// guards the admin surface with a hashed API key.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/noah-isme/toko-pricing/internal/common"
)

// Tokens verifies customer access tokens issued by the storefront. The
// subject claim carries the customer id used for per-customer limits.
type Tokens struct {
	Secret    []byte
	Issuer    string
	Audience  string
	ClockSkew time.Duration
	Algorithm jwa.SignatureAlgorithm
	Now       func() time.Time
}

func (t *Tokens) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t *Tokens) algorithm() jwa.SignatureAlgorithm {
	if t.Algorithm == "" {
		return jwa.HS256
	}
	return t.Algorithm
}

// Issue signs a token for customerID. The storefront owns issuance in
// production; this is used by tooling and tests.
func (t *Tokens) Issue(customerID string, ttl time.Duration) (string, error) {
	now := t.now()
	builder := jwt.NewBuilder().
		Subject(customerID).
		IssuedAt(now).
		NotBefore(now.Add(-t.ClockSkew)).
		Expiration(now.Add(ttl))
	if t.Issuer != "" {
		builder = builder.Issuer(t.Issuer)
	}
	if t.Audience != "" {
		builder = builder.Audience([]string{t.Audience})
	}
	tok, err := builder.Build()
	if err != nil {
		return "", err
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(t.algorithm(), t.Secret))
	if err != nil {
		return "", err
	}
	return string(signed), nil
}

// Parse validates token and returns its subject.
func (t *Tokens) Parse(token string) (string, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", unauthorized(errors.New("auth: token missing"))
	}
	alg, err := tokenAlgorithm(trimmed)
	if err != nil {
		return "", unauthorized(err)
	}
	if alg != t.algorithm() {
		return "", unauthorized(fmt.Errorf("auth: unexpected token algorithm %s", alg))
	}
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(alg, t.Secret), jwt.WithValidate(false))
	if err != nil {
		return "", unauthorized(err)
	}
	opts := []jwt.ValidateOption{jwt.WithClock(jwt.ClockFunc(t.now))}
	if t.ClockSkew > 0 {
		opts = append(opts, jwt.WithAcceptableSkew(t.ClockSkew))
	}
	if t.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.Issuer))
	}
	if t.Audience != "" {
		opts = append(opts, jwt.WithAudience(t.Audience))
	}
	if err := jwt.Validate(parsed, opts...); err != nil {
		return "", unauthorized(err)
	}
	if parsed.Subject() == "" {
		return "", unauthorized(errors.New("auth: token has no subject"))
	}
	return parsed.Subject(), nil
}

func tokenAlgorithm(token string) (jwa.SignatureAlgorithm, error) {
	msg, err := jws.ParseString(token)
	if err != nil {
		return "", err
	}
	sigs := msg.Signatures()
	if len(sigs) != 1 {
		return "", errors.New("auth: expected exactly one signature")
	}
	headers := sigs[0].ProtectedHeaders()
	if headers == nil || headers.Algorithm() == "" {
		return "", errors.New("auth: token missing algorithm")
	}
	return headers.Algorithm(), nil
}

func unauthorized(err error) error {
	return common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
}
