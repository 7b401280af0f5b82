package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/usecase"
)

type identityClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	jwt.RegisteredClaims
}

// AssertionVerifier checks HS256 id_tokens signed by the identity provider
// with the client secret shared with this server.
type AssertionVerifier struct {
	secret   []byte
	issuer   string
	audience string
	leeway   time.Duration
	now      func() time.Time
}

func NewAssertionVerifier(secret, issuer, audience string) (*AssertionVerifier, error) {
	switch {
	case secret == "":
		return nil, errors.New("oauth client secret is empty")
	case issuer == "":
		return nil, errors.New("oauth issuer is empty")
	case audience == "":
		return nil, errors.New("oauth client id is empty")
	}
	return &AssertionVerifier{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		leeway:   30 * time.Second,
		now:      time.Now,
	}, nil
}

func (v *AssertionVerifier) VerifyIdentity(assertion string) (*usecase.Identity, error) {
	if assertion == "" {
		return nil, domain.ErrUnauthorized
	}
	var c identityClaims
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}, SkipClaimsValidation: true}
	if _, err := parser.ParseWithClaims(assertion, &c, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}); err != nil {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, domain.ErrUnauthorized.Message, err)
	}

	now := v.now()
	switch {
	case c.ExpiresAt == nil || !c.VerifyExpiresAt(now.Add(-v.leeway), true):
		return nil, domain.ErrUnauthorized
	case c.IssuedAt != nil && c.IssuedAt.After(now.Add(v.leeway)):
		return nil, domain.ErrUnauthorized
	case !c.VerifyIssuer(v.issuer, true), !c.VerifyAudience(v.audience, true):
		return nil, domain.ErrUnauthorized
	case c.Subject == "" || c.Email == "" || !c.EmailVerified:
		return nil, domain.ErrUnauthorized
	}

	return &usecase.Identity{
		Provider: v.issuer,
		Subject:  c.Subject,
		Email:    strings.ToLower(strings.TrimSpace(c.Email)),
		Name:     c.Name,
	}, nil
}
