package usecase

import (
	"time"

	"github.com/fastygo/questify/domain"
)

// TokenClaims is what a bearer token carries once verified.
type TokenClaims struct {
	SessionID string
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies bearer tokens.
// Parse returns domain.ErrTokenExpired for expired tokens and
// domain.ErrUnauthorized for anything else it cannot verify.
type TokenIssuer interface {
	Issue(user *domain.User, sessionID string, expiresAt time.Time) (string, error)
	Parse(token string) (*TokenClaims, error)
}

// Identity is what an identity provider vouches for in a signed assertion.
type Identity struct {
	Provider string
	Subject  string
	Email    string
	Name     string
}

// IdentityVerifier checks a provider-signed assertion (an OIDC id_token).
// It returns domain.ErrUnauthorized for anything it cannot verify and never
// returns an identity whose email the provider has not verified.
type IdentityVerifier interface {
	VerifyIdentity(assertion string) (*Identity, error)
}
