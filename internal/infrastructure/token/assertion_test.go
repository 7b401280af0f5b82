package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fastygo/questify/domain"
)

const (
	providerSecret = "provider-secret"
	providerIssuer = "https://id.example.com"
	clientID       = "questify"
)

func identity(mutate func(c *identityClaims)) identityClaims {
	now := time.Now()
	c := identityClaims{
		Email:         "Hero@Example.com",
		EmailVerified: true,
		Name:          "Hero",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    providerIssuer,
			Subject:   "provider-user-1",
			Audience:  jwt.ClaimStrings{clientID},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(5 * time.Minute)),
		},
	}
	if mutate != nil {
		mutate(&c)
	}
	return c
}

func sign(t *testing.T, c identityClaims, secret string) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestVerifyIdentity(t *testing.T) {
	v, err := NewAssertionVerifier(providerSecret, providerIssuer, clientID)
	if err != nil {
		t.Fatal(err)
	}

	got, err := v.VerifyIdentity(sign(t, identity(nil), providerSecret))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.Email != "hero@example.com" || got.Subject != "provider-user-1" || got.Provider != providerIssuer {
		t.Fatalf("identity = %+v", got)
	}
}

func TestVerifyIdentityRejects(t *testing.T) {
	v, _ := NewAssertionVerifier(providerSecret, providerIssuer, clientID)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, identity(nil)).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"unsigned", unsigned},
		{"wrong secret", sign(t, identity(nil), "guess")},
		{"expired", sign(t, identity(func(c *identityClaims) {
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
		}), providerSecret)},
		{"no expiry", sign(t, identity(func(c *identityClaims) { c.ExpiresAt = nil }), providerSecret)},
		{"issued in the future", sign(t, identity(func(c *identityClaims) {
			c.IssuedAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
		}), providerSecret)},
		{"other issuer", sign(t, identity(func(c *identityClaims) { c.Issuer = "https://evil.example.com" }), providerSecret)},
		{"other audience", sign(t, identity(func(c *identityClaims) { c.Audience = jwt.ClaimStrings{"someone-else"} }), providerSecret)},
		{"unverified email", sign(t, identity(func(c *identityClaims) { c.EmailVerified = false }), providerSecret)},
		{"no subject", sign(t, identity(func(c *identityClaims) { c.Subject = "" }), providerSecret)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.VerifyIdentity(tt.raw); !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("err = %v, want unauthorized", err)
			}
		})
	}
}

func TestNewAssertionVerifierRequiresSettings(t *testing.T) {
	for _, args := range [][3]string{
		{"", providerIssuer, clientID},
		{providerSecret, "", clientID},
		{providerSecret, providerIssuer, ""},
	} {
		if _, err := NewAssertionVerifier(args[0], args[1], args[2]); err == nil {
			t.Fatalf("NewAssertionVerifier%v succeeded", args)
		}
	}
}
