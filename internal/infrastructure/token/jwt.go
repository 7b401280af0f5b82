package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/usecase"
)

type claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Issuer signs HS256 tokens with a shared secret.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

func NewIssuer(secret string) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &Issuer{secret: []byte(secret), now: time.Now}, nil
}

func (i *Issuer) Issue(user *domain.User, sessionID string, expiresAt time.Time) (string, error) {
	if user == nil {
		return "", domain.ErrInvalidPayload
	}
	c := claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(i.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (i *Issuer) Parse(raw string) (*usecase.TokenClaims, error) {
	if raw == "" {
		return nil, domain.ErrUnauthorized
	}
	var c claims
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	_, err := parser.ParseWithClaims(raw, &c, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil {
		var vErr *jwt.ValidationError
		if errors.As(err, &vErr) && vErr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, domain.ErrUnauthorized.Message, err)
	}
	if c.UserID == "" || c.ID == "" || c.ExpiresAt == nil {
		return nil, domain.ErrUnauthorized
	}
	return &usecase.TokenClaims{
		SessionID: c.ID,
		UserID:    c.UserID,
		Email:     c.Email,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}
