package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/repository"
	"github.com/fastygo/questify/usecase"
)

// DefaultTokenTTL is the lifetime of an issued bearer token.
const DefaultTokenTTL = 7 * 24 * time.Hour

var validate = validator.New()

type Config struct {
	TokenTTL time.Duration
	Now      func() time.Time
	// Identities verifies OAuth callbacks. Without it the callback is disabled.
	Identities usecase.IdentityVerifier
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	tokens   usecase.TokenIssuer
	ids      usecase.IdentityVerifier
	logger   *zap.Logger
	ttl      time.Duration
	now      func() time.Time
}

func New(users repository.UserRepository, sessions repository.SessionRepository, tokens usecase.TokenIssuer, logger *zap.Logger, cfg Config) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		ids:      cfg.Identities,
		logger:   logger,
		ttl:      cfg.TokenTTL,
		now:      cfg.Now,
	}
}

type SignUpInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"max=120"`
}

type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// OAuthInput carries the provider-signed id_token of the callback.
type OAuthInput struct {
	IDToken string `json:"id_token" validate:"required,max=8192"`
}

func (uc *UseCase) SignUp(ctx context.Context, in SignUpInput) (*domain.AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validate.Struct(in); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "invalid sign-up payload", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "hash password", err)
	}

	user := domain.NewUser(in.Email, in.Name)
	user.PasswordHash = string(hash)
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}

	uc.logger.Info("user signed up", zap.String("user_id", user.ID))
	return uc.issue(ctx, user, "account created")
}

func (uc *UseCase) SignIn(ctx context.Context, in SignInInput) (*domain.AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validate.Struct(in); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := uc.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return uc.issue(ctx, user, "signed in")
}

// ExchangeOAuth finishes a provider callback. The id_token must verify
// against the configured provider; its email is then signed in, or created on
// first use. Accounts that sign in with a password are never taken over.
func (uc *UseCase) ExchangeOAuth(ctx context.Context, in OAuthInput) (*domain.AuthResult, error) {
	if uc.ids == nil {
		return nil, domain.ErrOAuthDisabled
	}
	if err := validate.Struct(in); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "invalid oauth payload", err)
	}
	identity, err := uc.ids.VerifyIdentity(in.IDToken)
	if err != nil {
		uc.logger.Warn("oauth assertion rejected", zap.Error(err))
		return nil, err
	}
	email := normalizeEmail(identity.Email)
	if err := validate.Var(email, "required,email,max=254"); err != nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := uc.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if user.PasswordHash != "" {
			return nil, domain.ErrAccountNotLinked
		}
		return uc.issue(ctx, user, "signed in")
	case errors.Is(err, domain.ErrUserNotFound):
	default:
		return nil, err
	}

	name := strings.TrimSpace(identity.Name)
	if len(name) > 120 {
		name = name[:120]
	}
	user = domain.NewUser(email, name)
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.logger.Info("user created via oauth", zap.String("user_id", user.ID), zap.String("provider", identity.Provider))
	return uc.issue(ctx, user, "account created")
}

// Authenticate verifies the token and its server session.
func (uc *UseCase) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := uc.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	session, err := uc.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			if !claims.ExpiresAt.After(uc.now()) {
				return nil, domain.ErrTokenExpired
			}
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if session.UserID != claims.UserID {
		return nil, domain.ErrUnauthorized
	}
	if session.IsExpired(uc.now()) {
		_ = uc.sessions.Delete(ctx, session.ID)
		return nil, domain.ErrTokenExpired
	}
	return session, nil
}

// Refresh swaps a valid token for a fresh one and revokes the old session.
func (uc *UseCase) Refresh(ctx context.Context, token string) (*domain.AuthResult, error) {
	session, err := uc.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := uc.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	result, err := uc.issue(ctx, user, "token refreshed")
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Delete(ctx, session.ID); err != nil {
		uc.logger.Warn("failed to revoke refreshed session", zap.String("session_id", session.ID), zap.Error(err))
	}
	return result, nil
}

// SignOut revokes the server session. Signing out with an already expired
// token is a no-op.
func (uc *UseCase) SignOut(ctx context.Context, token string) error {
	claims, err := uc.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			return nil
		}
		return err
	}
	return uc.sessions.Delete(ctx, claims.SessionID)
}

func (uc *UseCase) issue(ctx context.Context, user *domain.User, message string) (*domain.AuthResult, error) {
	now := uc.now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.ttl),
	}

	token, err := uc.tokens.Issue(user, session.ID, session.ExpiresAt)
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	return &domain.AuthResult{
		User:      user,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		Message:   message,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
