package profile

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/repository"
)

// RecentEventsLimit bounds the activity list shown with the profile.
const RecentEventsLimit = 20

var validate = validator.New()

type UseCase struct {
	users  repository.UserRepository
	events repository.EventRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, events repository.EventRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		events: events,
		logger: logger,
	}
}

// Snapshot is the progression view of a user.
type Snapshot struct {
	User         *domain.User           `json:"user"`
	RecentEvents []domain.ProgressEvent `json:"recent_events"`
}

type UpdateInput struct {
	Name string `json:"name" validate:"required,max=120"`
}

func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*Snapshot, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	events, err := uc.events.ListByUser(ctx, userID, RecentEventsLimit)
	if err != nil {
		uc.logger.Warn("failed to load progress events", zap.String("user_id", userID), zap.Error(err))
		events = nil
	}
	if events == nil {
		events = []domain.ProgressEvent{}
	}
	return &Snapshot{User: user, RecentEvents: events}, nil
}

func (uc *UseCase) UpdateProfile(ctx context.Context, userID string, in UpdateInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "invalid profile", err)
	}
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Name = in.Name
	if err := uc.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
