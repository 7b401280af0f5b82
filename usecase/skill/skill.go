package skill

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/repository"
)

var validate = validator.New()

type UseCase struct {
	skills repository.SkillRepository
	logger *zap.Logger
}

func New(skills repository.SkillRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{skills: skills, logger: logger}
}

type CreateInput struct {
	Name     string `json:"name" validate:"required,max=120"`
	Icon     string `json:"icon" validate:"max=64"`
	ParentID string `json:"parent_id" validate:"max=64"`
}

// Tree loads the user's skills and links them into a forest.
func (uc *UseCase) Tree(ctx context.Context, userID string) (*domain.SkillTree, error) {
	rows, err := uc.skills.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.BuildSkillTree(rows), nil
}

// Selectable lists the leaves of the tree in pre-order.
func (uc *UseCase) Selectable(ctx context.Context, userID string) ([]*domain.Skill, error) {
	tree, err := uc.Tree(ctx, userID)
	if err != nil {
		return nil, err
	}
	return tree.Selectable(), nil
}

// Create adds a skill, optionally under a parent. A parent that gains its
// first child stops being selectable for tasks.
func (uc *UseCase) Create(ctx context.Context, userID string, in CreateInput) (*domain.Skill, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "invalid skill", err)
	}

	skill := &domain.Skill{
		UserID:    userID,
		Name:      in.Name,
		Icon:      in.Icon,
		Level:     domain.StartingSkillLevel,
		MaxPoints: domain.StartingSkillMaxPoints,
	}
	if in.ParentID != "" {
		parent, err := uc.skills.GetByID(ctx, in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.UserID != userID {
			return nil, domain.ErrSkillNotFound
		}
		skill.ParentID = &parent.ID
	}

	if err := uc.skills.Create(ctx, skill); err != nil {
		return nil, err
	}
	uc.logger.Debug("skill created", zap.String("user_id", userID), zap.String("skill_id", skill.ID))
	return skill, nil
}
