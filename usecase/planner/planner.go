package planner

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/repository"
	"github.com/fastygo/questify/usecase"
)

var validate = validator.New()

// UseCase manages areas and the projects inside them.
type UseCase struct {
	areas    repository.AreaRepository
	projects repository.ProjectRepository
	buffer   usecase.OperationBuffer
	logger   *zap.Logger
}

func New(areas repository.AreaRepository, projects repository.ProjectRepository, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{areas: areas, projects: projects, buffer: buffer, logger: logger}
}

type AreaInput struct {
	Name string `json:"name" validate:"required,max=120"`
	Icon string `json:"icon" validate:"max=64"`
}

type ProjectInput struct {
	Name string `json:"name" validate:"required,max=120"`
}

func (uc *UseCase) ListAreas(ctx context.Context, userID string) ([]domain.Area, error) {
	return uc.areas.ListByUser(ctx, userID)
}

func (uc *UseCase) CreateArea(ctx context.Context, userID string, in AreaInput) (*domain.Area, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "invalid area", err)
	}
	area := &domain.Area{UserID: userID, Name: in.Name, Icon: in.Icon}
	if err := uc.areas.Create(ctx, area); err != nil {
		return nil, err
	}
	return area, nil
}

func (uc *UseCase) UpdateArea(ctx context.Context, userID, id string, patch domain.AreaPatch) (*domain.Area, error) {
	if err := validate.Struct(patch); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "invalid area patch", err)
	}
	area, err := uc.ownedArea(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(area)
	if err := uc.areas.Update(ctx, area); err != nil {
		if uc.bufferable(err) && uc.buffer.BufferArea(ctx, usecase.OperationUpdate, area) == nil {
			uc.logger.Warn("area update buffered", zap.String("area_id", id), zap.Error(err))
			return area, nil
		}
		return nil, err
	}
	return area, nil
}

// DeleteArea removes the area and, through the store, its projects and tasks.
func (uc *UseCase) DeleteArea(ctx context.Context, userID, id string) error {
	area, err := uc.ownedArea(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := uc.areas.Delete(ctx, id); err != nil {
		if uc.bufferable(err) && uc.buffer.BufferArea(ctx, usecase.OperationDelete, area) == nil {
			uc.logger.Warn("area delete buffered", zap.String("area_id", id), zap.Error(err))
			return nil
		}
		return err
	}
	return nil
}

func (uc *UseCase) ListProjects(ctx context.Context, userID, areaID string) ([]domain.Project, error) {
	if _, err := uc.ownedArea(ctx, userID, areaID); err != nil {
		return nil, err
	}
	return uc.projects.ListByArea(ctx, areaID)
}

func (uc *UseCase) CreateProject(ctx context.Context, userID, areaID string, in ProjectInput) (*domain.Project, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "invalid project", err)
	}
	if _, err := uc.ownedArea(ctx, userID, areaID); err != nil {
		return nil, err
	}
	project := &domain.Project{UserID: userID, AreaID: areaID, Name: in.Name}
	if err := uc.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (uc *UseCase) UpdateProject(ctx context.Context, userID, id string, patch domain.ProjectPatch) (*domain.Project, error) {
	if err := validate.Struct(patch); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "invalid project patch", err)
	}
	project, err := uc.ownedProject(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if patch.AreaID != nil {
		if _, err := uc.ownedArea(ctx, userID, *patch.AreaID); err != nil {
			return nil, err
		}
	}
	patch.Apply(project)
	if err := uc.projects.Update(ctx, project); err != nil {
		if uc.bufferable(err) && uc.buffer.BufferProject(ctx, usecase.OperationUpdate, project) == nil {
			uc.logger.Warn("project update buffered", zap.String("project_id", id), zap.Error(err))
			return project, nil
		}
		return nil, err
	}
	return project, nil
}

func (uc *UseCase) DeleteProject(ctx context.Context, userID, id string) error {
	project, err := uc.ownedProject(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := uc.projects.Delete(ctx, id); err != nil {
		if uc.bufferable(err) && uc.buffer.BufferProject(ctx, usecase.OperationDelete, project) == nil {
			uc.logger.Warn("project delete buffered", zap.String("project_id", id), zap.Error(err))
			return nil
		}
		return err
	}
	return nil
}

func (uc *UseCase) ownedArea(ctx context.Context, userID, id string) (*domain.Area, error) {
	area, err := uc.areas.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if area.UserID != userID {
		return nil, domain.ErrAreaNotFound
	}
	return area, nil
}

func (uc *UseCase) ownedProject(ctx context.Context, userID, id string) (*domain.Project, error) {
	project, err := uc.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.UserID != userID {
		return nil, domain.ErrProjectNotFound
	}
	return project, nil
}

// bufferable reports whether a write failure came from the datastore and can
// be replayed later.
func (uc *UseCase) bufferable(err error) bool {
	var dErr *domain.Error
	return uc.buffer != nil && !errors.As(err, &dErr)
}
