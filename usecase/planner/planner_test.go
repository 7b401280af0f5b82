package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/repository"
	"github.com/fastygo/questify/repository/memory"
	"github.com/fastygo/questify/usecase"
)

type recordingBuffer struct {
	ops []string
}

func (b *recordingBuffer) BufferTask(context.Context, string, *domain.Task) error { return nil }
func (b *recordingBuffer) BufferProject(_ context.Context, op string, p *domain.Project) error {
	b.ops = append(b.ops, "project:"+op+":"+p.ID)
	return nil
}
func (b *recordingBuffer) BufferArea(_ context.Context, op string, a *domain.Area) error {
	b.ops = append(b.ops, "area:"+op+":"+a.ID)
	return nil
}

type offlineAreas struct{ repository.AreaRepository }

func (offlineAreas) Update(context.Context, *domain.Area) error { return errors.New("conn reset") }
func (offlineAreas) Delete(context.Context, string) error       { return errors.New("conn reset") }

func strPtr(s string) *string { return &s }

func TestAreaAndProjectLifecycle(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := New(store.Areas(), store.Projects(), nil, nil)

	area, err := uc.CreateArea(ctx, "u1", AreaInput{Name: "  Health  ", Icon: "heart"})
	if err != nil {
		t.Fatalf("create area: %v", err)
	}
	if area.Name != "Health" || area.UserID != "u1" || area.ID == "" {
		t.Fatalf("area = %+v", area)
	}

	project, err := uc.CreateProject(ctx, "u1", area.ID, ProjectInput{Name: "Marathon"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	projects, err := uc.ListProjects(ctx, "u1", area.ID)
	if err != nil || len(projects) != 1 || projects[0].ID != project.ID {
		t.Fatalf("projects = %+v, err = %v", projects, err)
	}

	renamed, err := uc.UpdateArea(ctx, "u1", area.ID, domain.AreaPatch{Name: strPtr("Fitness")})
	if err != nil || renamed.Name != "Fitness" {
		t.Fatalf("update area = %+v, err = %v", renamed, err)
	}

	if err := uc.DeleteArea(ctx, "u1", area.ID); err != nil {
		t.Fatalf("delete area: %v", err)
	}
	if _, err := store.Projects().GetByID(ctx, project.ID); !errors.Is(err, domain.ErrProjectNotFound) {
		t.Fatalf("project survived area delete: %v", err)
	}
}

func TestOwnershipIsEnforced(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := New(store.Areas(), store.Projects(), nil, nil)

	mine, _ := uc.CreateArea(ctx, "u1", AreaInput{Name: "Work"})
	theirs, _ := uc.CreateArea(ctx, "u2", AreaInput{Name: "Home"})
	project, _ := uc.CreateProject(ctx, "u1", mine.ID, ProjectInput{Name: "Launch"})

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"list foreign area", func() error {
			_, err := uc.ListProjects(ctx, "u1", theirs.ID)
			return err
		}, domain.ErrAreaNotFound},
		{"update foreign area", func() error {
			_, err := uc.UpdateArea(ctx, "u1", theirs.ID, domain.AreaPatch{Name: strPtr("x")})
			return err
		}, domain.ErrAreaNotFound},
		{"project into foreign area", func() error {
			_, err := uc.CreateProject(ctx, "u1", theirs.ID, ProjectInput{Name: "x"})
			return err
		}, domain.ErrAreaNotFound},
		{"move project to foreign area", func() error {
			_, err := uc.UpdateProject(ctx, "u1", project.ID, domain.ProjectPatch{AreaID: strPtr(theirs.ID)})
			return err
		}, domain.ErrAreaNotFound},
		{"delete project as other user", func() error {
			return uc.DeleteProject(ctx, "u2", project.ID)
		}, domain.ErrProjectNotFound},
		{"missing area", func() error {
			return uc.DeleteArea(ctx, "u1", "nope")
		}, domain.ErrAreaNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	got, err := store.Projects().GetByID(ctx, project.ID)
	if err != nil || got.AreaID != mine.ID {
		t.Fatalf("project moved: %+v, err = %v", got, err)
	}
}

func TestInvalidInputs(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := New(store.Areas(), store.Projects(), nil, nil)

	if _, err := uc.CreateArea(ctx, "u1", AreaInput{Name: "   "}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("blank area name: %v", err)
	}
	area, _ := uc.CreateArea(ctx, "u1", AreaInput{Name: "Work"})
	if _, err := uc.UpdateArea(ctx, "u1", area.ID, domain.AreaPatch{Name: strPtr("")}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("empty patch name: %v", err)
	}
	if _, err := uc.CreateProject(ctx, "u1", area.ID, ProjectInput{}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("blank project name: %v", err)
	}
}

func TestWritesAreBufferedWhenStoreIsDown(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	area, _ := New(store.Areas(), store.Projects(), nil, nil).CreateArea(ctx, "u1", AreaInput{Name: "Work"})

	buf := &recordingBuffer{}
	uc := New(offlineAreas{store.Areas()}, store.Projects(), buf, nil)

	updated, err := uc.UpdateArea(ctx, "u1", area.ID, domain.AreaPatch{Name: strPtr("Career")})
	if err != nil || updated.Name != "Career" {
		t.Fatalf("update = %+v, err = %v", updated, err)
	}
	if err := uc.DeleteArea(ctx, "u1", area.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	want := []string{
		"area:" + usecase.OperationUpdate + ":" + area.ID,
		"area:" + usecase.OperationDelete + ":" + area.ID,
	}
	if len(buf.ops) != len(want) {
		t.Fatalf("buffered = %v", buf.ops)
	}
	for i := range want {
		if buf.ops[i] != want[i] {
			t.Fatalf("buffered[%d] = %s, want %s", i, buf.ops[i], want[i])
		}
	}
}

func TestDomainErrorsAreNotBuffered(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	buf := &recordingBuffer{}
	uc := New(store.Areas(), store.Projects(), buf, nil)

	if err := uc.DeleteProject(ctx, "u1", "missing"); !errors.Is(err, domain.ErrProjectNotFound) {
		t.Fatalf("err = %v", err)
	}
	if len(buf.ops) != 0 {
		t.Fatalf("buffered = %v", buf.ops)
	}
}
