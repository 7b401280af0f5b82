package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/questify/api/transport"
	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/pkg/httpcontext"
	plannerUC "github.com/fastygo/questify/usecase/planner"
)

type PlannerHandler struct {
	baseHandler
	uc *plannerUC.UseCase
}

func NewPlannerHandler(uc *plannerUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *PlannerHandler {
	return &PlannerHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Router /api/v1/areas [get]
func (h *PlannerHandler) ListAreas(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	areas, err := h.uc.ListAreas(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	if areas == nil {
		areas = []domain.Area{}
	}
	h.respondList(ctx, areas, transport.ListMeta{Count: len(areas)})
}

// @Router /api/v1/areas [post]
func (h *PlannerHandler) CreateArea(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	var req transport.AreaRequest
	if !h.decode(ctx, &req, true) {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	area, err := h.uc.CreateArea(stdCtx, userID, plannerUC.AreaInput{Name: req.Name, Icon: req.Icon})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, area)
}

// @Router /api/v1/areas/{id} [patch]
func (h *PlannerHandler) UpdateArea(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id := h.pathID(ctx, "id")
	if id == "" {
		return
	}
	var patch domain.AreaPatch
	if !h.decode(ctx, &patch, true) {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	area, err := h.uc.UpdateArea(stdCtx, userID, id, patch)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, area)
}

// @Summary Delete area with its projects and tasks
// @Router /api/v1/areas/{id} [delete]
func (h *PlannerHandler) DeleteArea(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id := h.pathID(ctx, "id")
	if id == "" {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteArea(stdCtx, userID, id); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondNoContent(ctx)
}

// @Router /api/v1/areas/{id}/projects [get]
func (h *PlannerHandler) ListProjects(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	areaID := h.pathID(ctx, "id")
	if areaID == "" {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	projects, err := h.uc.ListProjects(stdCtx, userID, areaID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	h.respondList(ctx, projects, transport.ListMeta{Count: len(projects)})
}

// @Router /api/v1/areas/{id}/projects [post]
func (h *PlannerHandler) CreateProject(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	areaID := h.pathID(ctx, "id")
	if areaID == "" {
		return
	}
	var req transport.ProjectRequest
	if !h.decode(ctx, &req, true) {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	project, err := h.uc.CreateProject(stdCtx, userID, areaID, plannerUC.ProjectInput{Name: req.Name})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, project)
}

// @Router /api/v1/projects/{id} [patch]
func (h *PlannerHandler) UpdateProject(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id := h.pathID(ctx, "id")
	if id == "" {
		return
	}
	var patch domain.ProjectPatch
	if !h.decode(ctx, &patch, true) {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	project, err := h.uc.UpdateProject(stdCtx, userID, id, patch)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, project)
}

// @Summary Delete project with its tasks
// @Router /api/v1/projects/{id} [delete]
func (h *PlannerHandler) DeleteProject(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id := h.pathID(ctx, "id")
	if id == "" {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteProject(stdCtx, userID, id); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondNoContent(ctx)
}
