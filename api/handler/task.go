package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/questify/api/transport"
	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/pkg/httpcontext"
	"github.com/fastygo/questify/repository"
	"github.com/fastygo/questify/usecase/gamification"
	taskUC "github.com/fastygo/questify/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc     *taskUC.UseCase
	engine *gamification.Engine
}

func NewTaskHandler(uc *taskUC.UseCase, engine *gamification.Engine, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		engine:      engine,
	}
}

// @Summary List tasks
// @Tags tasks
// @Param project_id query string false "only tasks of this project"
// @Param completed query bool false "filter by completion"
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	args := ctx.QueryArgs()
	filter := repository.TaskFilter{
		UserID:    userID,
		ProjectID: string(args.Peek("project_id")),
		Completed: parseBool(string(args.Peek("completed"))),
		Limit:     parseInt(string(args.Peek("limit")), 50),
		Offset:    parseInt(string(args.Peek("offset")), 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListTasks(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	h.respondList(ctx, tasks, transport.ListMeta{Count: len(tasks), Limit: filter.Limit, Offset: filter.Offset})
}

// @Summary Create task; XP is suggested by the AI collaborator
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.TaskRequest
	if !h.decode(ctx, &req, true) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	due, err := req.ParseDueDate()
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}

	created, err := h.uc.CreateTask(stdCtx, userID, taskUC.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		ProjectID:   req.ProjectID,
		SkillID:     req.SkillID,
		DueDate:     due,
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Patch task fields; unknown keys are rejected
// @Tags tasks
// @Router /api/v1/tasks/{id} [patch]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id := h.pathID(ctx, "id")
	if id == "" {
		return
	}

	var patch domain.TaskPatch
	if !h.decode(ctx, &patch, true) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateTask(stdCtx, userID, id, patch)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
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

	if err := h.uc.DeleteTask(stdCtx, userID, id); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondNoContent(ctx)
}

// @Summary Duplicate task as a new open task
// @Tags tasks
// @Router /api/v1/tasks/{id}/duplicate [post]
func (h *TaskHandler) DuplicateTask(ctx *fasthttp.RequestCtx) {
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

	dup, err := h.uc.DuplicateTask(stdCtx, userID, id)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, dup)
}

// @Summary Complete or reopen a task
// @Tags tasks
// @Router /api/v1/tasks/{id}/complete [post]
func (h *TaskHandler) CompleteTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id := h.pathID(ctx, "id")
	if id == "" {
		return
	}

	req := transport.CompleteTaskRequest{}
	if len(ctx.PostBody()) > 0 && !h.decode(ctx, &req, true) {
		return
	}
	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	out, err := h.engine.CompleteTask(stdCtx, userID, id, gamification.CompleteTaskInput{
		Completed:    completed,
		FocusSeconds: req.FocusSeconds,
		BonusXP:      req.BonusXP,
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, out)
}
