package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/questify/api/transport"
	"github.com/fastygo/questify/pkg/httpcontext"
	"github.com/fastygo/questify/usecase/gamification"
)

type MissionHandler struct {
	baseHandler
	engine *gamification.Engine
}

func NewMissionHandler(engine *gamification.Engine, adapter *httpcontext.Adapter, logger *zap.Logger) *MissionHandler {
	return &MissionHandler{
		baseHandler: newBaseHandler(adapter, logger),
		engine:      engine,
	}
}

// @Summary Current week's missions, generated on first request
// @Tags missions
// @Router /api/v1/missions [get]
func (h *MissionHandler) GetWeek(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	week, err := h.engine.MaybeGenerateWeeklyMissions(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, week)
}

// @Summary Complete or reopen a weekly mission
// @Tags missions
// @Router /api/v1/missions/{id}/complete [post]
func (h *MissionHandler) Complete(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id := h.pathID(ctx, "id")
	if id == "" {
		return
	}
	req := transport.CompleteMissionRequest{}
	if len(ctx.PostBody()) > 0 && !h.decode(ctx, &req, true) {
		return
	}
	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	out, err := h.engine.CompleteWeeklyMission(stdCtx, userID, id, completed)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, out)
}
