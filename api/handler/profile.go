package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/questify/api/transport"
	"github.com/fastygo/questify/pkg/httpcontext"
	"github.com/fastygo/questify/usecase/gamification"
	profileUC "github.com/fastygo/questify/usecase/profile"
)

type ProfileHandler struct {
	baseHandler
	uc     *profileUC.UseCase
	engine *gamification.Engine
}

func NewProfileHandler(uc *profileUC.UseCase, engine *gamification.Engine, adapter *httpcontext.Adapter, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		engine:      engine,
	}
}

// @Summary Get progression snapshot
// @Tags profile
// @Success 200 {object} transport.Envelope
// @Router /api/v1/profile [get]
func (h *ProfileHandler) GetProfile(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	snapshot, err := h.uc.GetProfile(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, snapshot)
}

// @Summary Rename the profile
// @Tags profile
// @Router /api/v1/profile [patch]
func (h *ProfileHandler) UpdateProfile(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	var req transport.ProfileUpdateRequest
	if !h.decode(ctx, &req, true) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.UpdateProfile(stdCtx, userID, profileUC.UpdateInput{Name: req.Name})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, user)
}

// @Summary Grant XP directly, e.g. a focus-session bonus
// @Tags profile
// @Router /api/v1/profile/xp [post]
func (h *ProfileHandler) GrantXP(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	var req transport.GrantXPRequest
	if !h.decode(ctx, &req, true) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	out, err := h.engine.GrantXP(stdCtx, userID, req.Amount, req.SkillID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, out)
}
