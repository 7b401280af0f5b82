package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/questify/api/transport"
	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/pkg/httpcontext"
	skillUC "github.com/fastygo/questify/usecase/skill"
)

type SkillHandler struct {
	baseHandler
	uc *skillUC.UseCase
}

func NewSkillHandler(uc *skillUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *SkillHandler {
	return &SkillHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Skill forest
// @Tags skills
// @Router /api/v1/skills [get]
func (h *SkillHandler) GetTree(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tree, err := h.uc.Tree(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	roots := tree.Roots
	if roots == nil {
		roots = []*domain.Skill{}
	}
	h.respondList(ctx, roots, transport.ListMeta{Count: tree.Len()})
}

// @Summary Leaf skills a task can be assigned to
// @Tags skills
// @Router /api/v1/skills/selectable [get]
func (h *SkillHandler) GetSelectable(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	leaves, err := h.uc.Selectable(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	if leaves == nil {
		leaves = []*domain.Skill{}
	}
	h.respondList(ctx, leaves, transport.ListMeta{Count: len(leaves)})
}

// @Tags skills
// @Router /api/v1/skills [post]
func (h *SkillHandler) CreateSkill(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	var req transport.SkillRequest
	if !h.decode(ctx, &req, true) {
		return
	}
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	skill, err := h.uc.Create(stdCtx, userID, skillUC.CreateInput{Name: req.Name, Icon: req.Icon, ParentID: req.ParentID})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, skill)
}
