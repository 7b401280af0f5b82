package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/questify/api/transport"
	"github.com/fastygo/questify/internal/infrastructure/monitor"
	"github.com/fastygo/questify/pkg/httpcontext"
)

// StatusSource reports the latest dependency status.
type StatusSource interface {
	GetStatus() monitor.Status
}

type HealthHandler struct {
	baseHandler
	monitor   StatusSource
	aiEnabled bool
}

func NewHealthHandler(mon StatusSource, aiEnabled bool, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
		aiEnabled:   aiEnabled,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	payload := map[string]interface{}{
		"timestamp":   time.Now().UTC(),
		"last_check":  status.LastCheck,
		"services":    status.Components,
		"buffer_size": status.BufferSize,
		"ai_enabled":  h.aiEnabled,
	}

	if status.Online {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError(transport.CodeDegraded, "dependencies unhealthy", payload))
}
