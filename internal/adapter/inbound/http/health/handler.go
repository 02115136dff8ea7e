package healthhttp

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/houi19lb/Gstore-theme-sub001/internal/model"
)

// Checker reports whether a dependency is reachable.
type Checker func(ctx context.Context) error

// Handler serves the liveness and dependency health endpoint.
type Handler struct {
	checkers map[string]Checker
	timeout  time.Duration
}

// NewHandler creates a health handler. Nil checkers are ignored.
func NewHandler(checkers map[string]Checker) *Handler {
	filtered := make(map[string]Checker, len(checkers))
	for name, check := range checkers {
		if check != nil {
			filtered[name] = check
		}
	}
	return &Handler{checkers: filtered, timeout: 2 * time.Second}
}

// RegisterRoutes registers the health route.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/healthz", h.Health)
}

// Health handles GET /healthz.
//
//	@Summary	Service health
//	@Tags		Health
//	@Produce	json
//	@Success	200	{object}	model.HealthResponse
//	@Failure	503	{object}	model.HealthResponse
//	@Router		/healthz [get]
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := model.HealthResponse{Status: "ok"}
	status := http.StatusOK
	if len(names) > 0 {
		resp.Services = make(map[string]string, len(names))
	}
	for _, name := range names {
		if err := h.checkers[name](ctx); err != nil {
			resp.Services[name] = "down"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Services[name] = "up"
	}

	c.JSON(status, resp)
}
