package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"SectorPulse/internal/domain/repository"
	"SectorPulse/internal/state"
	"SectorPulse/pkg/logger"
)

// StatusHandler exposes health and run-state introspection endpoints.
type StatusHandler struct {
	log      *logger.Logger
	store    *state.Store
	dedup    *state.Dedup
	registry repository.Registry
}

func NewStatusHandler(log *logger.Logger, store *state.Store, dedup *state.Dedup, registry repository.Registry) *StatusHandler {
	return &StatusHandler{log: log, store: store, dedup: dedup, registry: registry}
}

func (h *StatusHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	e.GET("/api/state", h.State)
}

func (h *StatusHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type stateResponse struct {
	Regime       string `json:"regime"`
	LastDaily    string `json:"last_daily_report"`
	LastWeekly   string `json:"last_weekly_report"`
	TotalSent    int64  `json:"total_sent"`
	DedupEntries int    `json:"dedup_entries"`
	Subscribers  int    `json:"subscribers"`
}

func (h *StatusHandler) State(c echo.Context) error {
	subs, err := h.registry.Active(c.Request().Context())
	if err != nil {
		h.log.Error("registry read failed", logger.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "registry unavailable"})
	}

	return c.JSON(http.StatusOK, stateResponse{
		Regime:       h.store.Regime(),
		LastDaily:    h.store.DailyMarker(),
		LastWeekly:   h.store.WeeklyMarker(),
		TotalSent:    h.store.TotalSent(),
		DedupEntries: h.dedup.Len(),
		Subscribers:  len(subs),
	})
}
