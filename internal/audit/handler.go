package audit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/scriptorium-hq/scriptorium/internal/platform/httpx"
)

// Handler serves the read-only audit timeline.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers audit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.timeline)
}

type timelineResponse struct {
	Rows     []TimelineRow `json:"rows"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	HasNext  bool          `json:"has_next"`
}

func (h *Handler) timeline(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		// Audit trail disabled: no Postgres configured.
		httpx.JSON(w, http.StatusOK, timelineResponse{Rows: []TimelineRow{}, Page: 1, PageSize: 0})
		return
	}
	filters := TimelineFilters{
		Type:     r.URL.Query().Get("type"),
		Page:     queryInt(r, "page"),
		PageSize: queryInt(r, "page_size"),
	}
	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.logger.Error("audit timeline", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	rows := result.Rows
	if rows == nil {
		rows = []TimelineRow{}
	}
	httpx.JSON(w, http.StatusOK, timelineResponse{
		Rows:     rows,
		Page:     result.Paging.Page,
		PageSize: result.Paging.PageSize,
		HasNext:  result.Paging.HasNext,
	})
}

func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return v
}
