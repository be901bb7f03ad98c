package roles

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/scriptorium-hq/scriptorium/internal/identity"
	"github.com/scriptorium-hq/scriptorium/internal/platform/httpx"
)

// Handler wires HTTP endpoints for role management.
type Handler struct {
	logger    *slog.Logger
	registry  *Registry
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, registry *Registry) *Handler {
	return &Handler{logger: logger, registry: registry, validator: validator.New()}
}

// MountRoutes registers role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/grants", h.grant)
	r.Post("/revocations", h.revoke)
	r.Get("/{account}", h.check)
}

type assignmentForm struct {
	Account string `json:"account" validate:"required"`
	Role    string `json:"role" validate:"required,oneof=admin contributor reviewer"`
}

func (h *Handler) grant(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.registry.Grant)
}

func (h *Handler) revoke(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.registry.Revoke)
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, acting, target identity.Account, role Role) error) {
	acting, ok := identity.AccountFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrNoIdentity)
		return
	}
	var form assignmentForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	role, err := Parse(form.Role)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := apply(r.Context(), acting, identity.Normalize(form.Account), role); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type roleCheckResponse struct {
	Account string          `json:"account"`
	Roles   map[string]bool `json:"roles"`
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	account := identity.Normalize(chi.URLParam(r, "account"))
	held := map[string]bool{
		string(SuperAdmin):  h.registry.Has(account, SuperAdmin),
		string(Admin):       h.registry.Has(account, Admin),
		string(Contributor): h.registry.Has(account, Contributor),
		string(Reviewer):    h.registry.Has(account, Reviewer),
	}
	httpx.JSON(w, http.StatusOK, roleCheckResponse{Account: account.String(), Roles: held})
}
