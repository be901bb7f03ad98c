package papers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/scriptorium-hq/scriptorium/internal/identity"
	"github.com/scriptorium-hq/scriptorium/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the paper registry. Role enforcement
// stays in the service; handlers only decode, resolve the caller identity
// and map errors. Descriptive fields are deliberately not validated: the
// registry stores whatever the caller sent, empty strings included.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers paper routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listPapers)
	r.Post("/", h.createPaper)
	r.Get("/{paperID}", h.getPaper)
	r.Put("/{paperID}", h.updatePaper)
	r.Delete("/{paperID}", h.deletePaper)
	r.Get("/{paperID}/comments", h.listComments)
	r.Post("/{paperID}/comments", h.addComment)
	r.Post("/{paperID}/views", h.recordView)
	r.Post("/{paperID}/downloads", h.recordDownload)
}

// paperForm carries the descriptive fields of a create/update request.
// Fields may be empty; the registry stores content as given.
type paperForm struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Abstract    string `json:"abstract"`
	ContentHash string `json:"content_hash"`
}

type commentForm struct {
	Text string `json:"text"`
}

type paperResponse struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Abstract      string `json:"abstract"`
	ContentHash   string `json:"content_hash"`
	Version       int64  `json:"version"`
	CommentCount  int64  `json:"comment_count"`
	ViewCount     int64  `json:"view_count"`
	DownloadCount int64  `json:"download_count"`
}

type commentResponse struct {
	Author string    `json:"author"`
	Text   string    `json:"text"`
	At     time.Time `json:"at"`
}

func (h *Handler) createPaper(w http.ResponseWriter, r *http.Request) {
	acting, ok := identity.AccountFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrNoIdentity)
		return
	}
	var form paperForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	p, err := h.service.Create(r.Context(), acting, form.Title, form.Author, form.Abstract, form.ContentHash)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toPaperResponse(p))
}

func (h *Handler) listPapers(w http.ResponseWriter, r *http.Request) {
	papers := h.service.List(r.Context())
	out := make([]paperResponse, len(papers))
	for i, p := range papers {
		out[i] = toPaperResponse(p)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) getPaper(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paperID(w, r)
	if !ok {
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPaperResponse(p))
}

func (h *Handler) updatePaper(w http.ResponseWriter, r *http.Request) {
	acting, ok := identity.AccountFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrNoIdentity)
		return
	}
	id, ok := h.paperID(w, r)
	if !ok {
		return
	}
	var form paperForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	p, err := h.service.Update(r.Context(), acting, id, form.Title, form.Author, form.Abstract, form.ContentHash)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPaperResponse(p))
}

func (h *Handler) deletePaper(w http.ResponseWriter, r *http.Request) {
	acting, ok := identity.AccountFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrNoIdentity)
		return
	}
	id, ok := h.paperID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), acting, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addComment(w http.ResponseWriter, r *http.Request) {
	acting, ok := identity.AccountFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrNoIdentity)
		return
	}
	id, ok := h.paperID(w, r)
	if !ok {
		return
	}
	var form commentForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	c, err := h.service.AddComment(r.Context(), acting, id, form.Text)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toCommentResponse(c))
}

func (h *Handler) listComments(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paperID(w, r)
	if !ok {
		return
	}
	comments := h.service.Comments(r.Context(), id)
	out := make([]commentResponse, len(comments))
	for i, c := range comments {
		out[i] = toCommentResponse(c)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) recordView(w http.ResponseWriter, r *http.Request) {
	h.recordCounter(w, r, h.service.RecordView)
}

func (h *Handler) recordDownload(w http.ResponseWriter, r *http.Request) {
	h.recordCounter(w, r, h.service.RecordDownload)
}

func (h *Handler) recordCounter(w http.ResponseWriter, r *http.Request, record func(ctx context.Context, caller identity.Account, id int64) error) {
	caller, ok := identity.AccountFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrNoIdentity)
		return
	}
	id, ok := h.paperID(w, r)
	if !ok {
		return
	}
	if err := record(r.Context(), caller, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// paperID parses the route parameter; an unparsable id cannot name a live
// paper, so it reports NotFound.
func (h *Handler) paperID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "paperID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "unknown paper id")
		return 0, false
	}
	return id, true
}

func toPaperResponse(p Paper) paperResponse {
	return paperResponse{
		ID:            p.ID,
		Title:         p.Title,
		Author:        p.Author,
		Abstract:      p.Abstract,
		ContentHash:   p.ContentHash,
		Version:       p.Version,
		CommentCount:  p.CommentCount,
		ViewCount:     p.ViewCount,
		DownloadCount: p.DownloadCount,
	}
}

func toCommentResponse(c Comment) commentResponse {
	return commentResponse{Author: c.Author.String(), Text: c.Text, At: c.At}
}
