package papers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriptorium-hq/scriptorium/internal/events"
	"github.com/scriptorium-hq/scriptorium/internal/identity"
	"github.com/scriptorium-hq/scriptorium/internal/roles"
)

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()
	ctx := context.Background()
	registry := roles.NewRegistry(ownerAccount, events.Nop{}, nil)
	require.NoError(t, registry.Grant(ctx, ownerAccount, adminAccount, roles.Admin))
	require.NoError(t, registry.Grant(ctx, ownerAccount, dualAccount, roles.Contributor))
	require.NoError(t, registry.Grant(ctx, ownerAccount, dualAccount, roles.Reviewer))
	svc := NewService(NewRepository(), registry, events.Nop{}, nil)

	r := chi.NewRouter()
	r.Route("/papers", NewHandler(nil, svc).MountRoutes)
	return r
}

func doJSON(t *testing.T, router http.Handler, account identity.Account, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if !account.IsZero() {
		req = req.WithContext(identity.ContextWithAccount(req.Context(), account))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreatePaperEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, adminAccount, http.MethodPost, "/papers",
		`{"title":"A","author":"B","abstract":"abs","content_hash":"hash1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got paperResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(0), got.ID)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, "hash1", got.ContentHash)
}

func TestCreatePaperRejectsAnonymousAndUnprivileged(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, "", http.MethodPost, "/papers", `{"title":"A"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, readerAccount, http.MethodPost, "/papers", `{"title":"A"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateAndDeletePaperEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, adminAccount, http.MethodPost, "/papers",
		`{"title":"A","author":"B","abstract":"abs","content_hash":"hash1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, adminAccount, http.MethodPut, "/papers/0",
		`{"title":"A","author":"B","abstract":"abs","content_hash":"hash2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var got paperResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(2), got.Version)

	rec = doJSON(t, router, adminAccount, http.MethodDelete, "/papers/0", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, adminAccount, http.MethodPut, "/papers/0",
		`{"title":"A","author":"B","abstract":"abs","content_hash":"hash3"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCommentEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, adminAccount, http.MethodPost, "/papers",
		`{"title":"A","author":"B"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, dualAccount, http.MethodPost, "/papers/0/comments", `{"text":"nice"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, adminAccount, http.MethodPost, "/papers/0/comments", `{"text":"nope"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, "", http.MethodGet, "/papers/0/comments", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var comments []commentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comments))
	require.Len(t, comments, 1)
	assert.Equal(t, "nice", comments[0].Text)
	assert.Equal(t, dualAccount.String(), comments[0].Author)

	// Unknown ids yield an empty list, never an error.
	rec = doJSON(t, router, "", http.MethodGet, "/papers/99/comments", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestCounterEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, adminAccount, http.MethodPost, "/papers", `{"title":"A"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	for i := 0; i < 2; i++ {
		rec = doJSON(t, router, readerAccount, http.MethodPost, "/papers/0/views", "")
		require.Equal(t, http.StatusNoContent, rec.Code)
	}
	rec = doJSON(t, router, readerAccount, http.MethodPost, "/papers/0/downloads", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, "", http.MethodGet, "/papers/0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got paperResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(2), got.ViewCount)
	assert.Equal(t, int64(1), got.DownloadCount)

	// Counters require an identified caller.
	rec = doJSON(t, router, "", http.MethodPost, "/papers/0/views", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, readerAccount, http.MethodPost, "/papers/99/views", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPaperIDParsing(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, "", http.MethodGet, "/papers/not-a-number", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
