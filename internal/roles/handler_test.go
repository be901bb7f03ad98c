package roles

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriptorium-hq/scriptorium/internal/identity"
)

func newTestRouter(registry *Registry) chi.Router {
	r := chi.NewRouter()
	r.Route("/roles", NewHandler(nil, registry).MountRoutes)
	return r
}

func doJSON(router http.Handler, account identity.Account, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if !account.IsZero() {
		req = req.WithContext(identity.ContextWithAccount(req.Context(), account))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGrantEndpoint(t *testing.T) {
	registry := NewRegistry(owner, nil, nil)
	router := newTestRouter(registry)

	rec := doJSON(router, owner, http.MethodPost, "/roles/grants",
		`{"account":"`+alice.String()+`","role":"contributor"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, registry.Has(alice, Contributor))

	rec = doJSON(router, owner, http.MethodPost, "/roles/revocations",
		`{"account":"`+alice.String()+`","role":"contributor"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, registry.Has(alice, Contributor))
}

func TestGrantEndpointRejections(t *testing.T) {
	registry := NewRegistry(owner, nil, nil)
	router := newTestRouter(registry)

	// No identity.
	rec := doJSON(router, "", http.MethodPost, "/roles/grants",
		`{"account":"`+alice.String()+`","role":"contributor"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Identified but unprivileged.
	rec = doJSON(router, bob, http.MethodPost, "/roles/grants",
		`{"account":"`+alice.String()+`","role":"contributor"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Unknown role name.
	rec = doJSON(router, owner, http.MethodPost, "/roles/grants",
		`{"account":"`+alice.String()+`","role":"editor"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// SuperAdmin is not grantable over the wire.
	rec = doJSON(router, owner, http.MethodPost, "/roles/grants",
		`{"account":"`+alice.String()+`","role":"super_admin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Missing account field.
	rec = doJSON(router, owner, http.MethodPost, "/roles/grants", `{"role":"contributor"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckEndpoint(t *testing.T) {
	registry := NewRegistry(owner, nil, nil)
	router := newTestRouter(registry)

	rec := doJSON(router, "", http.MethodGet, "/roles/"+owner.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got roleCheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, owner.String(), got.Account)
	assert.True(t, got.Roles[string(SuperAdmin)])
	assert.True(t, got.Roles[string(Admin)])
	assert.False(t, got.Roles[string(Contributor)])
	assert.False(t, got.Roles[string(Reviewer)])
}
