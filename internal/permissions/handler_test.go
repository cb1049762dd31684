package permissions

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	_ "github.com/accessdeck/accessdeck/testing"
)

func newTestRouter(t *testing.T) (chi.Router, *recordingAudit) {
	t.Helper()
	audit := &recordingAudit{}
	handler := NewHandler(nil, NewService(newMemoryPermissionRepo(), audit))
	r := chi.NewRouter()
	r.Route("/permissions", handler.MountRoutes)
	return r, audit
}

func TestPermissionCRUDOverHTTP(t *testing.T) {
	router, audit := newTestRouter(t)

	body := `{"name":"Read","actions":["read"],"description":"read only"}`
	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/permissions", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, res.Code)
	require.Contains(t, res.Body.String(), `"name":"Read"`)
	require.Len(t, audit.entries, 1)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/permissions", nil))
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"read only"`)
}

func TestGetPermissionNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/permissions/missing", nil))
	require.Equal(t, http.StatusNotFound, res.Code)
}

func TestCreatePermissionRejectsBadAction(t *testing.T) {
	router, audit := newTestRouter(t)

	body := `{"name":"Read","actions":["fly"]}`
	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/permissions", strings.NewReader(body)))
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Empty(t, audit.entries)
}

func TestCreatePermissionRejectsMissingName(t *testing.T) {
	router, audit := newTestRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/permissions", strings.NewReader(`{"actions":["read"]}`)))
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Empty(t, audit.entries)
}
