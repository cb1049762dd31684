package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	_ "github.com/accessdeck/accessdeck/testing"
)

func newTestRouter(t *testing.T) (chi.Router, *memoryAccountRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &memoryAccountRepo{accounts: map[string]*Account{}}
	svc := NewService(repo, NewTokenManager(client, time.Hour), "admin")
	handler := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)

	r := chi.NewRouter()
	r.Route("/auth", handler.MountRoutes)
	return r, repo
}

func postLogin(t *testing.T, r chi.Router, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestLoginEndpointSuccess(t *testing.T) {
	r, repo := newTestRouter(t)
	repo.accounts["root@example.com"] = &Account{
		ID: "u1", Email: "root@example.com",
		PasswordHash: hashPassword(t, "s3cret"), RoleName: "admin",
	}

	rec := postLogin(t, r, map[string]string{"email": "root@example.com", "password": "s3cret"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("auth-token"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, rec.Header().Get("auth-token"), body["token"])
}

func TestLoginEndpointBadPassword(t *testing.T) {
	r, repo := newTestRouter(t)
	repo.accounts["root@example.com"] = &Account{
		ID: "u1", Email: "root@example.com",
		PasswordHash: hashPassword(t, "s3cret"), RoleName: "admin",
	}

	rec := postLogin(t, r, map[string]string{"email": "root@example.com", "password": "wrong"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, rec.Header().Get("auth-token"))
}

func TestLoginEndpointNonPrivilegedRole(t *testing.T) {
	r, repo := newTestRouter(t)
	repo.accounts["viewer@example.com"] = &Account{
		ID: "u2", Email: "viewer@example.com",
		PasswordHash: hashPassword(t, "s3cret"), RoleName: "viewer",
	}

	rec := postLogin(t, r, map[string]string{"email": "viewer@example.com", "password": "s3cret"})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLoginEndpointValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := postLogin(t, r, map[string]string{"email": "not-an-email", "password": "s3cret"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postLogin(t, r, map[string]string{"email": "root@example.com"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
