package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gaming-ops-portal/internal/api/middleware"
	"gaming-ops-portal/internal/auth"
	"gaming-ops-portal/internal/database"
	"gaming-ops-portal/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserManagement(t *testing.T) {
	store := database.NewMemoryStore()
	signer := auth.NewSigner("test-secret", time.Hour)
	sessions := auth.NewSessions()
	h := &UserHandler{Store: store, Sessions: sessions, Log: zerolog.Nop()}

	r := gin.New()
	r.Use(middleware.Authenticate(signer))
	users := r.Group("/api/admin/users", middleware.RequireViewer(), middleware.Authorize(models.RoleAdmin))
	users.POST("", h.CreateUser)
	users.GET("", h.ListUsers)
	users.PUT("/:id/status", h.SetUserStatus)

	adminTok, err := signer.Generate("root@example.com", "root@example.com", "Root", models.RoleAdmin, "Administration")
	require.NoError(t, err)
	call := func(method, path, body, tok string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	body := `{"email":"Ben@Example.com","name":"Ben","password":"longenough","role":"employee","department":"Operations"}`
	w := call(http.MethodPost, "/api/admin/users", body, adminTok)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "longenough")

	w = call(http.MethodPost, "/api/admin/users", body, adminTok)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = call(http.MethodPost, "/api/admin/users", `{"email":"x@example.com","name":"X","password":"short","role":"employee","department":"Ops"}`, adminTok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(http.MethodGet, "/api/admin/users?role=employee", "", adminTok)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "ben@example.com", list[0].Email)

	cancelled := false
	sessions.RegisterLogoutCallback("ben@example.com", "k", func() { cancelled = true })
	w = call(http.MethodPut, "/api/admin/users/ben@example.com/status", `{"status":"disabled"}`, adminTok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, cancelled)

	var u models.User
	require.NoError(t, store.Get(context.Background(), models.CollectionUsers, "ben@example.com", &u))
	assert.Equal(t, "disabled", u.Status)

	w = call(http.MethodPut, "/api/admin/users/nobody@example.com/status", `{"status":"active"}`, adminTok)
	assert.Equal(t, http.StatusNotFound, w.Code)

	empTok, err := signer.Generate("ana@example.com", "ana@example.com", "Ana", models.RoleEmployee, "Operations")
	require.NoError(t, err)
	w = call(http.MethodGet, "/api/admin/users", "", empTok)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
