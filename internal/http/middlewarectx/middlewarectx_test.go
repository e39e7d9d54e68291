package middlewarectx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	libjwt "github.com/magabrotheeeer/marketplace-backend/internal/lib/jwt"
	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJWTMiddleware_ValidTokenFillsContext(t *testing.T) {
	maker := libjwt.NewJWTMaker("test-secret", time.Hour)
	token, err := maker.GenerateToken("ivan", models.RoleReseller, "user-1")
	require.NoError(t, err)

	var gotUser, gotRole, gotUID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = r.Context().Value(User).(string)
		gotRole, _ = r.Context().Value(Role).(string)
		gotUID, _ = r.Context().Value(UserUID).(string)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/subscriptions/list", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	JWTMiddleware(maker, discardLogger())(next).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ivan", gotUser)
	assert.Equal(t, models.RoleReseller, gotRole)
	assert.Equal(t, "user-1", gotUID)
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	maker := libjwt.NewJWTMaker("test-secret", time.Hour)
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/subscriptions/list", nil)
	rr := httptest.NewRecorder()
	JWTMiddleware(maker, discardLogger())(next).ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestJWTMiddleware_WrongSecretRejected(t *testing.T) {
	other := libjwt.NewJWTMaker("other-secret", time.Hour)
	token, err := other.GenerateToken("ivan", models.RoleReseller, "user-1")
	require.NoError(t, err)

	maker := libjwt.NewJWTMaker("test-secret", time.Hour)
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/subscriptions/list", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	JWTMiddleware(maker, discardLogger())(next).ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestJWTMiddleware_ExpiredTokenRejected(t *testing.T) {
	maker := libjwt.NewJWTMaker("test-secret", -time.Minute)
	token, err := maker.GenerateToken("ivan", models.RoleReseller, "user-1")
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/subscriptions/list", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	JWTMiddleware(maker, discardLogger())(next).ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireAdmin(t *testing.T) {
	cases := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{"admin passes", models.RoleAdmin, http.StatusOK},
		{"reseller forbidden", models.RoleReseller, http.StatusForbidden},
		{"store owner forbidden", models.RoleStoreOwner, http.StatusForbidden},
		{"missing role unauthorized", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPut, "/plans", nil)
			if tc.role != "" {
				req = req.WithContext(contextWithRole(req, tc.role))
			}
			rr := httptest.NewRecorder()
			RequireAdmin(discardLogger())(next).ServeHTTP(rr, req)

			require.Equal(t, tc.wantStatus, rr.Code)
		})
	}
}

func contextWithRole(r *http.Request, role string) context.Context {
	return context.WithValue(r.Context(), Role, role)
}
