package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ladder-gg/ladder/models"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func protectedEcho(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetPlayerIDFromContext(r.Context())
		require.NoError(t, err)
		privilege, err := GetPrivilegeFromContext(r.Context())
		require.NoError(t, err)
		assert.Equal(t, 42, id)
		assert.Equal(t, models.PrivilegeAdmin, privilege)
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticateValidToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"player_id": 42,
		"privilege": int(models.PrivilegeAdmin),
		"exp":       time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	Authenticate(testSecret)(protectedEcho(t)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuthenticateRejects(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})
	mw := Authenticate(testSecret)(next)

	cases := map[string]string{
		"no header":    "",
		"not bearer":   "Basic abc",
		"garbage":      "Bearer not-a-token",
		"wrong secret": "Bearer " + signToken(t, "other-secret", jwt.MapClaims{"player_id": 42, "privilege": 0}),
		"expired": "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"player_id": 42, "privilege": 0, "exp": time.Now().Add(-time.Minute).Unix(),
		}),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			mw.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequirePrivilege(t *testing.T) {
	var ran bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { ran = true })

	chain := Authenticate(testSecret)(RequirePrivilege(models.PrivilegeHelper)(next))

	// Обычному игроку сюда нельзя.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, jwt.MapClaims{
		"player_id": 7, "privilege": int(models.PrivilegeUser),
	}))
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, ran)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, jwt.MapClaims{
		"player_id": 7, "privilege": int(models.PrivilegeHelper),
	}))
	rec = httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	assert.True(t, ran)
}

func TestClaimParsing(t *testing.T) {
	_, err := GetPlayerIDFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.Error(t, err, "контекст без claims")

	token := signToken(t, testSecret, jwt.MapClaims{"player_id": -1, "privilege": 99})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	Authenticate(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := GetPlayerIDFromContext(r.Context())
		assert.Error(t, err, "неположительный player_id")
		_, err = GetPrivilegeFromContext(r.Context())
		assert.Error(t, err, "уровень вне шкалы")
	})).ServeHTTP(rec, req)
}
