package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/ladder-gg/ladder/models"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// Имена JWT claims, которые кладёт выпускающая сторона.
const (
	jwtClaimPlayerID  = "player_id"
	jwtClaimPrivilege = "privilege"
)

// Authenticate проверяет Bearer-токен (HS256) и кладёт claims в
// контекст запроса. Запросы без валидного токена отсекаются здесь.
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenStr := strings.TrimPrefix(header, "Bearer ")
			if tokenStr == "" || tokenStr == header {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePrivilege пропускает только игроков с уровнем не ниже min.
// Тонкие проверки (кто создатель, чья заявка) остаются в сервисах.
func RequirePrivilege(min models.PrivilegeLevel) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			privilege, err := GetPrivilegeFromContext(r.Context())
			if err != nil || privilege < min {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func GetPlayerIDFromContext(ctx context.Context) (int, error) {
	claims, ok := ctx.Value(claimsContextKey).(jwt.MapClaims)
	if !ok {
		return 0, errors.New("player claims not found in context")
	}

	raw, ok := claims[jwtClaimPlayerID]
	if !ok {
		return 0, fmt.Errorf("missing '%s' claim in token", jwtClaimPlayerID)
	}
	idFloat, ok := raw.(float64)
	if !ok || idFloat != float64(int(idFloat)) {
		return 0, fmt.Errorf("invalid '%s' claim: %v", jwtClaimPlayerID, raw)
	}
	id := int(idFloat)
	if id <= 0 {
		return 0, fmt.Errorf("invalid player ID in '%s' claim: %d", jwtClaimPlayerID, id)
	}
	return id, nil
}

func GetPrivilegeFromContext(ctx context.Context) (models.PrivilegeLevel, error) {
	claims, ok := ctx.Value(claimsContextKey).(jwt.MapClaims)
	if !ok {
		return 0, errors.New("player claims not found in context")
	}

	raw, ok := claims[jwtClaimPrivilege]
	if !ok {
		return 0, fmt.Errorf("missing '%s' claim in token", jwtClaimPrivilege)
	}
	levelFloat, ok := raw.(float64)
	if !ok || levelFloat != float64(int(levelFloat)) {
		return 0, fmt.Errorf("invalid '%s' claim: %v", jwtClaimPrivilege, raw)
	}
	level := models.PrivilegeLevel(int(levelFloat))
	if !level.Valid() {
		return 0, fmt.Errorf("invalid privilege level in claim: %d", int(levelFloat))
	}
	return level, nil
}
