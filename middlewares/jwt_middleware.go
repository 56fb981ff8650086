package middlewares

import (
	"context"
	"net/http"
	"strings"

	"clinicacrm/models"
	"clinicacrm/services"
	"clinicacrm/utils"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const actorContextKey contextKey = "actor"

// JWTMiddleware verifies the bearer token and resolves the acting identity
// into the request context. Handlers read it back with ActorFromContext and
// pass it explicitly into the service layer.
func JWTMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.HandleMessageResponse(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				utils.HandleMessageResponse(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			token, err := jwt.ParseWithClaims(tokenString, &models.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			})
			if err != nil {
				utils.HandleMessageResponse(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(*models.AuthClaims)
			if !ok || !token.Valid {
				utils.HandleMessageResponse(w, "Invalid token claims", http.StatusUnauthorized)
				return
			}

			actor := services.Actor{ID: claims.UserID, Nome: claims.Nome, Email: claims.Email}
			ctx := context.WithValue(r.Context(), actorContextKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext returns the authenticated actor, or the Sistema identity
// when the request carried none.
func ActorFromContext(ctx context.Context) services.Actor {
	if actor, ok := ctx.Value(actorContextKey).(services.Actor); ok && !actor.IsZero() {
		return actor
	}
	return services.SistemaActor()
}
