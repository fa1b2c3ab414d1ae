package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/roster/internal/auth"
	"github.com/monocle-dev/roster/internal/store"
	"github.com/monocle-dev/roster/internal/types"
)

// Authenticate resolves the session token, from the Authorization header or
// the session cookie, into the acting user. Requests without a valid token
// continue anonymously; use RequireUser or RequirePageUser to insist.
func Authenticate(s *store.Store, issuer *auth.Issuer, log *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := bearerToken(ctx)

		if tokenString == "" {
			tokenString, _ = ctx.Cookie(types.SessionCookie)
		}

		if tokenString == "" {
			ctx.Next()
			return
		}

		claims, err := issuer.VerifyJWT(tokenString)

		if err != nil {
			ctx.Next()
			return
		}

		user, err := s.GetUser(ctx.Request.Context(), claims.UserID)

		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				log.Error("load session user", "user_id", claims.UserID, "error", err)
			}
			ctx.Next()
			return
		}

		ctx.Set(types.ContextUserKey, user)
		ctx.Next()
	}
}

func bearerToken(ctx *gin.Context) string {
	authHeader := ctx.GetHeader("Authorization")

	parts := strings.SplitN(authHeader, " ", 2)

	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// RequireUser rejects anonymous API calls.
func RequireUser() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if _, exists := ctx.Get(types.ContextUserKey); !exists {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx.Next()
	}
}

// RequirePageUser sends anonymous browsers to the login page.
func RequirePageUser() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if _, exists := ctx.Get(types.ContextUserKey); !exists {
			ctx.Redirect(http.StatusSeeOther, "/login?next="+url.QueryEscape(ctx.Request.URL.RequestURI()))
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
