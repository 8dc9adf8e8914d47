package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type sessionKey struct{}

// AuthRequired accepts only verified access tokens and stores the caller's
// session in the request context.
func AuthRequired(next http.Handler) http.Handler {
	hfn := func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		if token == nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		tokenType, ok := claims["type"].(string)
		if !ok || tokenType != jwt.TokenTypeAccess {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		session, err := jwt.SessionFromClaims(claims)
		if err != nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	}
	return http.HandlerFunc(hfn)
}

// WithSession returns a copy of ctx carrying session.
func WithSession(ctx context.Context, session user.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the session stored by AuthRequired.
func SessionFromContext(ctx context.Context) (user.Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(user.Session)
	return session, ok
}
