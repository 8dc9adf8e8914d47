package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// sessionOrUnauthorized returns the caller's session or writes a 401.
func sessionOrUnauthorized(w http.ResponseWriter, r *http.Request) (user.Session, bool) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
	}
	return session, ok
}

// idParam returns the {id} path parameter. Anything that is not a UUID cannot
// name a stored row, so it is answered with notFound.
func idParam(w http.ResponseWriter, r *http.Request, notFound error) (string, bool) {
	id := chi.URLParam(r, "id")
	if err := uuid.Validate(id); err != nil {
		response.HandleError(w, notFound)
		return "", false
	}
	return id, true
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// optionalQuery returns nil for an absent or empty query parameter.
func optionalQuery(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

func optionalIntQuery(r *http.Request, key string) *int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		// out of range on purpose so Validate reports it
		i = -1
	}
	return &i
}
