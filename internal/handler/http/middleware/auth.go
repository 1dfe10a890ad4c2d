package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/hrm-core/internal/handler/http/response"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type contextKey struct{}

// AuthRequired accepts only verified access tokens carrying an employee_id
// and stores that id in the request context.
func AuthRequired(next http.Handler) http.Handler {
	hfn := func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}
		if token == nil {
			response.Unauthorized(w, jwt.ErrInvalidToken.Error())
			return
		}

		tokenType, ok := claims["type"].(string)
		if !ok || tokenType != jwt.TokenTypeAccess {
			response.Unauthorized(w, jwt.ErrInvalidToken.Error())
			return
		}

		employeeID, ok := claims["employee_id"].(string)
		if !ok || employeeID == "" {
			response.Unauthorized(w, "token has no employee_id")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithEmployeeID(r.Context(), employeeID)))
	}
	return http.HandlerFunc(hfn)
}

func WithEmployeeID(ctx context.Context, employeeID string) context.Context {
	return context.WithValue(ctx, contextKey{}, employeeID)
}

// EmployeeID returns the authenticated actor, or "" outside AuthRequired.
func EmployeeID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
