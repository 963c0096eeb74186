package auth

import (
	"net/http"

	"github.com/Ilan9903/Juris-IA/internal"
	"github.com/Ilan9903/Juris-IA/internal/transport"
	"github.com/Ilan9903/Juris-IA/pkg/logger"
)

type RBACAuthorization struct {
	*transport.BaseHandler
}

func NewRBACAuthorization(baseHandler *transport.BaseHandler) *RBACAuthorization {
	return &RBACAuthorization{BaseHandler: baseHandler}
}

// Require lets the request through when the caller holds at least one of perms.
// It must run after AuthMiddleware.
func (ra *RBACAuthorization) Require(perms ...Permission) func(http.Handler) http.Handler {
	required := NewPermissionSet(perms...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac, ok := FromContext(r.Context())
			if !ok {
				ra.HandleServiceError(w, r, internal.NewUnauthorizedError("User not authenticated", internal.ErrCodeMissingToken))
				return
			}

			if !ac.Permissions.Intersects(required) {
				logger.From(r.Context()).Warn("access denied: insufficient permissions",
					"user_id", ac.User.ID,
					"required_permissions", required.Names(),
					"user_permissions", ac.Permissions.Names())
				ra.HandleServiceError(w, r, internal.ErrInsufficientPerms)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
