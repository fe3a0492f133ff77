package middleware

import (
	"context"
	"net/http"

	"github.com/MrEthical07/sceneauth"
)

// Optional attaches the session when the scene cookie verifies and lets the
// request through either way. Rotation still happens.
func Optional(engine *sceneauth.Engine, scene string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session, _, ok := verify(engine, scene, w, r); ok {
				r = r.WithContext(context.WithValue(r.Context(), sessionContextKey{}, session))
			}
			next.ServeHTTP(w, r)
		})
	}
}
