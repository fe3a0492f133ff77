package middleware

import (
	"context"
	"net"
	"net/http"

	"github.com/MrEthical07/sceneauth"
)

type sessionContextKey struct{}

// SessionFromContext returns the session attached by [Guard] or [Optional].
func SessionFromContext(ctx context.Context) (*sceneauth.Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*sceneauth.Session)
	return s, ok && s != nil
}

// Guard rejects requests without a valid session cookie for scene. A rotated
// token is written to the response before next runs.
func Guard(engine *sceneauth.Engine, scene string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, res, ok := verify(engine, scene, w, r)
			if !ok {
				_ = sceneauth.WriteResultStatus(w, http.StatusUnauthorized, res)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionContextKey{}, session)))
		})
	}
}

func verify(engine *sceneauth.Engine, scene string, w http.ResponseWriter, r *http.Request) (*sceneauth.Session, sceneauth.Result, bool) {
	ctx := sceneauth.WithClientIP(r.Context(), clientIP(r))
	res, err := engine.Verify(ctx, r, scene)
	if err != nil || res == nil {
		return nil, res, false
	}
	sceneauth.ApplyCookie(sceneauth.ResponseCookies{ResponseWriter: w}, res)
	return res.AuthSession(), res, true
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
