package middleware

import (
	"net/http"
	"reflect"

	"github.com/MrEthical07/sceneauth"
)

// RequireSymbol rejects guarded requests whose session symbol lacks key or
// holds a value outside allowed. It must run after [Guard].
//
// Symbol values come back from JSON decoding, so numbers compare as float64.
func RequireSymbol(key string, allowed ...any) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFromContext(r.Context())
			if !ok || !symbolAllowed(session.Symbol, key, allowed) {
				_ = sceneauth.WriteResultStatus(w, http.StatusForbidden, sceneauth.PlainResult{
					Body: sceneauth.Body{Error: 1, Msg: "forbidden"},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func symbolAllowed(symbol map[string]any, key string, allowed []any) bool {
	v, ok := symbol[key]
	if !ok {
		return false
	}
	if len(allowed) == 0 {
		return true
	}
	if v == nil || !reflect.TypeOf(v).Comparable() {
		return false
	}
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
