package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/MrEthical07/sceneauth"
	authmw "github.com/MrEthical07/sceneauth/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

const maxSymbolBytes = 16 << 10

type handler struct {
	engine *sceneauth.Engine
	redis  redis.UniversalClient
	log    *slog.Logger
}

func newRouter(engine *sceneauth.Engine, rdb redis.UniversalClient, metrics http.Handler, log *slog.Logger) http.Handler {
	h := &handler{engine: engine, redis: rdb, log: log}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(h.requestLog)
	r.Use(chimw.Recoverer)

	r.Get("/health", h.health)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Route("/{scene}", func(r chi.Router) {
		r.Post("/login", h.login)
		r.Get("/verify", h.verify)
		r.Post("/logout", h.logout)
		r.Get("/me", h.me)
	})
	return r
}

func (h *handler) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.log.Info("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if h.redis != nil {
		if err := h.redis.Ping(r.Context()).Err(); err != nil {
			h.log.Warn("health.redis.unavailable", "err", err)
			http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

// login opens a session for any caller. It is a demo endpoint with no
// credential check.
func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	symbol, err := decodeSymbol(http.MaxBytesReader(w, r.Body, maxSymbolBytes))
	if err != nil {
		_ = sceneauth.WriteResultStatus(w, http.StatusBadRequest, sceneauth.PlainResult{
			Body: sceneauth.Body{Error: 1, Msg: "invalid symbol"},
		})
		return
	}
	res, _ := h.engine.Create(h.context(r), chi.URLParam(r, "scene"), symbol)
	h.write(w, res)
}

func (h *handler) verify(w http.ResponseWriter, r *http.Request) {
	res, _ := h.engine.Verify(h.context(r), r, chi.URLParam(r, "scene"))
	h.write(w, res)
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	res, _ := h.engine.Destroy(h.context(r), r, chi.URLParam(r, "scene"))
	h.write(w, res)
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	authmw.Guard(h.engine, chi.URLParam(r, "scene"))(http.HandlerFunc(writeSession)).ServeHTTP(w, r)
}

func writeSession(w http.ResponseWriter, r *http.Request) {
	s, _ := authmw.SessionFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(struct {
		Scene     string         `json:"scene"`
		Symbol    map[string]any `json:"symbol"`
		ExpiresAt time.Time      `json:"expires_at"`
		Rotated   bool           `json:"rotated"`
	}{s.Scene, s.Symbol, s.ExpiresAt, s.Rotated})
}

func (h *handler) context(r *http.Request) context.Context {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return sceneauth.WithClientIP(r.Context(), ip)
}

func (h *handler) write(w http.ResponseWriter, res sceneauth.Result) {
	if err := sceneauth.WriteResult(w, res); err != nil {
		h.log.Warn("http.write_failed", "err", err)
	}
}

// decodeSymbol accepts an empty body as an empty symbol.
func decodeSymbol(body io.Reader) (map[string]any, error) {
	var symbol map[string]any
	err := json.NewDecoder(body).Decode(&symbol)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	return symbol, err
}
