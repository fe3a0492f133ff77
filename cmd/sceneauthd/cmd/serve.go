package cmd

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrEthical07/sceneauth"
	promexport "github.com/MrEthical07/sceneauth/metrics/export/prometheus"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	addr           string
	redisAddr      string
	redisPassword  string
	keyFile        string
	issuer         string
	audience       string
	accessTTL      time.Duration
	refreshTTL     time.Duration
	sliding        bool
	insecureCookie bool
	cookieDomain   string
	audit          bool
	logLevel       string
	dev            bool
}

var serveOpts serveOptions

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP daemon",
	Long: `Start the reference HTTP daemon.

POST /{scene}/login is a demo endpoint: it performs no credential check and
opens a session for whatever JSON symbol the client sends. Do not expose it
as-is. A real host verifies the caller first (examples/http-minimal checks an
argon2id password) and only then calls Engine.Create.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return runServe(ctx, serveOpts)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	f := serveCmd.Flags()
	f.StringVar(&serveOpts.addr, "addr", envString("SCENEAUTH_ADDR", ":8080"), "Listen address")
	f.StringVar(&serveOpts.redisAddr, "redis-addr", envString("REDIS_ADDR", "127.0.0.1:6379"), "Redis address")
	f.StringVar(&serveOpts.redisPassword, "redis-password", envString("REDIS_PASSWORD", ""), "Redis password")
	f.StringVar(&serveOpts.keyFile, "key-file", envString("SCENEAUTH_KEY_FILE", ""), "Ed25519 private key (PEM or raw)")
	f.StringVar(&serveOpts.issuer, "issuer", envString("SCENEAUTH_ISSUER", "sceneauthd"), "Token issuer")
	f.StringVar(&serveOpts.audience, "audience", envString("SCENEAUTH_AUDIENCE", ""), "Token audience")
	f.DurationVar(&serveOpts.accessTTL, "access-ttl", envDuration("SCENEAUTH_ACCESS_TTL", 5*time.Minute), "Access token lifetime")
	f.DurationVar(&serveOpts.refreshTTL, "refresh-ttl", envDuration("SCENEAUTH_REFRESH_TTL", sceneauth.DefaultRefreshTTL), "Refresh record lifetime")
	f.BoolVar(&serveOpts.sliding, "sliding", envBool("SCENEAUTH_SLIDING", false), "Restart the refresh lifetime on every rotation")
	f.BoolVar(&serveOpts.insecureCookie, "insecure-cookie", envBool("SCENEAUTH_INSECURE_COOKIE", false), "Drop the Secure cookie attribute")
	f.StringVar(&serveOpts.cookieDomain, "cookie-domain", envString("SCENEAUTH_COOKIE_DOMAIN", ""), "Cookie domain")
	f.BoolVar(&serveOpts.audit, "audit", envBool("SCENEAUTH_AUDIT", true), "Write audit events to stderr")
	f.StringVar(&serveOpts.logLevel, "log-level", envString("LOG_LEVEL", "info"), "debug, info, warn or error")
	f.BoolVar(&serveOpts.dev, "dev", envBool("SCENEAUTH_DEV", false), "Use in-memory Redis and an ephemeral key")
}

// buildConfig maps options onto the engine configuration.
func buildConfig(opts serveOptions) (sceneauth.Config, bool, error) {
	priv, generated, err := loadSigningKey(opts.keyFile, opts.dev)
	if err != nil {
		return sceneauth.Config{}, false, err
	}

	cfg := sceneauth.DefaultConfig()
	cfg.Token.PrivateKey = priv
	cfg.Token.PublicKey = []byte(priv.Public().(ed25519.PublicKey))
	cfg.Token.Issuer = opts.issuer
	cfg.Token.Audience = opts.audience
	cfg.Token.AccessTTL = opts.accessTTL
	cfg.Refresh.TTL = opts.refreshTTL
	cfg.Refresh.SlidingRenewal = opts.sliding
	cfg.Cookie.Secure = !opts.insecureCookie
	cfg.Cookie.Domain = opts.cookieDomain
	cfg.Audit.Enabled = opts.audit
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	cfg.Security.ProductionMode = !opts.dev && !opts.insecureCookie
	return cfg, generated, nil
}

func runServe(ctx context.Context, opts serveOptions) error {
	log := newLogger(os.Stdout, opts.logLevel)

	cfg, ephemeralKey, err := buildConfig(opts)
	if err != nil {
		return err
	}
	if ephemeralKey {
		log.Warn("signing.key.ephemeral", "note", "sessions will not survive a restart")
	}
	for _, w := range cfg.Lint() {
		log.Warn("config.lint", "code", w.Code, "message", w.Message)
	}

	redisAddr := opts.redisAddr
	if opts.dev {
		mr, err := miniredis.Run()
		if err != nil {
			return fmt.Errorf("start in-memory redis: %w", err)
		}
		defer mr.Close()
		redisAddr = mr.Addr()
		log.Info("redis.in_memory", "addr", redisAddr)
	}
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr, Password: opts.redisPassword})
	defer rdb.Close()

	b := sceneauth.New().WithConfig(cfg).WithRedis(rdb).WithLogger(log)
	if opts.audit {
		b = b.WithAuditSink(sceneauth.NewJSONWriterSink(os.Stderr))
	}
	engine, err := b.Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := engine.Shutdown(drainCtx); err != nil {
			log.Warn("audit.drain_incomplete", "error", err, "dropped", engine.AuditDropped())
		}
	}()

	exporter, err := promexport.NewExporter(engine)
	if err != nil {
		return fmt.Errorf("metrics exporter: %w", err)
	}

	server := &http.Server{
		Addr:              opts.addr,
		Handler:           newRouter(engine, rdb, exporter.Handler(), log),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	done := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			done <- fmt.Errorf("server failed: %w", err)
			return
		}
		done <- nil
	}()
	log.Info("http.listening", "addr", opts.addr)

	select {
	case <-ctx.Done():
		log.Info("http.shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-done:
		return err
	}
}
