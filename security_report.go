package sceneauth

import (
	"net/http"

	"github.com/MrEthical07/sceneauth/internal/security"
)

// SecurityReport summarizes the hardening state of an Engine's configuration.
type SecurityReport = security.Report

// SecurityReport returns the posture of the running configuration, including
// the codes of any [Config.Lint] warnings.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}
	cfg := e.config

	return security.BuildReport(security.ReportInput{
		ProductionMode:         cfg.Security.ProductionMode,
		SigningAlgorithm:       cfg.Token.SigningMethod,
		KeyID:                  cfg.Token.KeyID,
		VerifyKeyCount:         len(cfg.Token.VerifyKeys),
		AccessTTL:              cfg.Token.AccessTTL,
		RefreshTTL:             cfg.Refresh.TTL,
		SlidingRenewal:         cfg.Refresh.SlidingRenewal,
		EnableRotationThrottle: cfg.Security.EnableRotationThrottle,
		MaxRotations:           cfg.Security.MaxRotations,
		RotationWindow:         cfg.Security.RotationWindow,
		CookieSecure:           cfg.Cookie.Secure,
		CookieHTTPOnly:         cfg.Cookie.HTTPOnly,
		CookieSameSite:         sameSiteName(cfg.Cookie.SameSite),
		Issuer:                 cfg.Token.Issuer,
		Audience:               cfg.Token.Audience,
		AuditEnabled:           cfg.Audit.Enabled,
		LintCodes:              cfg.Lint().Codes(),
	})
}

func sameSiteName(s http.SameSite) string {
	switch s {
	case http.SameSiteLaxMode:
		return "lax"
	case http.SameSiteStrictMode:
		return "strict"
	case http.SameSiteNoneMode:
		return "none"
	default:
		return "default"
	}
}
