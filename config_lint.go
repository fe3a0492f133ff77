package sceneauth

import "time"

// LintWarning is a non-fatal configuration finding.
type LintWarning struct {
	Code    string
	Message string
}

// LintWarnings is the ordered result of [Config.Lint].
type LintWarnings []LintWarning

// Codes returns the warning codes in order.
func (ws LintWarnings) Codes() []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Code)
	}
	return out
}

// Lint reports settings that are valid but risky. It never fails; run
// [Config.Validate] for hard errors.
func (c *Config) Lint() LintWarnings {
	var ws LintWarnings
	add := func(code, msg string) {
		ws = append(ws, LintWarning{Code: code, Message: msg})
	}

	if c.Token.Leeway > time.Minute {
		add("leeway_large", "token leeway above 1m lets expired tokens skip rotation")
	}
	if c.Token.AccessTTL > 10*time.Minute {
		add("access_ttl_long", "long access TTL delays logout taking effect on other devices")
	}
	if c.Refresh.TTL > 30*24*time.Hour {
		add("refresh_ttl_long", "refresh TTL above 30d")
	}
	if !c.Security.EnableRotationThrottle {
		add("rate_limits_disabled", "rotation throttle disabled")
	}
	if c.Refresh.SlidingRenewal {
		add("sliding_renewal_unbounded", "sliding renewal keeps active sessions alive indefinitely")
	}
	if !c.Cookie.Secure {
		add("cookie_insecure", "scene cookie is sent over plain HTTP")
	}
	if !c.Cookie.HTTPOnly {
		add("cookie_script_readable", "scene cookie is readable from scripts")
	}
	if c.Token.Issuer == "" || c.Token.Audience == "" {
		add("token_unscoped", "tokens carry no issuer or audience")
	}
	return ws
}
