package security

import "time"

// Report summarizes the security posture of an Engine configuration.
type Report struct {
	ProductionMode         bool
	SigningAlgorithm       string
	KeyRotationReady       bool
	AccessTTL              time.Duration
	RefreshTTL             time.Duration
	SlidingRenewal         bool
	RotationThrottleActive bool
	CookieSecure           bool
	CookieHTTPOnly         bool
	CookieSameSite         string
	IssuerAudienceBound    bool
	AuditEnabled           bool
	LintWarnings           []string
}

// ReportInput is the flattened configuration a Report is derived from.
type ReportInput struct {
	ProductionMode         bool
	SigningAlgorithm       string
	KeyID                  string
	VerifyKeyCount         int
	AccessTTL              time.Duration
	RefreshTTL             time.Duration
	SlidingRenewal         bool
	EnableRotationThrottle bool
	MaxRotations           int
	RotationWindow         time.Duration
	CookieSecure           bool
	CookieHTTPOnly         bool
	CookieSameSite         string
	Issuer                 string
	Audience               string
	AuditEnabled           bool
	LintCodes              []string
}

func BuildReport(input ReportInput) Report {
	throttle := input.EnableRotationThrottle &&
		input.MaxRotations > 0 &&
		input.RotationWindow > 0

	return Report{
		ProductionMode:         input.ProductionMode,
		SigningAlgorithm:       input.SigningAlgorithm,
		KeyRotationReady:       input.KeyID != "" && input.VerifyKeyCount > 1,
		AccessTTL:              input.AccessTTL,
		RefreshTTL:             input.RefreshTTL,
		SlidingRenewal:         input.SlidingRenewal,
		RotationThrottleActive: throttle,
		CookieSecure:           input.CookieSecure,
		CookieHTTPOnly:         input.CookieHTTPOnly,
		CookieSameSite:         input.CookieSameSite,
		IssuerAudienceBound:    input.Issuer != "" && input.Audience != "",
		AuditEnabled:           input.AuditEnabled,
		LintWarnings:           append([]string(nil), input.LintCodes...),
	}
}
