package internaldefs

import (
	"github.com/MrEthical07/sceneauth"
)

// CounterDef binds an Engine counter to its exported name.
type CounterDef struct {
	ID   sceneauth.MetricID
	Name string
	Help string
}

// HistogramDef binds an Engine histogram to its exported name.
type HistogramDef struct {
	ID   sceneauth.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter name for dropped audit events.
const AuditDroppedName = "sceneauth_audit_dropped_total"

// AuditDroppedHelp describes [AuditDroppedName].
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

// CounterDefs lists every exported counter in stable order.
var CounterDefs = []CounterDef{
	{ID: sceneauth.MetricLoginSuccess, Name: "sceneauth_login_success_total", Help: "Sessions opened by Create."},
	{ID: sceneauth.MetricLoginFailure, Name: "sceneauth_login_failure_total", Help: "Create calls that failed."},
	{ID: sceneauth.MetricVerifySuccess, Name: "sceneauth_verify_success_total", Help: "Verify calls that accepted the token."},
	{ID: sceneauth.MetricVerifyFailure, Name: "sceneauth_verify_failure_total", Help: "Verify calls that failed."},
	{ID: sceneauth.MetricMissingCredential, Name: "sceneauth_missing_credential_total", Help: "Verify calls without a scene cookie."},
	{ID: sceneauth.MetricInvalidToken, Name: "sceneauth_invalid_token_total", Help: "Tokens rejected on signature, structure or scene."},
	{ID: sceneauth.MetricTokenRotated, Name: "sceneauth_token_rotated_total", Help: "Expired tokens replaced through a live refresh record."},
	{ID: sceneauth.MetricRefreshExpired, Name: "sceneauth_refresh_expired_total", Help: "Expired tokens without a live matching refresh record."},
	{ID: sceneauth.MetricRefreshRateLimited, Name: "sceneauth_refresh_rate_limited_total", Help: "Rotations denied by the throttle."},
	{ID: sceneauth.MetricRefreshRenewFailure, Name: "sceneauth_refresh_renew_failure_total", Help: "Sliding renewals that failed after rotation."},
	{ID: sceneauth.MetricStorageFailure, Name: "sceneauth_storage_failure_total", Help: "Refresh store I/O failures."},
	{ID: sceneauth.MetricTokenMintFailure, Name: "sceneauth_token_mint_failure_total", Help: "Token signing failures."},
	{ID: sceneauth.MetricLogout, Name: "sceneauth_logout_total", Help: "Destroy calls that cleared a refresh record."},
	{ID: sceneauth.MetricLogoutNoop, Name: "sceneauth_logout_noop_total", Help: "Destroy calls without a usable token."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: sceneauth.MetricVerifyLatency, Name: "sceneauth_verify_latency_seconds", Help: "Verify latency histogram."},
}

// HistogramUpperBounds are the finite bucket bounds in seconds. The eighth
// bucket is +Inf.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names each bucket, +Inf included, for gauge-per-bucket exporters.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed eight-bucket array.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
