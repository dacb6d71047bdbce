// Package prometheus renders authcore counters in Prometheus text
// exposition format. Callers mount [Exporter.Handler] themselves;
// nothing is registered in a global registry and the exporter never
// mutates engine state.
package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/MrEthical07/authcore/metrics"
)

type counterDef struct {
	ID   metrics.MetricID
	Name string
	Help string
}

var counterDefs = []counterDef{
	{metrics.MetricRegisterSuccess, "authcore_register_success_total", "Successful registrations."},
	{metrics.MetricRegisterFailure, "authcore_register_failure_total", "Rejected or failed registrations."},
	{metrics.MetricLoginSuccess, "authcore_login_success_total", "Successful logins."},
	{metrics.MetricLoginFailure, "authcore_login_failure_total", "Failed login attempts."},
	{metrics.MetricLoginLockedOut, "authcore_login_locked_out_total", "Logins refused because the identity was locked out."},
	{metrics.MetricLogout, "authcore_logout_total", "Logouts."},
	{metrics.MetricRefreshSuccess, "authcore_refresh_success_total", "Successful token rotations."},
	{metrics.MetricRefreshFailure, "authcore_refresh_failure_total", "Failed token rotations."},
	{metrics.MetricPasswordResetRequest, "authcore_password_reset_request_total", "Password reset requests, known and unknown emails alike."},
	{metrics.MetricPasswordResetSuccess, "authcore_password_reset_success_total", "Completed password resets."},
	{metrics.MetricPasswordResetFailure, "authcore_password_reset_failure_total", "Rejected password resets."},
	{metrics.MetricPasswordChangeSuccess, "authcore_password_change_success_total", "Completed password changes."},
	{metrics.MetricPasswordChangeFailure, "authcore_password_change_failure_total", "Rejected password changes."},
	{metrics.MetricEmailVerificationSuccess, "authcore_email_verification_success_total", "Completed email verifications."},
	{metrics.MetricEmailVerificationFailure, "authcore_email_verification_failure_total", "Rejected email verifications."},
	{metrics.MetricSessionCreated, "authcore_session_created_total", "Device sessions created."},
	{metrics.MetricSessionEvicted, "authcore_session_evicted_total", "Sessions evicted by the per-user cap."},
	{metrics.MetricSessionSwept, "authcore_session_swept_total", "Sessions removed by the background sweeper."},
	{metrics.MetricSessionRemoved, "authcore_session_removed_total", "Sessions removed explicitly."},
}

// Source is the slice of the engine the exporter reads.
type Source interface {
	MetricsSnapshot() metrics.Snapshot
	AuditDropped() uint64
}

// Exporter renders a [Source] in text exposition format.
type Exporter struct {
	source Source
}

func New(source Source) *Exporter {
	return &Exporter{source: source}
}

// Handler serves the current metrics over HTTP.
func (e *Exporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(e.Render()))
	})
}

// Render returns the full exposition document.
func (e *Exporter) Render() string {
	if e == nil || e.source == nil {
		return ""
	}

	snapshot := e.source.MetricsSnapshot()

	var b strings.Builder
	b.Grow(4096)
	for _, def := range counterDefs {
		writeCounter(&b, def.Name, def.Help, snapshot.Counters[def.ID])
	}
	writeCounter(&b, "authcore_audit_dropped_total", "Audit events dropped under dispatcher backpressure.", e.source.AuditDropped())
	return b.String()
}

func writeCounter(b *strings.Builder, name, help string, value uint64) {
	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(help)
	b.WriteByte('\n')
	b.WriteString("# TYPE ")
	b.WriteString(name)
	b.WriteString(" counter\n")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(strconv.FormatUint(value, 10))
	b.WriteByte('\n')
}
