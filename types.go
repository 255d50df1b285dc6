package clubio

import (
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// TokenStore is the single source of truth for the bearer credential.
// Set persists to both memory and durable storage before returning; Clear
// is idempotent. Get returns the empty string when no token is held.
type TokenStore interface {
	Get() string
	Set(token string) error
	Clear() error
}

// PreferenceStore persists the pre-authentication portal selection. It is
// advisory UI state, not part of the credential contract.
type PreferenceStore interface {
	PortalType() UserType
	SetPortalType(t UserType) error
}

// RequestObserver receives request-level telemetry from the Client. All
// methods run best-effort on the request path and must not block.
type RequestObserver interface {
	RecordRequest(method, endpoint string, status int, duration time.Duration)
	RecordTransportFailure(method, endpoint string)
	RecordRetry(endpoint string)
}

// Config holds client options
type Config interface {
	GetBaseURL() string
	GetRequestTimeout() int
	GetCredentialsPath() string
	GetDebug() bool
}

type noopObserver struct{}

func (noopObserver) RecordRequest(string, string, int, time.Duration) {}
func (noopObserver) RecordTransportFailure(string, string)            {}
func (noopObserver) RecordRetry(string)                               {}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] CLUBIO "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] CLUBIO "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] CLUBIO "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] CLUBIO "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
