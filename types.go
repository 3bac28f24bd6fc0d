package bookshop

import (
	"fmt"
	"time"
)

// Logger is the minimal logging surface the package needs. Callers
// can plug in their own implementation via the With* builders.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds the process-wide signing and auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetIssuer() string
	GetAuthScheme() string
	GetTokenExpiration() time.Duration
	GetAuthTokenExpiration() time.Duration
}

// DefaultLogger is the stdout fallback used when callers do not
// supply their own Logger.
var DefaultLogger Logger = defLogger{}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SHOP "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SHOP "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SHOP "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
