package sensitivedata

import (
	"strings"

	"github.com/monoforge/monoforge/internal/application/ports"
)

// redactedError carries a scrubbed message but keeps the original error
// reachable through Unwrap, so callers can still classify it (for example
// as a transient publish failure).
type redactedError struct {
	msg   string
	cause error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.cause }

// SafeError returns err with every tracked value removed from its message.
// err is returned unchanged when its message holds no tracked value.
func SafeError(err error, provider ports.SensitiveValueProvider) error {
	if err == nil || provider == nil {
		return err
	}

	original := err.Error()
	msg := original
	for _, secret := range provider.AllValues() {
		if secret != "" {
			msg = strings.ReplaceAll(msg, secret, redactedMarker)
		}
	}
	if msg == original {
		return err
	}
	return &redactedError{msg: msg, cause: err}
}
