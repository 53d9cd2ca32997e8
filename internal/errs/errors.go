// Package errs defines the error kinds shared across dupfind's core
// components so callers can distinguish them with errors.Is/errors.As
// instead of string matching.
package errs

import (
	"errors"
	"strings"
)

var (
	// ErrAccessDenied marks a directory or file the traversal could not
	// read due to permissions. Non-fatal: the caller skips and continues.
	ErrAccessDenied = errors.New("access denied")

	// ErrIO marks a directory or file I/O failure that isn't a permission
	// problem (disappeared mid-walk, device error, ...). Non-fatal.
	ErrIO = errors.New("i/o error")

	// ErrHashRead marks a failure while sampling a file's content for the
	// streaming fingerprint. The caller substitutes the all-zero sentinel
	// and continues.
	ErrHashRead = errors.New("hash read error")

	// ErrIndexStore marks a persistent Index Store failure (after retries
	// are exhausted for transient ones). Fatal: the run aborts.
	ErrIndexStore = errors.New("index store error")

	// ErrConfigMismatch marks a hash-components bitmask that differs from
	// the one persisted from the previous run. Non-fatal: triggers a
	// silent forced rescan.
	ErrConfigMismatch = errors.New("hash components changed since last run")

	// ErrCancelled marks a run that unwound because of cooperative
	// cancellation (context.Context).
	ErrCancelled = errors.New("cancelled")
)

// Transient reports whether err represents a condition the Index Store
// should retry (e.g. "database is locked") rather than abort on.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return containsAny(msg, "database is locked", "busy", "SQLITE_BUSY")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
