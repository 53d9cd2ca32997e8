// Package metadata implements the per-path stat probe: size, modification
// time, and creation (birth) time where the platform exposes it.
package metadata

import (
	"fmt"
	"os"
	"sync"
)

// Info is the result of probing a single path.
type Info struct {
	Size     int64
	Modified int64 // seconds since Unix epoch, UTC
	Created  int64 // seconds since Unix epoch, UTC; 0 if unobtainable
}

var (
	birthWarnOnce sync.Once
	birthWarnFunc func()
)

// OnBirthTimeUnavailable registers the callback invoked at most once per
// process the first time the platform cannot supply a creation time. The
// orchestrator wires this to a single log.Warn call.
func OnBirthTimeUnavailable(fn func()) {
	birthWarnFunc = fn
}

func warnBirthUnavailable() {
	birthWarnOnce.Do(func() {
		if birthWarnFunc != nil {
			birthWarnFunc()
		}
	})
}

// Probe stats path and returns its size, modification time, and creation
// time. Errors propagate to the caller as "skip this path".
func Probe(path string) (Info, error) {
	st, err := os.Lstat(path)
	if err != nil {
		return Info{}, fmt.Errorf("stat %s: %w", path, err)
	}

	created, ok := birthTime(path, st)
	if !ok {
		created = 0
		warnBirthUnavailable()
	}

	return Info{
		Size:     st.Size(),
		Modified: st.ModTime().UTC().Unix(),
		Created:  created,
	}, nil
}
