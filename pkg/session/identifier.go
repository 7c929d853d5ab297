// Package session identifies and tracks the dashboard sessions a server is
// running.
package session

import (
	cryptorand "crypto/rand"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var sessionNameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9\-]`)

var (
	entropyMu   sync.Mutex
	ulidEntropy = ulid.Monotonic(cryptorand.Reader, 0)
)

// NewID returns a lexically sortable, unique session ID.
func NewID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String())
}

// GenerateSessionID returns a unique session ID prefixed with a sanitized
// form of base, e.g. "ada-example-com-01hx...".
func GenerateSessionID(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "session"
	}
	base = strings.ToLower(strings.ReplaceAll(base, " ", "-"))
	base = sessionNameSanitizer.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	if base == "" {
		base = "session"
	}
	return fmt.Sprintf("%s-%s", base, NewID())
}

// Started returns the creation time encoded in an ID produced by NewID or
// GenerateSessionID.
func Started(id string) (time.Time, bool) {
	if i := strings.LastIndex(id, "-"); i >= 0 {
		id = id[i+1:]
	}
	parsed, err := ulid.ParseStrict(strings.ToUpper(id))
	if err != nil {
		return time.Time{}, false
	}
	return ulid.Time(parsed.Time()), true
}
