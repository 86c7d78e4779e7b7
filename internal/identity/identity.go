// Package identity derives the anonymous voter identity used as the join key
// for story_votes rows.
//
// An identity is the lowercase hex SHA-256 of a fixed, ordered set of browser
// signals. It is a best-effort fingerprint, not a security boundary: two
// visitors with identical signals share one identity and one vote slot.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/tbourn/cuentos-backend/internal/utils"
)

// Request headers carrying the identity signals.
const (
	HeaderFingerprint         = "X-Voter-Fingerprint"
	HeaderTimezoneOffset      = "X-Timezone-Offset"
	HeaderColorDepth          = "X-Color-Depth"
	HeaderScreenSize          = "X-Screen-Size"
	HeaderHardwareConcurrency = "X-Hardware-Concurrency"
)

// Defaults substituted for unreadable signals.
const (
	DefaultUserAgent  = "unknown"
	DefaultLanguage   = "und"
	DefaultColorDepth = 24
)

const separator = "|||"

// Signals is the ordered tuple an identity is derived from.
type Signals struct {
	UserAgent           string
	Language            string
	TimezoneOffset      int // minutes
	ColorDepth          int
	ScreenWidth         int
	ScreenHeight        int
	HardwareConcurrency int // 0 when unavailable
}

// Derive returns the identity for s. It is deterministic and never fails.
func Derive(s Signals) string {
	ua := s.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	lang := s.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	raw := strings.Join([]string{
		ua,
		lang,
		strconv.Itoa(s.TimezoneOffset),
		strconv.Itoa(s.ColorDepth),
		strconv.Itoa(s.ScreenWidth) + "x" + strconv.Itoa(s.ScreenHeight),
		strconv.Itoa(s.HardwareConcurrency),
	}, separator)

	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// FromRequest reads the signals from r's headers. Missing or malformed
// values fall back to the package defaults.
func FromRequest(r *http.Request) Signals {
	h := r.Header
	w, ht := parseScreen(h.Get(HeaderScreenSize))
	return Signals{
		UserAgent:           strings.TrimSpace(h.Get("User-Agent")),
		Language:            primaryLanguage(h.Get("Accept-Language")),
		TimezoneOffset:      intHeader(h.Get(HeaderTimezoneOffset), 0),
		ColorDepth:          intHeader(h.Get(HeaderColorDepth), DefaultColorDepth),
		ScreenWidth:         w,
		ScreenHeight:        ht,
		HardwareConcurrency: max(intHeader(h.Get(HeaderHardwareConcurrency), 0), 0),
	}
}

var fingerprintRe = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Valid reports whether id looks like a derived identity (64 lowercase hex).
func Valid(id string) bool { return fingerprintRe.MatchString(id) }

// Resolve returns the identity for r. A well-formed X-Voter-Fingerprint sent
// by a client that derived its own identity wins; otherwise the identity is
// derived from the request headers.
func Resolve(r *http.Request) string {
	if fp := strings.TrimSpace(r.Header.Get(HeaderFingerprint)); Valid(fp) {
		return fp
	}
	return Derive(FromRequest(r))
}

// primaryLanguage returns the canonical form of the highest-weighted tag in
// an Accept-Language header.
func primaryLanguage(h string) string {
	if strings.TrimSpace(h) == "" {
		return DefaultLanguage
	}
	tags, _, err := language.ParseAcceptLanguage(h)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage
	}
	return tags[0].String()
}

func intHeader(v string, def int) int {
	return utils.AtoiDefault(strings.TrimSpace(v), def)
}

func parseScreen(v string) (int, int) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(v)), "x")
	if !ok {
		return 0, 0
	}
	wi, err1 := strconv.Atoi(w)
	hi, err2 := strconv.Atoi(h)
	if err1 != nil || err2 != nil || wi < 0 || hi < 0 {
		return 0, 0
	}
	return wi, hi
}
