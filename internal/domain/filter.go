package domain

import (
	"strings"
	"time"
)

// closurePhenomena are the phenomenon codes that can close the park:
// VI (viento / wind) and NE (nieve / snow). Rain, fog and coastal codes do
// not trigger closures and are filtered out here.
var closurePhenomena = map[string]bool{
	"VI": true,
	"NE": true,
}

// isRelevant reports whether a record concerns the target zone and a
// closure-relevant phenomenon. Relevance is a conjunction: a missing
// phenomenon, a zone field not containing the target code, or an unrelated
// phenomenon code each make the record irrelevant.
//
// Zone fields may list several space-separated codes, so matching is
// substring containment against the single target code. That is a fixed
// contract: if the agency ever changes delimiter or code length this must be
// revisited deliberately, not silently.
func isRelevant(rec AlertRecord, targetZone string) bool {
	if rec.Phenomenon == "" || rec.Zone == "" {
		return false
	}
	if !strings.Contains(rec.Zone, targetZone) {
		return false
	}
	return closurePhenomena[phenomenonCode(rec.Phenomenon)]
}

// phenomenonCode returns the leading code segment of a compound
// "CODE;description" phenomenon value, upper-cased and trimmed.
func phenomenonCode(phenomenon string) string {
	code, _, _ := strings.Cut(phenomenon, ";")
	return strings.ToUpper(strings.TrimSpace(code))
}

// isActive reports whether a record's validity window brackets now. A bound
// that is present but unparseable forces false regardless of the other
// bound: bad timestamps fail closed, never open. A record with neither bound
// is active.
func isActive(rec AlertRecord, now time.Time) bool {
	if rec.Onset != "" {
		onset, ok := parseCAPTime(rec.Onset)
		if !ok || onset.After(now) {
			return false
		}
	}
	if rec.Expires != "" {
		expires, ok := parseCAPTime(rec.Expires)
		if !ok || !expires.After(now) {
			return false
		}
	}
	return true
}

// parseCAPTime parses a CAP timestamp (RFC 3339 with numeric offset or Z).
func parseCAPTime(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
