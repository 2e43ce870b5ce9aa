// Package domain implements the predictive closure-signal engine for the
// park status service.
//
// # Data Sources
//
// The weather agency publishes CAP-style alert documents for geographic
// warning zones. The payload behind its two-step data endpoint is usually a
// tar archive of XML files, but the declared content type is unreliable and
// the same endpoint has been observed serving bare XML, so extraction always
// tries the archive layout first and falls back to scanning the raw text for
// <alert> sections.
//
// The municipal feed supplies the authoritative park status as an integer
// code 1..6 (5 and 6 mean the park is officially closed). This package never
// interprets the code beyond the >= 5 closure threshold; it is owned by the
// municipality.
//
// # Alert Fields
//
// Each <info> section of an alert document yields one AlertRecord:
//
//	onset / expires:   CAP validity window, RFC 3339 with numeric offsets.
//	severity:          minor | moderate | severe | extreme (lower-cased on read).
//	phenomenon:        eventCode value, compound "CODE;description" form,
//	                   e.g. "VI;Vientos". VI (wind) and NE (snow) are the
//	                   closure-relevant codes.
//	zone:              geocode value, possibly several space-separated zone
//	                   codes. Matched by substring against the target zone.
//
// Timestamps that fail to parse exclude a record from "active" rather than
// including it: a broken validity bound must never promote a warning.
//
// # Pipeline
//
// Data flows leaf to root: raw bytes -> documents -> records -> relevant
// records -> WarningSignal -> advisory state -> primary status. Every stage
// is a pure function over immutable inputs; "now" is always an explicit
// parameter so tests can pin time.
package domain
