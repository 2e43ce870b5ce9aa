package domain

import "time"

// Severity is a warning severity level on the CAP four-level scale.
type Severity string

// Severity levels in ascending rank order.
const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
	SeverityExtreme  Severity = "extreme"
)

// severityRank orders severities for max-comparison. Unknown values rank 0
// and never win, so a signal built from unrecognized severities reports nil.
var severityRank = map[Severity]int{
	SeverityMinor:    1,
	SeverityModerate: 2,
	SeveritySevere:   3,
	SeverityExtreme:  4,
}

// AlertRecord is one weather-warning entry extracted from an <info> section.
// Timestamp fields keep the raw CAP strings; parsing happens at evaluation
// time so that a malformed bound can fail closed (see isActive).
type AlertRecord struct {
	Onset      string   // raw CAP onset timestamp, may be empty
	Expires    string   // raw CAP expires timestamp, may be empty
	Severity   Severity // lower-cased on read, may be empty or unrecognized
	Phenomenon string   // compound "CODE;description" form, e.g. "VI;Vientos"
	Zone       string   // space-separated zone codes, e.g. "722801 722802"
}

// WarningSignal is the aggregate predictive state derived from the relevant
// alert records at a reference instant. It is built fresh on every
// evaluation and never mutated afterwards; FetchedAt is stamped by the
// caller that owns the payload fetch.
type WarningSignal struct {
	HasActiveWarning       bool       `json:"hasActiveWarning"`
	HasWarningWithin2Hours bool       `json:"hasWarningWithin2Hours"`
	HasWarningLaterToday   bool       `json:"hasWarningLaterToday"`
	ActiveWarningSeverity  *Severity  `json:"activeWarningSeverity"`
	NextWarningOnset       *time.Time `json:"nextWarningOnset"`
	NextWarningSeverity    *Severity  `json:"nextWarningSeverity"`
	FetchedAt              *time.Time `json:"fetchedAt"`
}

// AdvisoryState classifies the supplementary closure risk shown in addition
// to the authoritative status.
type AdvisoryState string

// Advisory states, from no advisory to strongest prediction.
const (
	AdvisoryNone              AdvisoryState = "none"
	AdvisoryLikelyClosedNow   AdvisoryState = "likely_closed_now"
	AdvisoryClosingSoon       AdvisoryState = "closing_soon"
	AdvisoryClosingLaterToday AdvisoryState = "closing_later_today"
)

// StatusMode says which source drives the displayed status.
type StatusMode string

// Status modes.
const (
	ModeOfficial        StatusMode = "official"
	ModePredictedClosed StatusMode = "predicted_closed"
	ModeClosing         StatusMode = "closing"
)

// PrimaryStatus is the mode and presentation theme actually displayed.
// ThemeCode feeds presentation only; it is not the authoritative code.
type PrimaryStatus struct {
	Mode      StatusMode `json:"mode"`
	ThemeCode int        `json:"themeCode"`
}
