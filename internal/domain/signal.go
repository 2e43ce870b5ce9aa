package domain

import "time"

// upcomingWindow is how far ahead of now an onset still counts as
// "closing soon" rather than "later today".
const upcomingWindow = 2 * time.Hour

// BuildWarningSignal reduces a list of alert records to the aggregate
// predictive signal at the reference instant now.
//
// The currently active relevant records drive HasActiveWarning and
// ActiveWarningSeverity (highest rank among them, nil when none carries a
// recognized severity). Independently, the relevant record with the earliest
// onset strictly after now becomes the "next upcoming" warning: its onset is
// classified into exactly one of the within-2-hours or later-today buckets,
// where "today" means the same calendar date as now in loc. An onset beyond
// today sets neither flag but still populates the next-warning fields.
//
// FetchedAt is left nil; the caller that fetched the payload stamps it.
// Given identical inputs the result is always identical.
func BuildWarningSignal(records []AlertRecord, now time.Time, targetZone string, loc *time.Location) WarningSignal {
	var sig WarningSignal

	relevant := make([]AlertRecord, 0, len(records))
	for _, rec := range records {
		if isRelevant(rec, targetZone) {
			relevant = append(relevant, rec)
		}
	}

	for _, rec := range relevant {
		if !isActive(rec, now) {
			continue
		}
		sig.HasActiveWarning = true
		if outranks(rec.Severity, sig.ActiveWarningSeverity) {
			sev := rec.Severity
			sig.ActiveWarningSeverity = &sev
		}
	}

	next, onset, ok := nextUpcoming(relevant, now)
	if !ok {
		return sig
	}

	sig.NextWarningOnset = &onset
	if next.Severity != "" {
		sev := next.Severity
		sig.NextWarningSeverity = &sev
	}

	switch {
	case !onset.After(now.Add(upcomingWindow)):
		sig.HasWarningWithin2Hours = true
	case sameLocalDay(onset, now, loc):
		sig.HasWarningLaterToday = true
	}

	return sig
}

// nextUpcoming picks the record with the earliest parseable onset strictly
// after now. Ties keep the earlier record in document order.
func nextUpcoming(records []AlertRecord, now time.Time) (AlertRecord, time.Time, bool) {
	var (
		best      AlertRecord
		bestOnset time.Time
		found     bool
	)
	for _, rec := range records {
		onset, ok := parseCAPTime(rec.Onset)
		if !ok || !onset.After(now) {
			continue
		}
		if !found || onset.Before(bestOnset) {
			best, bestOnset, found = rec, onset, true
		}
	}
	return best, bestOnset, found
}

// outranks reports whether sev beats the current maximum. Unrecognized
// severities rank zero and never win.
func outranks(sev Severity, current *Severity) bool {
	if severityRank[sev] == 0 {
		return false
	}
	if current == nil {
		return true
	}
	return severityRank[sev] > severityRank[*current]
}

func sameLocalDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// DemoSignal returns the canned signal for a demo mode name, bypassing the
// real pipeline. The mapping is fixed literals; unknown names report false.
func DemoSignal(name string, now time.Time) (WarningSignal, bool) {
	fetched := now
	switch name {
	case "none":
		return WarningSignal{FetchedAt: &fetched}, true
	case "active":
		sev := SeveritySevere
		return WarningSignal{
			HasActiveWarning:      true,
			ActiveWarningSeverity: &sev,
			FetchedAt:             &fetched,
		}, true
	case "soon":
		sev := SeveritySevere
		onset := now.Add(time.Hour)
		return WarningSignal{
			HasWarningWithin2Hours: true,
			NextWarningOnset:       &onset,
			NextWarningSeverity:    &sev,
			FetchedAt:              &fetched,
		}, true
	case "later":
		sev := SeverityModerate
		onset := now.Add(6 * time.Hour)
		return WarningSignal{
			HasWarningLaterToday: true,
			NextWarningOnset:     &onset,
			NextWarningSeverity:  &sev,
			FetchedAt:            &fetched,
		}, true
	}
	return WarningSignal{}, false
}
