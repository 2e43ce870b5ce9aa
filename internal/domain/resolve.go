package domain

// officialClosureThreshold is the lowest authoritative code that already
// means "closed". At or above it there is nothing left to predict.
const officialClosureThreshold = 5

// ResolveClosureAdvisory combines the authoritative status code with the
// predictive signal into an advisory state, in strict precedence order. A
// code of 0 means the authoritative code is absent.
//
// An official closure (code >= 5) suppresses every advisory: predictions
// only add value while the authority still reports the park open. Below
// that, active beats within-2-hours beats later-today.
func ResolveClosureAdvisory(code int, sig *WarningSignal) AdvisoryState {
	switch {
	case code == 0 || sig == nil:
		return AdvisoryNone
	case code >= officialClosureThreshold:
		return AdvisoryNone
	case sig.HasActiveWarning:
		return AdvisoryLikelyClosedNow
	case sig.HasWarningWithin2Hours:
		return AdvisoryClosingSoon
	case sig.HasWarningLaterToday:
		return AdvisoryClosingLaterToday
	default:
		return AdvisoryNone
	}
}

// ResolvePrimaryStatus merges the authoritative code and the advisory state
// into the displayed mode and theme. Official closure always wins over any
// advisory. An absent code (0) defaults to open.
//
// closing_later_today intentionally falls through to the official branch:
// it is advisory-only and does not override the displayed theme.
func ResolvePrimaryStatus(code int, advisory AdvisoryState) PrimaryStatus {
	if code == 0 {
		return PrimaryStatus{Mode: ModeOfficial, ThemeCode: 1}
	}
	if code >= officialClosureThreshold {
		return PrimaryStatus{Mode: ModeOfficial, ThemeCode: code}
	}

	switch advisory {
	case AdvisoryLikelyClosedNow:
		return PrimaryStatus{Mode: ModePredictedClosed, ThemeCode: 6}
	case AdvisoryClosingSoon:
		return PrimaryStatus{Mode: ModeClosing, ThemeCode: 4}
	default:
		return PrimaryStatus{Mode: ModeOfficial, ThemeCode: code}
	}
}
