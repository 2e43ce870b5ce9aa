package domain

import (
	"regexp"
	"strings"
)

var (
	// infoSectionRe matches one repeated <info> section of an alert document.
	infoSectionRe = regexp.MustCompile(`(?s)<info[\s>].*?</info>`)

	// Single-value tags, first match wins.
	onsetRe    = regexp.MustCompile(`(?s)<onset>\s*(.*?)\s*</onset>`)
	expiresRe  = regexp.MustCompile(`(?s)<expires>\s*(.*?)\s*</expires>`)
	severityRe = regexp.MustCompile(`(?s)<severity>\s*(.*?)\s*</severity>`)

	// Named key/value pairs: a wrapper tag holding a valueName and a value.
	// Several entries of the same shape can appear per section (an eventCode
	// for the warning level next to one for the phenomenon type), so the
	// entry is disambiguated by a marker substring of its valueName.
	eventCodeRe = regexp.MustCompile(`(?s)<eventCode>.*?</eventCode>`)
	geocodeRe   = regexp.MustCompile(`(?s)<geocode>.*?</geocode>`)
	valueNameRe = regexp.MustCompile(`(?s)<valueName>\s*(.*?)\s*</valueName>`)
	valueRe     = regexp.MustCompile(`(?s)<value>\s*(.*?)\s*</value>`)
)

// Marker substrings identifying which named entry carries which field.
// The agency names its entries like "AEMET-Meteoalerta fenomeno" and
// "AEMET-Meteoalerta zona".
const (
	phenomenonMarker = "fenomeno"
	zoneMarker       = "zona"
)

// ParseAlertDocument extracts the typed alert records from one alert
// document. Each <info> section produces one record; documents without info
// sections produce none. Severity is lower-cased on read, everything else is
// kept verbatim (trimmed).
func ParseAlertDocument(doc string) []AlertRecord {
	sections := infoSectionRe.FindAllString(doc, -1)

	records := make([]AlertRecord, 0, len(sections))
	for _, section := range sections {
		records = append(records, AlertRecord{
			Onset:      firstTagValue(onsetRe, section),
			Expires:    firstTagValue(expiresRe, section),
			Severity:   Severity(strings.ToLower(firstTagValue(severityRe, section))),
			Phenomenon: selectNamedValue(eventCodeRe, section, phenomenonMarker),
			Zone:       selectNamedValue(geocodeRe, section, zoneMarker),
		})
	}
	return records
}

// firstTagValue returns the first captured tag body, trimmed, or "".
func firstTagValue(re *regexp.Regexp, section string) string {
	m := re.FindStringSubmatch(section)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// selectNamedValue picks the value of a named key/value entry by ranked
// candidate selection: the first entry whose valueName contains the marker
// substring wins; with no marked entry the first entry carrying a value is
// used. The fallback keeps records from documents that drop the agency's
// naming convention usable rather than empty.
func selectNamedValue(entryRe *regexp.Regexp, section, marker string) string {
	fallback := ""
	for _, entry := range entryRe.FindAllString(section, -1) {
		value := firstTagValue(valueRe, entry)
		if value == "" {
			continue
		}
		name := firstTagValue(valueNameRe, entry)
		if strings.Contains(strings.ToLower(name), marker) {
			return value
		}
		if fallback == "" {
			fallback = value
		}
	}
	return fallback
}
