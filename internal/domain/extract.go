package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnexpectedPayload reports a non-empty warning payload that contains no
// alert documents at all. This usually means the agency changed its format;
// swallowing it as "no warnings" would produce false negatives for an active
// closure risk, so the caller gets to decide (the serving boundary fails
// open, the refresh loop logs and alerts).
var ErrUnexpectedPayload = errors.New("unexpected warning payload")

// alertDocRe matches one self-contained CAP alert document. (?s) lets the
// body span lines; the lazy body stops at the first closing tag so archives
// holding several documents split correctly.
var alertDocRe = regexp.MustCompile(`(?s)<alert[\s>].*?</alert>`)

// ExtractAlertDocuments returns the alert documents embedded in a raw
// warning payload. The declared content type is not a reliable predictor of
// the actual shape, so archive extraction is always attempted first and the
// raw bytes are scanned as plain text when that yields nothing.
//
// An empty or whitespace-only payload means "no current warnings" and
// returns an empty list. A non-empty payload with zero alert documents
// returns ErrUnexpectedPayload.
func ExtractAlertDocuments(raw []byte, contentType string) ([]string, error) {
	if docs := documentsFromArchive(raw); len(docs) > 0 {
		return docs, nil
	}

	text := string(raw)
	if docs := alertDocRe.FindAllString(text, -1); len(docs) > 0 {
		return docs, nil
	}

	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %d bytes of %q contain no <alert> documents",
		ErrUnexpectedPayload, len(raw), contentType)
}

// documentsFromArchive extracts archive entries and collects the alert
// documents found across them, in entry order then document order. Entries
// without documents are skipped; a buffer that is not a recognizable archive
// yields nil.
func documentsFromArchive(raw []byte) []string {
	var docs []string
	for _, entry := range extractArchiveEntries(raw) {
		docs = append(docs, alertDocRe.FindAllString(entry, -1)...)
	}
	return docs
}
