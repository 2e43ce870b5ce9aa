// Command signalcheck runs the warning pipeline against a saved CAP payload
// and prints the resulting signal, advisory, and primary status. Useful for
// inspecting how a given feed snapshot resolves without running the service.
//
// Usage:
//
//	go run ./cmd/signalcheck \
//	  -payload avisos_esp.tar \
//	  -zone 722802 \
//	  -now 2026-02-05T12:00:00Z \
//	  -status 1
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/parquevivo/park-status-service/internal/domain"
)

func main() {
	payloadPath := flag.String("payload", "", "path to a saved warning feed payload (tar archive or raw XML)")
	contentType := flag.String("content-type", "", "Content-Type the payload was served with, if known")
	zone := flag.String("zone", "722802", "geocode of the target zone")
	timezone := flag.String("timezone", "Europe/Madrid", "IANA timezone for local-day classification")
	nowStr := flag.String("now", "", "evaluation instant in RFC 3339 (default: current time)")
	statusCode := flag.Int("status", 0, "authoritative status code 1-6 (0 = absent)")
	flag.Parse()

	if *payloadPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*payloadPath, *contentType, *zone, *timezone, *nowStr, *statusCode); code != 0 {
		os.Exit(code)
	}
}

func run(payloadPath, contentType, zone, timezone, nowStr string, statusCode int) int {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid timezone %q: %v\n", timezone, err)
		return 1
	}

	now := time.Now()
	if nowStr != "" {
		now, err = time.Parse(time.RFC3339, nowStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -now %q: %v\n", nowStr, err)
			return 1
		}
	}

	raw, err := os.ReadFile(payloadPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read payload: %v\n", err)
		return 1
	}

	docs, err := domain.ExtractAlertDocuments(raw, contentType)
	if err != nil {
		if errors.Is(err, domain.ErrUnexpectedPayload) {
			fmt.Fprintf(os.Stderr, "payload not recognized as a warning feed: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stderr, "extract: %v\n", err)
		return 1
	}

	var records []domain.AlertRecord
	for _, doc := range docs {
		records = append(records, domain.ParseAlertDocument(doc)...)
	}

	sig := domain.BuildWarningSignal(records, now, zone, loc)
	sig.FetchedAt = &now

	advisory := domain.ResolveClosureAdvisory(statusCode, &sig)
	primary := domain.ResolvePrimaryStatus(statusCode, advisory)

	fmt.Printf("payload:   %d bytes, %d alert document(s), %d record(s)\n", len(raw), len(docs), len(records))
	fmt.Printf("zone:      %s  (evaluated at %s, %s)\n", zone, now.Format(time.RFC3339), timezone)
	fmt.Printf("status:    %s\n", formatStatusCode(statusCode))
	fmt.Println()

	out, err := json.MarshalIndent(sig, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode signal: %v\n", err)
		return 1
	}
	fmt.Printf("signal:    %s\n", out)
	fmt.Printf("advisory:  %s\n", advisory)
	fmt.Printf("primary:   mode=%s themeCode=%d\n", primary.Mode, primary.ThemeCode)

	return 0
}

func formatStatusCode(code int) string {
	if code == 0 {
		return "absent (defaults open)"
	}
	return fmt.Sprintf("%d", code)
}
