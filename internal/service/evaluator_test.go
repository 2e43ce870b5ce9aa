package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parquevivo/park-status-service/internal/adapter/municipal"
	"github.com/parquevivo/park-status-service/internal/domain"
	"github.com/parquevivo/park-status-service/internal/observability"
)

const testZone = "722802"

var testNow = time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC)

// activeWindDoc has a warning bracketing testNow for the target zone.
const activeWindDoc = `<alert xmlns="urn:oasis:names:tc:emergency:cap:1.2">
<info>
  <onset>2026-02-05T10:00:00Z</onset>
  <expires>2026-02-05T18:00:00Z</expires>
  <severity>Severe</severity>
  <eventCode><valueName>AEMET-Meteoalerta fenomeno</valueName><value>VI;Vientos</value></eventCode>
  <geocode><valueName>AEMET-Meteoalerta zona</valueName><value>722802</value></geocode>
</info>
</alert>`

type mockWarnings struct {
	payload     []byte
	contentType string
	err         error
	calls       int
}

func (m *mockWarnings) FetchWarnings(_ context.Context) ([]byte, string, error) {
	m.calls++
	return m.payload, m.contentType, m.err
}

type mockStatus struct {
	status municipal.Status
	err    error
}

func (m *mockStatus) FetchStatus(_ context.Context) (municipal.Status, error) {
	return m.status, m.err
}

type mockPublisher struct {
	published []Evaluation
	err       error
}

func (m *mockPublisher) PublishEvaluation(_ context.Context, ev Evaluation) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, ev)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEvaluator(t *testing.T, warnings WarningFetcher, status StatusFetcher, pub Publisher) *Evaluator {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)
	return New(warnings, status, pub, discardLogger(), observability.NewMetricsForTesting(),
		"parque-grande", testZone, loc, 5*time.Minute)
}

func TestEvaluate(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(testNow))
	defer SetClock(nil)

	t.Run("active warning over open park", func(t *testing.T) {
		warnings := &mockWarnings{payload: []byte(activeWindDoc), contentType: "text/xml"}
		status := &mockStatus{status: municipal.Status{Code: 1}}
		e := newTestEvaluator(t, warnings, status, nil)

		ev := e.Evaluate(context.Background())

		require.NotNil(t, ev.Status)
		assert.Equal(t, 1, ev.Status.Code)
		assert.True(t, ev.Signal.HasActiveWarning)
		require.NotNil(t, ev.Signal.FetchedAt)
		assert.Equal(t, testNow, *ev.Signal.FetchedAt)
		assert.Equal(t, domain.AdvisoryLikelyClosedNow, ev.Advisory)
		assert.Equal(t, domain.PrimaryStatus{Mode: domain.ModePredictedClosed, ThemeCode: 6}, ev.Primary)
		assert.Equal(t, testNow, ev.EvaluatedAt)
	})

	t.Run("official closure suppresses the advisory", func(t *testing.T) {
		warnings := &mockWarnings{payload: []byte(activeWindDoc), contentType: "text/xml"}
		status := &mockStatus{status: municipal.Status{Code: 5, Incident: "Cerrado por temporal"}}
		e := newTestEvaluator(t, warnings, status, nil)

		ev := e.Evaluate(context.Background())

		assert.True(t, ev.Signal.HasActiveWarning)
		assert.Equal(t, domain.AdvisoryNone, ev.Advisory)
		assert.Equal(t, domain.PrimaryStatus{Mode: domain.ModeOfficial, ThemeCode: 5}, ev.Primary)
	})

	t.Run("warning fetch failure fails open", func(t *testing.T) {
		warnings := &mockWarnings{err: errors.New("agency down")}
		status := &mockStatus{status: municipal.Status{Code: 2}}
		e := newTestEvaluator(t, warnings, status, nil)

		ev := e.Evaluate(context.Background())

		assert.Equal(t, domain.WarningSignal{}, ev.Signal)
		assert.Equal(t, domain.AdvisoryNone, ev.Advisory)
		assert.Equal(t, domain.PrimaryStatus{Mode: domain.ModeOfficial, ThemeCode: 2}, ev.Primary)
	})

	t.Run("unexpected payload fails open", func(t *testing.T) {
		warnings := &mockWarnings{payload: []byte(`{"surprise":"new format"}`), contentType: "application/json"}
		status := &mockStatus{status: municipal.Status{Code: 1}}
		e := newTestEvaluator(t, warnings, status, nil)

		ev := e.Evaluate(context.Background())

		assert.Equal(t, domain.WarningSignal{}, ev.Signal)
		assert.Equal(t, domain.AdvisoryNone, ev.Advisory)
	})

	t.Run("empty payload means no warnings, not a failure", func(t *testing.T) {
		warnings := &mockWarnings{payload: nil, contentType: "text/plain"}
		status := &mockStatus{status: municipal.Status{Code: 1}}
		e := newTestEvaluator(t, warnings, status, nil)

		ev := e.Evaluate(context.Background())

		require.NotNil(t, ev.Signal.FetchedAt)
		assert.False(t, ev.Signal.HasActiveWarning)
		assert.Equal(t, domain.AdvisoryNone, ev.Advisory)
	})

	t.Run("municipal failure defaults open", func(t *testing.T) {
		warnings := &mockWarnings{payload: []byte(activeWindDoc), contentType: "text/xml"}
		status := &mockStatus{err: errors.New("town hall offline")}
		e := newTestEvaluator(t, warnings, status, nil)

		ev := e.Evaluate(context.Background())

		assert.Nil(t, ev.Status)
		// Absent code: no advisory, default-open theme.
		assert.Equal(t, domain.AdvisoryNone, ev.Advisory)
		assert.Equal(t, domain.PrimaryStatus{Mode: domain.ModeOfficial, ThemeCode: 1}, ev.Primary)
	})

	t.Run("disabled predictive feed runs on status alone", func(t *testing.T) {
		status := &mockStatus{status: municipal.Status{Code: 3}}
		e := newTestEvaluator(t, nil, status, nil)

		ev := e.Evaluate(context.Background())

		assert.Equal(t, domain.WarningSignal{}, ev.Signal)
		assert.Equal(t, domain.PrimaryStatus{Mode: domain.ModeOfficial, ThemeCode: 3}, ev.Primary)
	})

	t.Run("publishes the evaluation", func(t *testing.T) {
		warnings := &mockWarnings{payload: []byte(activeWindDoc), contentType: "text/xml"}
		status := &mockStatus{status: municipal.Status{Code: 1}}
		pub := &mockPublisher{}
		e := newTestEvaluator(t, warnings, status, pub)

		e.Evaluate(context.Background())

		require.Len(t, pub.published, 1)
		assert.Equal(t, "parque-grande", pub.published[0].ParkID)
	})

	t.Run("publish failure does not break the evaluation", func(t *testing.T) {
		status := &mockStatus{status: municipal.Status{Code: 1}}
		pub := &mockPublisher{err: errors.New("broker gone")}
		e := newTestEvaluator(t, nil, status, pub)

		ev := e.Evaluate(context.Background())

		assert.Equal(t, domain.PrimaryStatus{Mode: domain.ModeOfficial, ThemeCode: 1}, ev.Primary)
	})
}

func TestLatestAndReadiness(t *testing.T) {
	status := &mockStatus{status: municipal.Status{Code: 1}}
	e := newTestEvaluator(t, nil, status, nil)

	_, ok := e.Latest()
	assert.False(t, ok)
	require.Error(t, e.CheckReadiness(context.Background()))

	e.Evaluate(context.Background())

	latest, ok := e.Latest()
	require.True(t, ok)
	assert.Equal(t, "parque-grande", latest.ParkID)
	assert.NoError(t, e.CheckReadiness(context.Background()))
}

func TestDemo(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(testNow))
	defer SetClock(nil)

	status := &mockStatus{status: municipal.Status{Code: 2}}
	e := newTestEvaluator(t, nil, status, nil)

	t.Run("before any real evaluation the code is absent", func(t *testing.T) {
		ev, ok := e.Demo("active")
		require.True(t, ok)
		assert.True(t, ev.Signal.HasActiveWarning)
		// No authoritative code yet: advisory suppressed, default open.
		assert.Equal(t, domain.AdvisoryNone, ev.Advisory)
		assert.Equal(t, domain.PrimaryStatus{Mode: domain.ModeOfficial, ThemeCode: 1}, ev.Primary)
	})

	t.Run("anchored to the latest real status", func(t *testing.T) {
		e.Evaluate(context.Background())

		ev, ok := e.Demo("active")
		require.True(t, ok)
		assert.Equal(t, domain.AdvisoryLikelyClosedNow, ev.Advisory)
		assert.Equal(t, domain.PrimaryStatus{Mode: domain.ModePredictedClosed, ThemeCode: 6}, ev.Primary)

		ev, ok = e.Demo("soon")
		require.True(t, ok)
		assert.Equal(t, domain.AdvisoryClosingSoon, ev.Advisory)
		assert.Equal(t, domain.PrimaryStatus{Mode: domain.ModeClosing, ThemeCode: 4}, ev.Primary)

		ev, ok = e.Demo("later")
		require.True(t, ok)
		assert.Equal(t, domain.AdvisoryClosingLaterToday, ev.Advisory)
		assert.Equal(t, domain.PrimaryStatus{Mode: domain.ModeOfficial, ThemeCode: 2}, ev.Primary)

		ev, ok = e.Demo("none")
		require.True(t, ok)
		assert.Equal(t, domain.AdvisoryNone, ev.Advisory)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, ok := e.Demo("apocalypse")
		assert.False(t, ok)
	})
}

func TestRun(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(testNow)
	SetClock(fakeClock)
	defer SetClock(nil)

	warnings := &mockWarnings{payload: []byte(activeWindDoc), contentType: "text/xml"}
	status := &mockStatus{status: municipal.Status{Code: 1}}
	e := newTestEvaluator(t, warnings, status, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = e.Run(ctx)
	}()

	// The loop evaluates once immediately on start.
	require.Eventually(t, func() bool {
		_, ok := e.Latest()
		return ok
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, warnings.calls)

	cancel()
	<-done
}
