// Package service orchestrates the closure-signal pipeline: fetch both
// feeds, run the pure domain stages, and keep the latest evaluation
// available for the HTTP boundary and the optional Kafka sink.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/parquevivo/park-status-service/internal/adapter/municipal"
	"github.com/parquevivo/park-status-service/internal/domain"
	"github.com/parquevivo/park-status-service/internal/observability"
)

// WarningFetcher retrieves the raw weather-warning payload and its declared
// content type. Retry, timeout, and authentication live behind it.
type WarningFetcher interface {
	FetchWarnings(ctx context.Context) (payload []byte, contentType string, err error)
}

// StatusFetcher retrieves the authoritative municipal status.
type StatusFetcher interface {
	FetchStatus(ctx context.Context) (municipal.Status, error)
}

// Publisher sends a finished evaluation downstream.
type Publisher interface {
	PublishEvaluation(ctx context.Context, ev Evaluation) error
}

// Evaluation is one complete resolution of the park's displayed status:
// the authoritative status, the predictive signal, and the two decisions the
// presentation layer renders.
type Evaluation struct {
	ParkID      string               `json:"parkId"`
	Status      *municipal.Status    `json:"status"` // nil when the municipal feed is unreachable
	Signal      domain.WarningSignal `json:"signal"`
	Advisory    domain.AdvisoryState `json:"advisory"`
	Primary     domain.PrimaryStatus `json:"primary"`
	EvaluatedAt time.Time            `json:"evaluatedAt"`
}

// Evaluator runs the pipeline and caches the latest evaluation.
type Evaluator struct {
	warnings  WarningFetcher // nil disables the predictive feed
	status    StatusFetcher
	publisher Publisher // nil disables publishing
	logger    *slog.Logger
	metrics   *observability.Metrics

	parkID          string
	targetZone      string
	loc             *time.Location
	refreshInterval time.Duration

	mu     sync.RWMutex
	latest *Evaluation
}

// New creates an Evaluator. warnings and publisher may be nil to disable the
// predictive feed and the Kafka sink respectively.
func New(warnings WarningFetcher, status StatusFetcher, publisher Publisher,
	logger *slog.Logger, metrics *observability.Metrics,
	parkID, targetZone string, loc *time.Location, refreshInterval time.Duration,
) *Evaluator {
	return &Evaluator{
		warnings:        warnings,
		status:          status,
		publisher:       publisher,
		logger:          logger,
		metrics:         metrics,
		parkID:          parkID,
		targetZone:      targetZone,
		loc:             loc,
		refreshInterval: refreshInterval,
	}
}

// Evaluate runs one full pipeline pass and caches the result.
//
// This is the fail-open boundary: the predictive signal is a supplementary
// enhancement, so any failure in its pipeline is logged, counted, and
// replaced by the all-false empty signal. The authoritative status keeps
// working regardless. A municipal fetch failure leaves the code absent,
// which resolves to default-open.
func (e *Evaluator) Evaluate(ctx context.Context) Evaluation {
	now := clock.Now()

	var statusPtr *municipal.Status
	code := 0
	status, err := e.fetchStatus(ctx)
	if err != nil {
		e.logger.Error("municipal status fetch failed", "error", err)
		e.metrics.FetchErrors.WithLabelValues("status").Inc()
	} else {
		statusPtr = &status
		code = status.Code
	}

	sig := domain.WarningSignal{}
	if e.warnings != nil {
		built, err := e.buildSignal(ctx, now)
		if err != nil {
			e.logger.Error("predictive signal pipeline failed, substituting empty signal", "error", err)
			e.metrics.SignalFailures.Inc()
		} else {
			sig = built
		}
	}

	advisory := domain.ResolveClosureAdvisory(code, &sig)
	primary := domain.ResolvePrimaryStatus(code, advisory)

	ev := Evaluation{
		ParkID:      e.parkID,
		Status:      statusPtr,
		Signal:      sig,
		Advisory:    advisory,
		Primary:     primary,
		EvaluatedAt: now,
	}

	e.recordEvaluation(ev)
	e.publish(ctx, ev)

	e.mu.Lock()
	e.latest = &ev
	e.mu.Unlock()

	return ev
}

// buildSignal runs the leaf stages: payload -> documents -> records ->
// signal. Errors propagate so Evaluate can apply the fail-open policy; the
// "non-empty payload without documents" case is counted separately because
// it usually means the agency changed its format.
func (e *Evaluator) buildSignal(ctx context.Context, now time.Time) (domain.WarningSignal, error) {
	start := clock.Now()
	payload, contentType, err := e.warnings.FetchWarnings(ctx)
	e.metrics.FetchDuration.WithLabelValues("warnings").Observe(clock.Since(start).Seconds())
	if err != nil {
		e.metrics.FetchErrors.WithLabelValues("warnings").Inc()
		return domain.WarningSignal{}, err
	}

	docs, err := domain.ExtractAlertDocuments(payload, contentType)
	if err != nil {
		if errors.Is(err, domain.ErrUnexpectedPayload) {
			e.metrics.PayloadErrors.Inc()
		}
		return domain.WarningSignal{}, err
	}
	e.metrics.DocumentsExtracted.Observe(float64(len(docs)))

	var records []domain.AlertRecord
	for _, doc := range docs {
		records = append(records, domain.ParseAlertDocument(doc)...)
	}
	e.metrics.AlertRecords.Observe(float64(len(records)))

	sig := domain.BuildWarningSignal(records, now, e.targetZone, e.loc)
	fetchedAt := clock.Now()
	sig.FetchedAt = &fetchedAt
	return sig, nil
}

func (e *Evaluator) fetchStatus(ctx context.Context) (municipal.Status, error) {
	start := clock.Now()
	status, err := e.status.FetchStatus(ctx)
	e.metrics.FetchDuration.WithLabelValues("status").Observe(clock.Since(start).Seconds())
	return status, err
}

// Demo returns an evaluation built from a canned signal, bypassing the
// predictive pipeline. The authoritative status comes from the latest real
// evaluation so demos stay anchored to reality.
func (e *Evaluator) Demo(name string) (Evaluation, bool) {
	sig, ok := domain.DemoSignal(name, clock.Now())
	if !ok {
		return Evaluation{}, false
	}

	var statusPtr *municipal.Status
	code := 0
	if latest, have := e.Latest(); have && latest.Status != nil {
		statusPtr = latest.Status
		code = latest.Status.Code
	}

	advisory := domain.ResolveClosureAdvisory(code, &sig)
	return Evaluation{
		ParkID:      e.parkID,
		Status:      statusPtr,
		Signal:      sig,
		Advisory:    advisory,
		Primary:     domain.ResolvePrimaryStatus(code, advisory),
		EvaluatedAt: clock.Now(),
	}, true
}

// Latest returns the most recent evaluation, if any.
func (e *Evaluator) Latest() (Evaluation, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.latest == nil {
		return Evaluation{}, false
	}
	return *e.latest, true
}

// CheckReadiness returns nil once at least one evaluation has completed.
func (e *Evaluator) CheckReadiness(_ context.Context) error {
	if _, ok := e.Latest(); !ok {
		return errors.New("no evaluation completed yet")
	}
	return nil
}

// Run evaluates immediately and then on every refresh tick until the
// context is cancelled.
func (e *Evaluator) Run(ctx context.Context) error {
	e.logger.Info("refresh loop started", "interval", e.refreshInterval)
	e.metrics.RefreshRunning.Set(1)
	defer e.metrics.RefreshRunning.Set(0)

	e.Evaluate(ctx)

	ticker := clock.NewTicker(e.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("refresh loop stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			e.Evaluate(ctx)
		}
	}
}

func (e *Evaluator) recordEvaluation(ev Evaluation) {
	e.metrics.Evaluations.Inc()

	if ev.Signal.HasActiveWarning {
		e.metrics.ActiveWarning.Set(1)
	} else {
		e.metrics.ActiveWarning.Set(0)
	}

	states := []domain.AdvisoryState{
		domain.AdvisoryNone,
		domain.AdvisoryLikelyClosedNow,
		domain.AdvisoryClosingSoon,
		domain.AdvisoryClosingLaterToday,
	}
	for _, s := range states {
		v := 0.0
		if s == ev.Advisory {
			v = 1.0
		}
		e.metrics.AdvisoryState.WithLabelValues(string(s)).Set(v)
	}
}

func (e *Evaluator) publish(ctx context.Context, ev Evaluation) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.PublishEvaluation(ctx, ev); err != nil {
		e.logger.Warn("publish evaluation failed", "error", err)
		e.metrics.PublishErrors.Inc()
		return
	}
	e.metrics.EvaluationsSent.Inc()
}
