// Package watchdog compares a local node's chain head against a remote
// reference node and raises cooldown-gated alerts when the local node
// falls behind or stops answering.
package watchdog

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vietddude/ethalive/internal/core/domain"
	"github.com/vietddude/ethalive/internal/infra/notify"
	"github.com/vietddude/ethalive/internal/infra/rpc"
	"github.com/vietddude/ethalive/internal/metrics"
)

// HeightFetcher returns the head height of an endpoint.
type HeightFetcher interface {
	GetBlockNumber(ctx context.Context, ep rpc.Endpoint) (uint64, error)
}

// Observer receives the record of every completed cycle.
type Observer interface {
	Observe(ctx context.Context, check domain.Check) error
}

// Config holds the loop settings. It is read-only once the loop starts.
type Config struct {
	Local         rpc.Endpoint
	Remote        rpc.Endpoint
	LagThreshold  uint64
	PollInterval  time.Duration
	AlertCooldown time.Duration

	// AlertOnRemoteUnreachable also alerts when the reference node fails.
	// Off by default: the remote node is not the monitored subject.
	AlertOnRemoteUnreachable bool
}

// Watchdog runs the poll, evaluate, alert, sleep cycle.
type Watchdog struct {
	cfg       Config
	fetcher   HeightFetcher
	notifier  notify.Notifier
	observers []Observer
	log       *slog.Logger

	// alerts is only touched from the goroutine running cycles.
	alerts AlertState
	now    func() time.Time
}

// New creates a watchdog. A nil notifier disables alert delivery.
func New(cfg Config, fetcher HeightFetcher, notifier notify.Notifier, observers ...Observer) *Watchdog {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Watchdog{
		cfg:       cfg,
		fetcher:   fetcher,
		notifier:  notifier,
		observers: observers,
		log:       slog.Default().With("component", "watchdog"),
		now:       time.Now,
	}
}

// AlertState returns a copy of the current cooldown state.
func (w *Watchdog) AlertState() AlertState {
	return w.alerts
}

// Run executes cycles until ctx is cancelled. Cycle errors never stop the loop.
func (w *Watchdog) Run(ctx context.Context) error {
	w.log.Info("Starting watchdog loop",
		"local", w.cfg.Local.Name,
		"remote", w.cfg.Remote.Name,
		"threshold", w.cfg.LagThreshold,
		"interval", w.cfg.PollInterval,
		"cooldown", w.cfg.AlertCooldown,
	)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		w.RunCycle(ctx)

		select {
		case <-ctx.Done():
			w.log.Info("Watchdog loop stopped")
			return ctx.Err()
		case <-time.After(w.cfg.PollInterval):
		}
	}
}

// RunCycle polls both endpoints once, evaluates the result and drives the
// alert path. It returns the record handed to observers.
func (w *Watchdog) RunCycle(ctx context.Context) domain.Check {
	start := time.Now()
	checkedAt := w.now()

	local, remote := w.poll(ctx)
	verdict := Evaluate(local, remote, w.cfg.LagThreshold)

	check := domain.NewCheck(uuid.NewString(), checkedAt, verdict)
	w.logVerdict(verdict)

	switch {
	case verdict.Healthy():
		w.alerts.Reset()
	case verdict.Alertable():
		check.Alert = w.maybeAlert(ctx, verdict)
	case verdict.Kind == domain.VerdictRemoteUnreachable && w.cfg.AlertOnRemoteUnreachable:
		check.Alert = w.maybeAlert(ctx, verdict)
	}

	check.Duration = time.Since(start)
	w.record(check, verdict)

	for _, o := range w.observers {
		if err := o.Observe(ctx, check); err != nil {
			w.log.Warn("Observer failed", "observer", fmt.Sprintf("%T", o), "error", err)
		}
	}
	return check
}

// poll queries remote and local concurrently and waits for both.
func (w *Watchdog) poll(ctx context.Context) (local, remote Result) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		h, err := w.fetcher.GetBlockNumber(ctx, w.cfg.Remote)
		remote = Result{Height: h, Err: err}
	}()
	go func() {
		defer wg.Done()
		h, err := w.fetcher.GetBlockNumber(ctx, w.cfg.Local)
		local = Result{Height: h, Err: err}
	}()
	wg.Wait()
	return local, remote
}

func (w *Watchdog) maybeAlert(ctx context.Context, v domain.Verdict) domain.AlertOutcome {
	now := w.now()
	if !ShouldAlert(w.alerts, now, w.cfg.AlertCooldown) {
		w.log.Debug("Alert suppressed by cooldown",
			"verdict", v.Kind,
			"last_alert", w.alerts.LastAlert(),
			"cooldown", w.cfg.AlertCooldown,
		)
		metrics.AlertsTotal.WithLabelValues(string(domain.AlertSuppressed)).Inc()
		return domain.AlertSuppressed
	}

	if err := w.notifier.Send(ctx, v.AlertMessage(w.cfg.LagThreshold)); err != nil {
		// Leave the state untouched so the next cycle retries.
		w.log.Error("Failed to send alert", "verdict", v.Kind, "error", err)
		metrics.AlertsTotal.WithLabelValues(string(domain.AlertFailed)).Inc()
		return domain.AlertFailed
	}

	w.alerts.Stamp(now)
	w.log.Info("Alert sent", "verdict", v.Kind)
	metrics.AlertsTotal.WithLabelValues(string(domain.AlertSent)).Inc()
	return domain.AlertSent
}

func (w *Watchdog) logVerdict(v domain.Verdict) {
	attrs := []any{"verdict", v.Kind}
	switch v.Kind {
	case domain.VerdictSynced, domain.VerdictLocalAhead:
		w.log.Info(v.String(), attrs...)
	case domain.VerdictLagging:
		w.log.Warn(v.String(), attrs...)
	default:
		w.log.Error(v.String(), attrs...)
	}
}

func (w *Watchdog) record(check domain.Check, v domain.Verdict) {
	metrics.VerdictsTotal.WithLabelValues(string(v.Kind)).Inc()
	metrics.CycleDuration.Observe(check.Duration.Seconds())
	switch v.Kind {
	case domain.VerdictSynced, domain.VerdictLagging:
		metrics.BlockLag.Set(float64(v.Lag))
	case domain.VerdictLocalAhead:
		metrics.BlockLag.Set(0)
	default:
		// Unknown while either node is unreachable.
		metrics.BlockLag.Set(math.NaN())
	}
}
