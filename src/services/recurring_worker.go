package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/username/walletpulse/backend/src/logger"
	"github.com/username/walletpulse/backend/src/processors"
)

// RunSummary reports what one materialization pass did.
type RunSummary struct {
	Due     int // rules due today and not yet stamped when the pass read them
	Created int
	Skipped int // another writer stamped the rule first
	Failed  int
}

// RecurringWorker periodically turns due recurring rules into ledger entries.
// Overlapping passes in one process are skipped; across processes the store's
// stamp compare-and-swap keeps each rule at one entry per day.
type RecurringWorker struct {
	store        MaterializationStore
	interval     time.Duration
	runOnStartup bool
	now          func() time.Time

	running sync.Mutex
}

func NewRecurringWorker(store MaterializationStore, interval time.Duration, runOnStartup bool) *RecurringWorker {
	if interval <= 0 {
		interval = 12 * time.Hour
	}
	return &RecurringWorker{
		store:        store,
		interval:     interval,
		runOnStartup: runOnStartup,
		now:          time.Now,
	}
}

// Run blocks until ctx is cancelled, running a pass every interval.
func (w *RecurringWorker) Run(ctx context.Context) {
	log := logger.FromContext(ctx).With("component", "recurring_worker")
	log.Info("Recurring worker started", "interval", w.interval.String(), "runOnStartup", w.runOnStartup)

	if w.runOnStartup {
		w.runAndLog(ctx)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("Recurring worker stopped")
			return
		case <-ticker.C:
			w.runAndLog(ctx)
		}
	}
}

func (w *RecurringWorker) runAndLog(ctx context.Context) {
	log := logger.FromContext(ctx).With("component", "recurring_worker")
	summary, err := w.RunOnce(ctx, w.now())
	if err != nil {
		log.Error("Recurring pass failed", "error", err)
		return
	}
	log.Info("Recurring pass finished", "due", summary.Due, "created", summary.Created,
		"skipped", summary.Skipped, "failed", summary.Failed)
}

// RunOnce materializes every rule due on now's UTC calendar day. It returns
// ErrRunInProgress without doing anything if another pass is still running.
func (w *RecurringWorker) RunOnce(ctx context.Context, now time.Time) (RunSummary, error) {
	if !w.running.TryLock() {
		return RunSummary{}, ErrRunInProgress
	}
	defer w.running.Unlock()

	log := logger.FromContext(ctx)
	rules, err := w.store.ListAllActiveRecurringRules(ctx)
	if err != nil {
		return RunSummary{}, fmt.Errorf("listing active recurring rules: %w", err)
	}

	due := processors.MaterializeDue(rules, now.UTC())
	summary := RunSummary{Due: len(due)}
	for _, m := range due {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		created, err := w.store.MaterializeRule(ctx, m.Rule.ID, m.Rule.LastMaterialized, m.Entry)
		switch {
		case err != nil:
			summary.Failed++
			log.Error("Failed to materialize recurring rule", "ruleID", m.Rule.ID, "accountID", m.Rule.AccountID, "error", err)
		case created:
			summary.Created++
			log.Debug("Materialized recurring rule", "ruleID", m.Rule.ID, "accountID", m.Rule.AccountID, "day", m.Rule.LastMaterialized)
		default:
			summary.Skipped++
		}
	}
	return summary, nil
}
