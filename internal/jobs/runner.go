package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"pagewatch/internal/detect"
	"pagewatch/internal/metrics"
	"pagewatch/internal/models"
)

// Fetcher returns the normalized text of a page.
type Fetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// Store is the persistence the runner needs.
type Store interface {
	GetTargetByID(ctx context.Context, id uuid.UUID) (*models.Target, error)
	SavePageSnapshot(ctx context.Context, targetID uuid.UUID, snapshot models.PageSnapshot) error
	MarkTargetRun(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Notifier delivers an alert for a target.
type Notifier interface {
	Notify(ctx context.Context, target *models.Target, alert *models.Alert) error
}

// Runner checks a target's pages for keyword changes.
type Runner struct {
	fetcher     Fetcher
	store       Store
	notifier    Notifier
	concurrency int
	logger      *slog.Logger
	now         func() time.Time

	locks sync.Map // uuid.UUID -> *sync.Mutex
}

// NewRunner creates a runner. Concurrency bounds the pages fetched in
// parallel for one target.
func NewRunner(fetcher Fetcher, store Store, notifier Notifier, concurrency int, logger *slog.Logger) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		fetcher:     fetcher,
		store:       store,
		notifier:    notifier,
		concurrency: concurrency,
		logger:      logger,
		now:         time.Now,
	}
}

func (r *Runner) lock(id uuid.UUID) func() {
	m, _ := r.locks.LoadOrStore(id, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// RunTarget checks every URL of the target once. Runs for the same target
// are serialized. Fetch failures and empty pages are reported per page and
// leave the stored snapshot untouched; an invalid keyword aborts the run.
// Every attempt is recorded as the target's last run, failed ones included,
// so a failing target does not stay at the front of the due queue.
func (r *Runner) RunTarget(ctx context.Context, id uuid.UUID) (*models.RunResult, error) {
	unlock := r.lock(id)
	defer unlock()

	result, err := r.run(ctx, id)

	finished := r.now()
	if result != nil {
		finished = result.FinishedAt
	}
	if markErr := r.store.MarkTargetRun(ctx, id, finished); markErr != nil {
		r.logger.Warn("failed to mark target run", "target_id", id, "error", markErr)
	}
	return result, err
}

func (r *Runner) run(ctx context.Context, id uuid.UUID) (*models.RunResult, error) {
	target, err := r.store.GetTargetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := detect.CountKeywords(target.Keywords, ""); err != nil {
		return nil, fmt.Errorf("target %s: %w", target.Name, err)
	}

	result := &models.RunResult{
		TargetID:  target.ID,
		StartedAt: r.now(),
		Pages:     make([]models.PageResult, len(target.URLs)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, url := range target.URLs {
		g.Go(func() error {
			page, err := r.checkPage(gctx, target, url)
			if err != nil {
				return err
			}
			result.Pages[i] = page
			metrics.RecordPageCheck(page.Outcome)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.FinishedAt = r.now()
	r.logger.Info("target checked",
		"target", target.Name,
		"pages", len(result.Pages),
		"alerted", result.Alerted(),
		"duration", result.FinishedAt.Sub(result.StartedAt),
	)
	return result, nil
}

// checkPage runs the detection pipeline for one URL. Only keyword errors are
// returned; every other failure becomes the page's outcome.
func (r *Runner) checkPage(ctx context.Context, target *models.Target, url string) (models.PageResult, error) {
	page := models.PageResult{URL: url}
	log := r.logger.With("target", target.Name, "url", url)

	text, err := r.fetcher.FetchText(ctx, url)
	if err != nil {
		log.Warn("fetch failed", "error", err)
		page.Outcome = models.OutcomeError
		page.Error = err.Error()
		return page, nil
	}
	if text == "" {
		log.Debug("page has no text")
		page.Outcome = models.OutcomeEmpty
		return page, nil
	}

	page.Hash = detect.Fingerprint(text)
	previous, seen := target.Snapshot(url)
	if seen && previous.Hash == page.Hash {
		page.Outcome = models.OutcomeUnchanged
		return page, nil
	}

	counts, err := detect.CountKeywords(target.Keywords, text)
	if err != nil {
		return page, err
	}
	notable := detect.Diff(previous.KeywordCounts, counts)

	if len(notable) > 0 {
		contexts, err := detect.ExtractContexts(notable, text)
		if err != nil {
			return page, err
		}
		alert := &models.Alert{
			TargetID: target.ID,
			URL:      url,
			Keywords: notable,
			Matches:  detect.Matches(notable, contexts),
		}
		if err := r.notifier.Notify(ctx, target, alert); err != nil {
			// The snapshot is not saved so the alert is raised again next run.
			log.Error("failed to deliver alert", "error", err)
			page.Outcome = models.OutcomeError
			page.Error = err.Error()
			return page, nil
		}
		page.Notable = notable
	}

	snapshot := models.PageSnapshot{
		URL:           url,
		Hash:          page.Hash,
		KeywordCounts: counts,
		CheckedAt:     r.now(),
	}
	if err := r.store.SavePageSnapshot(ctx, target.ID, snapshot); err != nil {
		if errors.Is(err, context.Canceled) {
			return page, err
		}
		log.Error("failed to save snapshot", "error", err)
		page.Outcome = models.OutcomeError
		page.Error = err.Error()
		return page, nil
	}

	page.Outcome = models.OutcomeChanged
	return page, nil
}
