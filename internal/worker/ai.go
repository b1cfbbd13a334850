package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/securitycam/central/internal/ai"
	"github.com/securitycam/central/internal/data"
	"github.com/securitycam/central/internal/metrics"
	"github.com/securitycam/central/internal/notify"
	"github.com/securitycam/central/internal/storage"
)

// AIStore is the slice of the event store the analyzer needs.
type AIStore interface {
	ClaimAIJobs(ctx context.Context, claimant string, horizon time.Duration, limit int) ([]data.AIJob, error)
	CompleteAI(ctx context.Context, claimant string, eventID int, res data.AIResult) (bool, error)
	ReleaseAI(ctx context.Context, claimant string, eventID int) error
	RecoverStaleAIClaims(ctx context.Context, horizon time.Duration) (int64, error)
}

// ModelClient is the model-host surface the analyzer uses.
type ModelClient interface {
	Describe(ctx context.Context, imageA, imageB []byte) (string, error)
	ExtractPhrase(ctx context.Context, description string) (string, error)
}

// Analyzer runs the vision and phrase passes over an event's two stills and
// writes all derived AI fields in one commit. ai_processed latches true
// exactly once, even on failure, so the pipeline never spins on a bad event.
type Analyzer struct {
	Store    AIStore
	Model    ModelClient
	Root     storage.Root
	Notify   *notify.Publisher
	Metrics  *metrics.Metrics
	Claimant string

	BatchSize       int
	Quiescence      time.Duration
	ReclaimHorizon  time.Duration
	PerEventTimeout time.Duration
	RetryBudget     int

	// RetryDelay is the base backoff between model-call attempts. Zero
	// means one second.
	RetryDelay time.Duration
}

func (a *Analyzer) Name() string { return "aiprocd" }

func (a *Analyzer) RecoverStale(ctx context.Context) (int64, error) {
	n, err := a.Store.RecoverStaleAIClaims(ctx, a.ReclaimHorizon)
	if n > 0 && a.Metrics != nil {
		a.Metrics.StaleRecovered.WithLabelValues(a.Name()).Add(float64(n))
	}
	return n, err
}

func (a *Analyzer) ProcessBatch(ctx context.Context) (int, error) {
	jobs, err := a.Store.ClaimAIJobs(ctx, a.Claimant, a.ReclaimHorizon, a.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("claim ai jobs: %w", err)
	}
	if a.Metrics != nil && len(jobs) > 0 {
		a.Metrics.WorkerClaims.WithLabelValues(a.Name()).Add(float64(len(jobs)))
	}

	for _, job := range jobs {
		if ctx.Err() != nil {
			return len(jobs), ctx.Err()
		}
		a.processOne(ctx, job)
	}
	return len(jobs), nil
}

func (a *Analyzer) processOne(ctx context.Context, job data.AIJob) {
	imgA, okA := a.loadStill(ctx, job.EventID, job.ImageAPath)
	if !okA {
		return
	}
	imgB, okB := a.loadStill(ctx, job.EventID, job.ImageBPath)
	if !okB {
		return
	}

	workCtx, cancel := context.WithTimeout(ctx, a.PerEventTimeout)
	defer cancel()

	description, err := a.withRetries(workCtx, func(ctx context.Context) (string, error) {
		return a.Model.Describe(ctx, imgA, imgB)
	})
	if err != nil {
		// Budget exhausted with nothing usable. Latch processed with the
		// error so the event never blocks the queue.
		reason := "vision analysis failed: " + err.Error()
		a.commit(ctx, job, data.AIResult{Error: &reason})
		return
	}

	signals := ai.ExtractSignals(description)
	objects := signals.ObjectsJSON()
	result := data.AIResult{
		PersonDetected: &signals.PersonDetected,
		Confidence:     &signals.Confidence,
		Objects:        &objects,
		Description:    &description,
	}

	phrase, err := a.withRetries(workCtx, func(ctx context.Context) (string, error) {
		return a.Model.ExtractPhrase(ctx, description)
	})
	if err != nil {
		// Partial success: keep the description and signals, record why the
		// phrase is missing.
		reason := "phrase extraction failed: " + err.Error()
		result.Error = &reason
	} else {
		result.Phrase = &phrase
	}

	a.commit(ctx, job, result)
}

// loadStill prepares one image for submission. A missing or undecodable
// still releases the claim: the upload may still be in flight, and stale
// recovery bounds how long a truly broken event stays claimable.
func (a *Analyzer) loadStill(ctx context.Context, eventID int, rel string) ([]byte, bool) {
	state, err := a.Root.Check(rel, a.Quiescence)
	if err != nil || !state.Exists || !state.Quiesced {
		a.release(ctx, eventID)
		return nil, false
	}
	abs, err := a.Root.Abs(rel)
	if err != nil {
		a.release(ctx, eventID)
		return nil, false
	}
	img, err := ai.PrepareImage(abs)
	if err != nil {
		log.Printf("aiprocd: event %d: prepare %s: %v", eventID, rel, err)
		a.release(ctx, eventID)
		return nil, false
	}
	return img, true
}

// withRetries runs the call up to RetryBudget+1 times with a short linear
// backoff. The last error is returned when the budget runs out.
func (a *Analyzer) withRetries(ctx context.Context, call func(context.Context) (string, error)) (string, error) {
	delay := a.RetryDelay
	if delay == 0 {
		delay = time.Second
	}

	var lastErr error
	for attempt := 0; attempt <= a.RetryBudget; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		out, err := call(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt+1) * delay):
		}
	}
	return "", lastErr
}

func (a *Analyzer) commit(ctx context.Context, job data.AIJob, result data.AIResult) {
	committed, err := a.Store.CompleteAI(ctx, a.Claimant, job.EventID, result)
	if err != nil {
		log.Printf("aiprocd: event %d: commit: %v", job.EventID, err)
		return
	}
	if !committed {
		log.Printf("aiprocd: event %d: claim lost before commit", job.EventID)
		return
	}

	if result.Error != nil && result.Description == nil {
		if a.Metrics != nil {
			a.Metrics.WorkerFailures.WithLabelValues(a.Name()).Inc()
		}
		log.Printf("aiprocd: event %d: processed with error: %s", job.EventID, *result.Error)
	} else {
		if a.Metrics != nil {
			a.Metrics.WorkerProcessed.WithLabelValues(a.Name()).Inc()
		}
		log.Printf("aiprocd: event %d: analyzed", job.EventID)
	}
	a.Notify.Publish(notify.KindAnalyzed, job.EventID, job.CameraID)
}

func (a *Analyzer) release(ctx context.Context, eventID int) {
	if err := a.Store.ReleaseAI(ctx, a.Claimant, eventID); err != nil {
		log.Printf("aiprocd: event %d: release: %v", eventID, err)
		return
	}
	if a.Metrics != nil {
		a.Metrics.WorkerReleases.WithLabelValues(a.Name()).Inc()
	}
}
