package worker

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/securitycam/central/internal/data"
	"github.com/securitycam/central/internal/metrics"
	"github.com/securitycam/central/internal/notify"
	"github.com/securitycam/central/internal/storage"
)

// OptimizationStore is the slice of the event store the optimizer needs.
type OptimizationStore interface {
	ClaimOptimizations(ctx context.Context, claimant string, horizon time.Duration, limit int) ([]data.OptimizationJob, error)
	CompleteOptimization(ctx context.Context, claimant string, eventID int, mp4Path string) (bool, error)
	FailOptimization(ctx context.Context, claimant string, eventID int, reason string) error
	ReleaseOptimization(ctx context.Context, claimant string, eventID int) error
}

// Encoder is the ffmpeg surface the optimizer uses.
type Encoder interface {
	EncodeSmaller(ctx context.Context, src, dst string) error
}

// Optimizer re-encodes converted MP4s to a smaller profile. If the re-encode
// does not shrink the file the original is kept, but the event still advances
// to optimized so the stage never re-runs.
type Optimizer struct {
	Store    OptimizationStore
	Trans    Encoder
	Root     storage.Root
	Notify   *notify.Publisher
	Metrics  *metrics.Metrics
	Claimant string

	BatchSize       int
	Quiescence      time.Duration
	ReclaimHorizon  time.Duration
	PerEventTimeout time.Duration
}

func (o *Optimizer) Name() string { return "optimized" }

func (o *Optimizer) RecoverStale(ctx context.Context) (int64, error) {
	// Optimization claims live in the shared claim columns; expired claims
	// are re-claimable directly, so there is nothing to reset.
	return 0, nil
}

func (o *Optimizer) ProcessBatch(ctx context.Context) (int, error) {
	jobs, err := o.Store.ClaimOptimizations(ctx, o.Claimant, o.ReclaimHorizon, o.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("claim optimizations: %w", err)
	}
	if o.Metrics != nil && len(jobs) > 0 {
		o.Metrics.WorkerClaims.WithLabelValues(o.Name()).Add(float64(len(jobs)))
	}

	for _, job := range jobs {
		if ctx.Err() != nil {
			return len(jobs), ctx.Err()
		}
		o.processOne(ctx, job)
	}
	return len(jobs), nil
}

func (o *Optimizer) processOne(ctx context.Context, job data.OptimizationJob) {
	// A malformed stored path never heals; anything else from the stat is
	// treated as transient and the claim goes back for a later retry.
	src, err := o.Root.Abs(job.MP4Path)
	if err != nil {
		o.fail(ctx, job.EventID, err.Error())
		return
	}
	state, err := o.Root.Check(job.MP4Path, o.Quiescence)
	if err != nil {
		log.Printf("optimized: event %d: check %s: %v", job.EventID, job.MP4Path, err)
		o.release(ctx, job.EventID)
		return
	}
	if !state.Exists {
		o.fail(ctx, job.EventID, "mp4 missing before optimization")
		return
	}
	if !state.Quiesced {
		o.release(ctx, job.EventID)
		return
	}

	candidate := src + ".opt.mp4"

	workCtx, cancel := context.WithTimeout(ctx, o.PerEventTimeout)
	defer cancel()

	if err := o.Trans.EncodeSmaller(workCtx, src, candidate); err != nil {
		log.Printf("optimized: event %d: encode: %v", job.EventID, err)
		os.Remove(candidate)
		o.fail(ctx, job.EventID, "optimization failed: "+err.Error())
		return
	}

	shrunk := replaceIfSmaller(src, candidate, state.Size)

	committed, err := o.Store.CompleteOptimization(ctx, o.Claimant, job.EventID, job.MP4Path)
	if err != nil {
		log.Printf("optimized: event %d: commit: %v", job.EventID, err)
		return
	}
	if !committed {
		log.Printf("optimized: event %d: claim lost before commit", job.EventID)
		return
	}

	if o.Metrics != nil {
		o.Metrics.WorkerProcessed.WithLabelValues(o.Name()).Inc()
	}
	if shrunk {
		log.Printf("optimized: event %d: re-encoded %s", job.EventID, job.MP4Path)
	} else {
		log.Printf("optimized: event %d: re-encode not smaller, kept original", job.EventID)
	}
	o.Notify.Publish(notify.KindOptimized, job.EventID, job.CameraID)
}

// replaceIfSmaller swaps the candidate over the original only when it is a
// real improvement; otherwise the candidate is discarded.
func replaceIfSmaller(original, candidate string, originalSize int64) bool {
	info, err := os.Stat(candidate)
	if err != nil || info.Size() == 0 || info.Size() >= originalSize {
		os.Remove(candidate)
		return false
	}
	if err := os.Rename(candidate, original); err != nil {
		log.Printf("optimized: replace %s: %v", original, err)
		os.Remove(candidate)
		return false
	}
	return true
}

func (o *Optimizer) fail(ctx context.Context, eventID int, reason string) {
	if err := o.Store.FailOptimization(ctx, o.Claimant, eventID, reason); err != nil {
		log.Printf("optimized: event %d: mark failed: %v", eventID, err)
		return
	}
	if o.Metrics != nil {
		o.Metrics.WorkerFailures.WithLabelValues(o.Name()).Inc()
	}
}

func (o *Optimizer) release(ctx context.Context, eventID int) {
	if err := o.Store.ReleaseOptimization(ctx, o.Claimant, eventID); err != nil {
		log.Printf("optimized: event %d: release: %v", eventID, err)
		return
	}
	if o.Metrics != nil {
		o.Metrics.WorkerReleases.WithLabelValues(o.Name()).Inc()
	}
}
