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

// Default duration written when neither ffprobe nor the camera supplied one.
const fallbackDurationSeconds = 60

// ConversionStore is the slice of the event store the converter needs.
type ConversionStore interface {
	ClaimConversions(ctx context.Context, claimant string, horizon time.Duration, limit int) ([]data.ConversionJob, error)
	CompleteConversion(ctx context.Context, claimant string, eventID int, mp4Path string, duration float64) (bool, error)
	FailConversion(ctx context.Context, claimant string, eventID int, reason string) error
	ReleaseConversion(ctx context.Context, claimant string, eventID int) error
	RecoverStaleConversions(ctx context.Context, horizon time.Duration) (int64, error)
}

// Repacker is the ffmpeg surface the converter uses.
type Repacker interface {
	RepackToMP4(ctx context.Context, src, dst string) error
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// Converter turns transferred H.264 streams into faststart MP4s.
type Converter struct {
	Store    ConversionStore
	Trans    Repacker
	Root     storage.Root
	Notify   *notify.Publisher
	Metrics  *metrics.Metrics
	Claimant string

	BatchSize       int
	Quiescence      time.Duration
	ReclaimHorizon  time.Duration
	PerEventTimeout time.Duration
	RetainH264      bool
}

func (c *Converter) Name() string { return "convertd" }

func (c *Converter) RecoverStale(ctx context.Context) (int64, error) {
	n, err := c.Store.RecoverStaleConversions(ctx, c.ReclaimHorizon)
	if n > 0 && c.Metrics != nil {
		c.Metrics.StaleRecovered.WithLabelValues(c.Name()).Add(float64(n))
	}
	return n, err
}

func (c *Converter) ProcessBatch(ctx context.Context) (int, error) {
	jobs, err := c.Store.ClaimConversions(ctx, c.Claimant, c.ReclaimHorizon, c.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("claim conversions: %w", err)
	}
	if c.Metrics != nil && len(jobs) > 0 {
		c.Metrics.WorkerClaims.WithLabelValues(c.Name()).Add(float64(len(jobs)))
	}

	for _, job := range jobs {
		if ctx.Err() != nil {
			return len(jobs), ctx.Err()
		}
		c.processOne(ctx, job)
	}
	return len(jobs), nil
}

func (c *Converter) processOne(ctx context.Context, job data.ConversionJob) {
	// A malformed stored path never heals; anything else from the stat is
	// treated as transient and the claim goes back for a later retry.
	src, err := c.Root.Abs(job.H264Path)
	if err != nil {
		c.fail(ctx, job.EventID, err.Error())
		return
	}
	state, err := c.Root.Check(job.H264Path, c.Quiescence)
	if err != nil {
		log.Printf("convertd: event %d: check %s: %v", job.EventID, job.H264Path, err)
		c.release(ctx, job.EventID)
		return
	}

	if !state.Exists {
		// The transfer flag was set but the bytes never landed. Give the
		// upload the reclaim horizon before declaring it lost.
		if time.Since(job.CreatedAt) > c.ReclaimHorizon {
			log.Printf("convertd: event %d: source %s missing past horizon", job.EventID, job.H264Path)
			c.fail(ctx, job.EventID, "h264 source missing")
		} else {
			c.release(ctx, job.EventID)
		}
		return
	}
	if !state.Quiesced {
		c.release(ctx, job.EventID)
		return
	}

	mp4Rel := storage.MP4Path(job.H264Path)
	dst, err := c.Root.Abs(mp4Rel)
	if err != nil {
		c.fail(ctx, job.EventID, err.Error())
		return
	}

	workCtx, cancel := context.WithTimeout(ctx, c.PerEventTimeout)
	defer cancel()

	if err := c.Trans.RepackToMP4(workCtx, src, dst); err != nil {
		log.Printf("convertd: event %d: repack: %v", job.EventID, err)
		c.fail(ctx, job.EventID, "conversion failed: "+err.Error())
		return
	}

	duration := c.resolveDuration(workCtx, dst, job.VideoDuration)

	committed, err := c.Store.CompleteConversion(ctx, c.Claimant, job.EventID, mp4Rel, duration)
	if err != nil {
		log.Printf("convertd: event %d: commit: %v", job.EventID, err)
		return
	}
	if !committed {
		// Claim was reclaimed while we worked; the other worker's result
		// wins and the MP4 we wrote is identical anyway.
		log.Printf("convertd: event %d: claim lost before commit", job.EventID)
		return
	}

	if c.Metrics != nil {
		c.Metrics.WorkerProcessed.WithLabelValues(c.Name()).Inc()
	}
	log.Printf("convertd: event %d: converted %s (%.1fs)", job.EventID, mp4Rel, duration)

	c.cleanupSource(src, dst)
	c.Notify.Publish(notify.KindConverted, job.EventID, job.CameraID)
}

// resolveDuration prefers the real container duration, then the
// camera-reported one, then a fixed fallback.
func (c *Converter) resolveDuration(ctx context.Context, mp4Abs string, cameraDuration *float64) float64 {
	if d, err := c.Trans.ProbeDuration(ctx, mp4Abs); err == nil && d > 0 {
		return d
	}
	if cameraDuration != nil && *cameraDuration > 0 {
		return *cameraDuration
	}
	return fallbackDurationSeconds
}

// cleanupSource deletes the raw H.264 once a non-empty MP4 exists, unless
// retention of raw streams is configured.
func (c *Converter) cleanupSource(src, dst string) {
	if c.RetainH264 {
		return
	}
	info, err := os.Stat(dst)
	if err != nil || info.Size() == 0 {
		return
	}
	if err := os.Remove(src); err != nil && !os.IsNotExist(err) {
		log.Printf("convertd: remove %s: %v", src, err)
	}
}

func (c *Converter) fail(ctx context.Context, eventID int, reason string) {
	if err := c.Store.FailConversion(ctx, c.Claimant, eventID, reason); err != nil {
		log.Printf("convertd: event %d: mark failed: %v", eventID, err)
		return
	}
	if c.Metrics != nil {
		c.Metrics.WorkerFailures.WithLabelValues(c.Name()).Inc()
	}
}

func (c *Converter) release(ctx context.Context, eventID int) {
	if err := c.Store.ReleaseConversion(ctx, c.Claimant, eventID); err != nil {
		log.Printf("convertd: event %d: release: %v", eventID, err)
		return
	}
	if c.Metrics != nil {
		c.Metrics.WorkerReleases.WithLabelValues(c.Name()).Inc()
	}
}
