// Package media wraps the ffmpeg/ffprobe binaries for the two transcodes
// the pipeline performs: repacking raw H.264 into a faststart MP4 and
// re-encoding an MP4 to a smaller profile.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Transcoder shells out to ffmpeg/ffprobe. Callers bound each call with a
// context deadline.
type Transcoder struct {
	FFmpegPath  string
	FFprobePath string
}

func NewTranscoder(ffmpeg, ffprobe string) *Transcoder {
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	return &Transcoder{FFmpegPath: ffmpeg, FFprobePath: ffprobe}
}

// RepackToMP4 rewraps an H.264 elementary stream into an MP4 container with
// faststart metadata, no re-encode. Output goes to a temp file first and is
// renamed into place so an interrupted run never leaves a partial MP4.
func (t *Transcoder) RepackToMP4(ctx context.Context, src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o775); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp := dst + ".tmp"

	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", src,
		"-c", "copy",
		"-movflags", "faststart",
		"-f", "mp4",
		"-y", tmp,
	}
	if err := t.runFFmpeg(ctx, tmp, args); err != nil {
		return err
	}
	return os.Rename(tmp, dst)
}

// EncodeSmaller re-encodes an MP4 with libx264 at a size-reducing profile.
// The temp-then-rename discipline matches RepackToMP4.
func (t *Transcoder) EncodeSmaller(ctx context.Context, src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o775); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp := dst + ".tmp"

	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", src,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "28",
		"-pix_fmt", "yuv420p",
		"-c:a", "copy",
		"-y", tmp,
	}
	if err := t.runFFmpeg(ctx, tmp, args); err != nil {
		return err
	}
	return os.Rename(tmp, dst)
}

func (t *Transcoder) runFFmpeg(ctx context.Context, tmp string, args []string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.FFmpegPath, args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(tmp)
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg timed out: %w", ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("ffmpeg: %s", msg)
	}
	return nil
}

// ProbeDuration asks ffprobe for the container duration in seconds.
func (t *Transcoder) ProbeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, t.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe output %q: %w", strings.TrimSpace(string(out)), err)
	}
	return dur, nil
}
