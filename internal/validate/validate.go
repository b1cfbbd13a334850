// Package validate checks inbound payloads before any store access.
// It is pure: no side effects, no I/O.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldError names the offending field and the reason the payload was
// rejected. API handlers map it to a 400 response.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func fail(field, reason string) *FieldError {
	return &FieldError{Field: field, Reason: reason}
}

var cameraIDPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Limits on paged queries.
const (
	MaxEventLimit = 200
	MaxLogLimit   = 500
)

// CameraID checks the stable camera string.
func CameraID(field, id string) *FieldError {
	if id == "" {
		return fail(field, "is required")
	}
	if len(id) > 50 {
		return fail(field, "must be at most 50 characters")
	}
	if !cameraIDPattern.MatchString(id) {
		return fail(field, "must match [A-Za-z0-9_]+")
	}
	return nil
}

// Source checks a log source: a camera stable string or the literal
// "central".
func Source(field, source string) *FieldError {
	if source == "central" {
		return nil
	}
	return CameraID(field, source)
}

// Level checks log severity membership.
func Level(field, level string) *FieldError {
	switch level {
	case "INFO", "WARNING", "ERROR":
		return nil
	}
	return fail(field, "must be one of INFO, WARNING, ERROR")
}

// EventStatus checks a terminal event status target.
func EventStatus(field, status string) *FieldError {
	switch status {
	case "complete", "interrupted", "failed":
		return nil
	}
	return fail(field, "must be one of complete, interrupted, failed")
}

// MP4Status checks MP4 sub-state membership (used by list filters).
func MP4Status(field, status string) *FieldError {
	switch status {
	case "pending", "processing", "complete", "optimized", "failed":
		return nil
	}
	return fail(field, "must be one of pending, processing, complete, optimized, failed")
}

// FileType checks the artifact selector of a file-status update.
func FileType(field, fileType string) *FieldError {
	switch fileType {
	case "image_a", "image_b", "thumbnail", "video_h264":
		return nil
	}
	return fail(field, "must be one of image_a, image_b, thumbnail, video_h264")
}

// RelativePath rejects absolute paths and any path containing a ".."
// component. Stored paths are always relative to the storage root.
func RelativePath(field, path string) *FieldError {
	if path == "" {
		return fail(field, "is required")
	}
	if len(path) > 255 {
		return fail(field, "must be at most 255 characters")
	}
	if strings.HasPrefix(path, "/") {
		return fail(field, "must be relative (no leading /)")
	}
	if strings.Contains(path, "\\") {
		return fail(field, "must use forward slashes")
	}
	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return fail(field, "must not contain ..")
		}
	}
	return nil
}

// MotionScore must be non-negative.
func MotionScore(field string, score float64) *FieldError {
	if score < 0 {
		return fail(field, "must be >= 0")
	}
	return nil
}

// ConfidenceScore is a percent in [0,100].
func ConfidenceScore(field string, score float64) *FieldError {
	if score < 0 || score > 100 {
		return fail(field, "must be between 0 and 100")
	}
	return nil
}

// Name checks a display-name style field.
func Name(field, name string, max int) *FieldError {
	if name == "" {
		return fail(field, "is required")
	}
	if len(name) > max {
		return fail(field, fmt.Sprintf("must be at most %d characters", max))
	}
	return nil
}

// Limit checks and clamps nothing: out-of-range limits are rejected, not
// silently capped, so callers learn the real bound. Zero is allowed and
// turns the request into a count-only query.
func Limit(field string, limit, max int) *FieldError {
	if limit < 0 || limit > max {
		return fail(field, fmt.Sprintf("must be between 0 and %d", max))
	}
	return nil
}

// Offset must be non-negative.
func Offset(field string, offset int) *FieldError {
	if offset < 0 {
		return fail(field, "must be >= 0")
	}
	return nil
}

// Duration checks an optional video duration.
func Duration(field string, seconds float64) *FieldError {
	if seconds <= 0 {
		return fail(field, "must be > 0")
	}
	return nil
}

// Hours bounds the stats window to one week.
func Hours(field string, hours int) *FieldError {
	if hours < 1 || hours > 168 {
		return fail(field, "must be between 1 and 168")
	}
	return nil
}
