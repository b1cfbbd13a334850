// Package storage owns the artifact filesystem contract: the per-camera
// directory layout under the storage root, safe joining of database-stored
// relative paths, and the quiescence checks workers run before trusting an
// artifact.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Root is the configured storage root all artifact paths are relative to.
type Root struct {
	Path string
}

// Per-camera directory names.
const (
	DirPictures = "pictures"
	DirThumbs   = "thumbs"
	DirVideos   = "videos"
)

// Abs resolves a database-stored relative path under the root. Absolute
// paths and ".." components are rejected; the database never stores them,
// but workers re-check before touching the filesystem.
func (r Root) Abs(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("empty artifact path")
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("artifact path %q is absolute", rel)
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part == ".." {
			return "", fmt.Errorf("artifact path %q contains ..", rel)
		}
	}
	return filepath.Join(r.Path, filepath.FromSlash(rel)), nil
}

// EnsureCameraDirs creates the pictures/thumbs/videos directories for a
// camera. Called on registration so uploads never race directory creation.
func (r Root) EnsureCameraDirs(cameraID string) error {
	for _, dir := range []string{DirPictures, DirThumbs, DirVideos} {
		if err := os.MkdirAll(filepath.Join(r.Path, cameraID, dir), 0o775); err != nil {
			return fmt.Errorf("create %s dir for %s: %w", dir, cameraID, err)
		}
	}
	return nil
}

// FileState is what a worker learns about an artifact before working on it.
type FileState struct {
	Exists   bool
	Quiesced bool // older than the quiescence window
	Size     int64
}

// Check stats the artifact. Quiesced is true when the file's mtime is at
// least minAge in the past, i.e. the uploader has plausibly finished
// writing.
func (r Root) Check(rel string, minAge time.Duration) (FileState, error) {
	abs, err := r.Abs(rel)
	if err != nil {
		return FileState{}, err
	}
	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return FileState{}, nil
	}
	if err != nil {
		return FileState{}, err
	}
	return FileState{
		Exists:   true,
		Quiesced: time.Since(info.ModTime()) >= minAge,
		Size:     info.Size(),
	}, nil
}

// MP4Path derives the MP4 path from an H.264 path by extension swap.
func MP4Path(h264Rel string) string {
	if strings.HasSuffix(h264Rel, ".h264") {
		return strings.TrimSuffix(h264Rel, ".h264") + ".mp4"
	}
	return h264Rel + ".mp4"
}

// EventBasename builds the shared artifact name stem
// {event_id}_{YYYYMMDD_HHMMSS}.
func EventBasename(eventID int, ts time.Time) string {
	return fmt.Sprintf("%d_%s", eventID, ts.UTC().Format("20060102_150405"))
}

// ImagePath returns the relative path of still A or B ("a" or "b").
func ImagePath(cameraID string, eventID int, ts time.Time, suffix string) string {
	return fmt.Sprintf("%s/%s/%s_%s.jpg", cameraID, DirPictures, EventBasename(eventID, ts), suffix)
}

// ThumbnailPath returns the relative thumbnail path.
func ThumbnailPath(cameraID string, eventID int, ts time.Time) string {
	return fmt.Sprintf("%s/%s/%s_thumb.jpg", cameraID, DirThumbs, EventBasename(eventID, ts))
}

// VideoH264Path returns the relative raw video path.
func VideoH264Path(cameraID string, eventID int, ts time.Time) string {
	return fmt.Sprintf("%s/%s/%s_video.h264", cameraID, DirVideos, EventBasename(eventID, ts))
}
