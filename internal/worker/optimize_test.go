package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securitycam/central/internal/data"
	"github.com/securitycam/central/internal/storage"
)

type fakeOptimizationStore struct {
	jobs []data.OptimizationJob

	completed map[int]string
	failed    map[int]string
	released  []int
	commitOK  bool
}

func newFakeOptimizationStore(jobs ...data.OptimizationJob) *fakeOptimizationStore {
	return &fakeOptimizationStore{
		jobs:      jobs,
		completed: map[int]string{},
		failed:    map[int]string{},
		commitOK:  true,
	}
}

func (s *fakeOptimizationStore) ClaimOptimizations(ctx context.Context, claimant string, horizon time.Duration, limit int) ([]data.OptimizationJob, error) {
	jobs := s.jobs
	s.jobs = nil
	return jobs, nil
}

func (s *fakeOptimizationStore) CompleteOptimization(ctx context.Context, claimant string, eventID int, mp4Path string) (bool, error) {
	if !s.commitOK {
		return false, nil
	}
	s.completed[eventID] = mp4Path
	return true, nil
}

func (s *fakeOptimizationStore) FailOptimization(ctx context.Context, claimant string, eventID int, reason string) error {
	s.failed[eventID] = reason
	return nil
}

func (s *fakeOptimizationStore) ReleaseOptimization(ctx context.Context, claimant string, eventID int) error {
	s.released = append(s.released, eventID)
	return nil
}

type fakeEncoder struct {
	output []byte
	err    error
}

func (f *fakeEncoder) EncodeSmaller(ctx context.Context, src, dst string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(dst, f.output, 0o644)
}

func writeQuiescedMP4(t *testing.T, root storage.Root, rel string, size int) {
	t.Helper()
	abs := filepath.Join(root.Path, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o775))
	require.NoError(t, os.WriteFile(abs, make([]byte, size), 0o644))
	old := time.Now().Add(-time.Minute)
	require.NoError(t, os.Chtimes(abs, old, old))
}

func newOptimizer(store OptimizationStore, enc Encoder, root storage.Root) *Optimizer {
	return &Optimizer{
		Store:    store,
		Trans:    enc,
		Root:     root,
		Claimant: "optimized@test:1",

		BatchSize:       2,
		Quiescence:      3 * time.Second,
		ReclaimHorizon:  5 * time.Minute,
		PerEventTimeout: time.Minute,
	}
}

func TestOptimizerReplacesWithSmallerFile(t *testing.T) {
	root := storage.Root{Path: t.TempDir()}
	rel := "camera_1/videos/3_x_video.mp4"
	writeQuiescedMP4(t, root, rel, 1000)

	store := newFakeOptimizationStore(data.OptimizationJob{EventID: 3, CameraID: "camera_1", MP4Path: rel})
	opt := newOptimizer(store, &fakeEncoder{output: make([]byte, 400)}, root)

	worked, err := opt.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, worked)

	assert.Equal(t, rel, store.completed[3])

	info, err := os.Stat(filepath.Join(root.Path, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.EqualValues(t, 400, info.Size(), "smaller re-encode replaces the original")

	// Candidate temp file is gone.
	_, err = os.Stat(filepath.Join(root.Path, filepath.FromSlash(rel))+".opt.mp4")
	assert.True(t, os.IsNotExist(err))
}

func TestOptimizerKeepsOriginalWhenNotSmaller(t *testing.T) {
	root := storage.Root{Path: t.TempDir()}
	rel := "camera_1/videos/3_x_video.mp4"
	writeQuiescedMP4(t, root, rel, 1000)

	store := newFakeOptimizationStore(data.OptimizationJob{EventID: 3, CameraID: "camera_1", MP4Path: rel})
	opt := newOptimizer(store, &fakeEncoder{output: make([]byte, 1500)}, root)

	_, err := opt.ProcessBatch(context.Background())
	require.NoError(t, err)

	// Still marked optimized so the stage never re-runs.
	assert.Equal(t, rel, store.completed[3])

	info, err := os.Stat(filepath.Join(root.Path, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.EqualValues(t, 1000, info.Size(), "larger re-encode is discarded")
}

func TestOptimizerMissingMP4(t *testing.T) {
	root := storage.Root{Path: t.TempDir()}

	store := newFakeOptimizationStore(data.OptimizationJob{
		EventID: 3, CameraID: "camera_1", MP4Path: "camera_1/videos/gone.mp4"})
	opt := newOptimizer(store, &fakeEncoder{}, root)

	_, err := opt.ProcessBatch(context.Background())
	require.NoError(t, err)

	assert.Contains(t, store.failed[3], "missing")
	assert.Empty(t, store.completed)
}

func TestOptimizerEncodeFailure(t *testing.T) {
	root := storage.Root{Path: t.TempDir()}
	rel := "camera_1/videos/3_x_video.mp4"
	writeQuiescedMP4(t, root, rel, 1000)

	store := newFakeOptimizationStore(data.OptimizationJob{EventID: 3, CameraID: "camera_1", MP4Path: rel})
	opt := newOptimizer(store, &fakeEncoder{err: errors.New("invalid data")}, root)

	_, err := opt.ProcessBatch(context.Background())
	require.NoError(t, err)

	assert.Contains(t, store.failed[3], "invalid data")
}

func TestOptimizerReleasesOnStatError(t *testing.T) {
	root := storage.Root{Path: t.TempDir()}
	// A regular file where the videos directory belongs makes the stat fail
	// with ENOTDIR rather than not-exist.
	require.NoError(t, os.MkdirAll(filepath.Join(root.Path, "camera_1"), 0o775))
	require.NoError(t, os.WriteFile(filepath.Join(root.Path, "camera_1", "videos"), []byte("in the way"), 0o644))

	store := newFakeOptimizationStore(data.OptimizationJob{
		EventID: 3, CameraID: "camera_1", MP4Path: "camera_1/videos/3_x_video.mp4"})
	opt := newOptimizer(store, &fakeEncoder{}, root)

	_, err := opt.ProcessBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{3}, store.released, "transient stat failure releases the claim for retry")
	assert.Empty(t, store.failed)
}

func TestOptimizerReleasesUnquiescedFile(t *testing.T) {
	root := storage.Root{Path: t.TempDir()}
	rel := "camera_1/videos/3_x_video.mp4"
	abs := filepath.Join(root.Path, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o775))
	require.NoError(t, os.WriteFile(abs, make([]byte, 100), 0o644))

	store := newFakeOptimizationStore(data.OptimizationJob{EventID: 3, CameraID: "camera_1", MP4Path: rel})
	opt := newOptimizer(store, &fakeEncoder{}, root)

	_, err := opt.ProcessBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{3}, store.released)
}
