package worker

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securitycam/central/internal/data"
	"github.com/securitycam/central/internal/storage"
)

type fakeAIStore struct {
	jobs []data.AIJob

	results  map[int]data.AIResult
	released []int
	commitOK bool
}

func newFakeAIStore(jobs ...data.AIJob) *fakeAIStore {
	return &fakeAIStore{jobs: jobs, results: map[int]data.AIResult{}, commitOK: true}
}

func (s *fakeAIStore) ClaimAIJobs(ctx context.Context, claimant string, horizon time.Duration, limit int) ([]data.AIJob, error) {
	jobs := s.jobs
	s.jobs = nil
	return jobs, nil
}

func (s *fakeAIStore) CompleteAI(ctx context.Context, claimant string, eventID int, res data.AIResult) (bool, error) {
	if !s.commitOK {
		return false, nil
	}
	s.results[eventID] = res
	return true, nil
}

func (s *fakeAIStore) ReleaseAI(ctx context.Context, claimant string, eventID int) error {
	s.released = append(s.released, eventID)
	return nil
}

func (s *fakeAIStore) RecoverStaleAIClaims(ctx context.Context, horizon time.Duration) (int64, error) {
	return 0, nil
}

type fakeModel struct {
	describeFails int
	describeOut   string
	phraseFails   int
	phraseOut     string
}

func (f *fakeModel) Describe(ctx context.Context, imageA, imageB []byte) (string, error) {
	if f.describeFails > 0 {
		f.describeFails--
		return "", errors.New("model host: connection refused")
	}
	return f.describeOut, nil
}

func (f *fakeModel) ExtractPhrase(ctx context.Context, description string) (string, error) {
	if f.phraseFails > 0 {
		f.phraseFails--
		return "", errors.New("model host: timeout")
	}
	return f.phraseOut, nil
}

func writeQuiescedJPEG(t *testing.T, root storage.Root, rel string) {
	t.Helper()
	abs := filepath.Join(root.Path, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o775))

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 20, 20)), nil))
	require.NoError(t, os.WriteFile(abs, buf.Bytes(), 0o644))

	old := time.Now().Add(-time.Minute)
	require.NoError(t, os.Chtimes(abs, old, old))
}

func newAnalyzer(store AIStore, model ModelClient, root storage.Root) *Analyzer {
	return &Analyzer{
		Store:    store,
		Model:    model,
		Root:     root,
		Claimant: "aiprocd@test:1",

		BatchSize:       2,
		Quiescence:      3 * time.Second,
		ReclaimHorizon:  5 * time.Minute,
		PerEventTimeout: time.Minute,
		RetryBudget:     2,
		RetryDelay:      time.Millisecond,
	}
}

func aiJob(root storage.Root, t *testing.T) data.AIJob {
	t.Helper()
	job := data.AIJob{
		EventID:    3,
		CameraID:   "camera_1",
		ImageAPath: "camera_1/pictures/3_x_a.jpg",
		ImageBPath: "camera_1/pictures/3_x_b.jpg",
	}
	writeQuiescedJPEG(t, root, job.ImageAPath)
	writeQuiescedJPEG(t, root, job.ImageBPath)
	return job
}

func TestAnalyzerHappyPath(t *testing.T) {
	root := storage.Root{Path: t.TempDir()}
	store := newFakeAIStore(aiJob(root, t))
	model := &fakeModel{
		describeOut: "a person walks a dog past the porch",
		phraseOut:   "person walking dog",
	}

	worked, err := newAnalyzer(store, model, root).ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, worked)

	res, ok := store.results[3]
	require.True(t, ok)
	require.NotNil(t, res.PersonDetected)
	assert.True(t, *res.PersonDetected)
	require.NotNil(t, res.Objects)
	assert.Contains(t, *res.Objects, "dog")
	require.NotNil(t, res.Phrase)
	assert.Equal(t, "person walking dog", *res.Phrase)
	assert.Nil(t, res.Error)
}

func TestAnalyzerRetriesTransientDescribe(t *testing.T) {
	root := storage.Root{Path: t.TempDir()}
	store := newFakeAIStore(aiJob(root, t))
	model := &fakeModel{
		describeFails: 2, // within the budget of 2 retries
		describeOut:   "a cat on the fence",
		phraseOut:     "cat on fence",
	}

	_, err := newAnalyzer(store, model, root).ProcessBatch(context.Background())
	require.NoError(t, err)

	res, ok := store.results[3]
	require.True(t, ok)
	require.NotNil(t, res.Description)
	assert.Equal(t, "a cat on the fence", *res.Description)
}

func TestAnalyzerBudgetExhausted(t *testing.T) {
	root := storage.Root{Path: t.TempDir()}
	store := newFakeAIStore(aiJob(root, t))
	model := &fakeModel{describeFails: 10}

	_, err := newAnalyzer(store, model, root).ProcessBatch(context.Background())
	require.NoError(t, err)

	// Latched processed with the error; the event never blocks the queue.
	res, ok := store.results[3]
	require.True(t, ok)
	require.NotNil(t, res.Error)
	assert.Contains(t, *res.Error, "vision analysis failed")
	assert.Nil(t, res.Description)
	assert.Empty(t, store.released)
}

func TestAnalyzerPartialSuccess(t *testing.T) {
	root := storage.Root{Path: t.TempDir()}
	store := newFakeAIStore(aiJob(root, t))
	model := &fakeModel{
		describeOut: "a truck reverses into the driveway",
		phraseFails: 10,
	}

	_, err := newAnalyzer(store, model, root).ProcessBatch(context.Background())
	require.NoError(t, err)

	res, ok := store.results[3]
	require.True(t, ok)
	require.NotNil(t, res.Description, "vision result survives phrase failure")
	require.NotNil(t, res.Error)
	assert.Contains(t, *res.Error, "phrase extraction failed")
	assert.Nil(t, res.Phrase)
}

func TestAnalyzerReleasesOnMissingStill(t *testing.T) {
	root := storage.Root{Path: t.TempDir()}
	store := newFakeAIStore(data.AIJob{
		EventID:    3,
		CameraID:   "camera_1",
		ImageAPath: "camera_1/pictures/absent_a.jpg",
		ImageBPath: "camera_1/pictures/absent_b.jpg",
	})

	_, err := newAnalyzer(store, &fakeModel{}, root).ProcessBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{3}, store.released)
	assert.Empty(t, store.results)
}
