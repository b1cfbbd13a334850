package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Event is one motion incident and the artifacts it produces.
type Event struct {
	ID              int        `json:"id"`
	CameraID        string     `json:"camera_id"`
	Timestamp       time.Time  `json:"timestamp"`
	MotionScore     float64    `json:"motion_score"`
	ConfidenceScore *float64   `json:"confidence_score"`
	Status          string     `json:"status"`

	ImageAPath     *string  `json:"image_a_path"`
	ImageBPath     *string  `json:"image_b_path"`
	ThumbnailPath  *string  `json:"thumbnail_path"`
	VideoH264Path  *string  `json:"video_h264_path"`
	VideoMP4Path   *string  `json:"video_mp4_path"`
	VideoDuration  *float64 `json:"video_duration"`

	ImageATransferred   bool `json:"image_a_transferred"`
	ImageBTransferred   bool `json:"image_b_transferred"`
	ThumbnailTransferred bool `json:"thumbnail_transferred"`
	VideoTransferred    bool `json:"video_transferred"`

	MP4ConversionStatus string     `json:"mp4_conversion_status"`
	MP4ConvertedAt      *time.Time `json:"mp4_converted_at"`
	MP4ClaimedBy        *string    `json:"mp4_claimed_by,omitempty"`
	MP4ClaimedAt        *time.Time `json:"mp4_claimed_at,omitempty"`
	MP4ConversionError  *string    `json:"mp4_conversion_error"`

	AIProcessed      bool       `json:"ai_processed"`
	AIProcessedAt    *time.Time `json:"ai_processed_at"`
	AIPersonDetected *bool      `json:"ai_person_detected"`
	AIConfidence     *float64   `json:"ai_confidence"`
	AIObjects        *string    `json:"ai_objects"`
	AIDescription    *string    `json:"ai_description"`
	AIPhrase         *string    `json:"ai_phrase"`
	AIError          *string    `json:"ai_error"`

	CreatedAt time.Time `json:"created_at"`
}

// Event processing status (camera-driven). Write-once into a terminal state.
const (
	EventProcessing  = "processing"
	EventComplete    = "complete"
	EventInterrupted = "interrupted"
	EventFailed      = "failed"
)

// MP4 conversion status (worker-driven). Forward-only:
// pending -> processing -> complete -> optimized, with failed terminal.
const (
	MP4Pending    = "pending"
	MP4Processing = "processing"
	MP4Complete   = "complete"
	MP4Optimized  = "optimized"
	MP4Failed     = "failed"
)

// Artifact kinds accepted by UpdateFile.
const (
	FileImageA    = "image_a"
	FileImageB    = "image_b"
	FileThumbnail = "thumbnail"
	FileVideoH264 = "video_h264"
)

type EventModel struct {
	DB DBTX
}

const eventColumns = `
	id, camera_id, timestamp, motion_score, confidence_score, status,
	image_a_path, image_b_path, thumbnail_path, video_h264_path, video_mp4_path, video_duration,
	image_a_transferred, image_b_transferred, thumbnail_transferred, video_transferred,
	mp4_conversion_status, mp4_converted_at, mp4_claimed_by, mp4_claimed_at, mp4_conversion_error,
	ai_processed, ai_processed_at, ai_person_detected, ai_confidence, ai_objects,
	ai_description, ai_phrase, ai_error, created_at`

// Create inserts a new event in its initial state: status=processing,
// mp4 status=pending, all artifacts absent, all transfer flags false.
func (m EventModel) Create(ctx context.Context, e *Event) error {
	query := `
		INSERT INTO events (camera_id, timestamp, motion_score, confidence_score)
		VALUES ($1, $2, $3, $4)
		RETURNING id, status, mp4_conversion_status, created_at`

	err := m.DB.QueryRowContext(ctx, query,
		e.CameraID, e.Timestamp, e.MotionScore, e.ConfidenceScore,
	).Scan(&e.ID, &e.Status, &e.MP4ConversionStatus, &e.CreatedAt)
	return classify(err)
}

// Get fetches the full event record by ID.
func (m EventModel) Get(ctx context.Context, id int) (*Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	var e Event
	if err := scanEvent(m.DB.QueryRowContext(ctx, query, id), &e); err != nil {
		return nil, classify(err)
	}
	return &e, nil
}

// EventFilter narrows List.
type EventFilter struct {
	CameraID    string
	Start       *time.Time
	End         *time.Time
	Status      string
	MP4Status   string
	AIProcessed *bool
}

// List returns events newest-first by event timestamp (ID as tiebreaker)
// with the total count for the caller's page.
func (m EventModel) List(ctx context.Context, filter EventFilter, limit, offset int) ([]*Event, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	next := 1

	if filter.CameraID != "" {
		where += fmt.Sprintf(" AND camera_id = $%d", next)
		args = append(args, filter.CameraID)
		next++
	}
	if filter.Start != nil {
		where += fmt.Sprintf(" AND timestamp >= $%d", next)
		args = append(args, *filter.Start)
		next++
	}
	if filter.End != nil {
		where += fmt.Sprintf(" AND timestamp <= $%d", next)
		args = append(args, *filter.End)
		next++
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", next)
		args = append(args, filter.Status)
		next++
	}
	if filter.MP4Status != "" {
		where += fmt.Sprintf(" AND mp4_conversion_status = $%d", next)
		args = append(args, filter.MP4Status)
		next++
	}
	if filter.AIProcessed != nil {
		where += fmt.Sprintf(" AND ai_processed = $%d", next)
		args = append(args, *filter.AIProcessed)
		next++
	}

	var total int
	countQuery := "SELECT count(*) FROM events " + where
	if err := m.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, classify(err)
	}

	query := fmt.Sprintf(`SELECT %s FROM events %s ORDER BY timestamp DESC, id DESC LIMIT $%d OFFSET $%d`,
		eventColumns, where, next, next+1)
	args = append(args, limit, offset)

	rows, err := m.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, classify(err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var e Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, 0, classify(err)
		}
		events = append(events, &e)
	}
	return events, total, classify(rows.Err())
}

// Neighbors returns the previous and next event IDs by ID order, optionally
// scoped to one camera. ID order matches creation order; out-of-order
// arrivals therefore navigate in arrival order.
func (m EventModel) Neighbors(ctx context.Context, id int, cameraID string) (prev, next *int, err error) {
	query := `
		SELECT
			(SELECT max(id) FROM events WHERE id < $1 AND ($2 = '' OR camera_id = $2)),
			(SELECT min(id) FROM events WHERE id > $1 AND ($2 = '' OR camera_id = $2))`

	var p, n sql.NullInt64
	if err := m.DB.QueryRowContext(ctx, query, id, cameraID).Scan(&p, &n); err != nil {
		return nil, nil, classify(err)
	}
	if p.Valid {
		v := int(p.Int64)
		prev = &v
	}
	if n.Valid {
		v := int(n.Int64)
		next = &v
	}
	return prev, next, nil
}

var fileColumns = map[string][2]string{
	FileImageA:    {"image_a_path", "image_a_transferred"},
	FileImageB:    {"image_b_path", "image_b_transferred"},
	FileThumbnail: {"thumbnail_path", "thumbnail_transferred"},
	FileVideoH264: {"video_h264_path", "video_transferred"},
}

// UpdateFile records an artifact arrival: writes the path column and flips
// the transfer flag. Idempotent for a repeated identical path; a different
// path for an already-set artifact is ErrConflict. For video_h264 the
// duration is stamped when supplied.
func (m EventModel) UpdateFile(ctx context.Context, id int, fileType, path string, duration *float64) (*Event, error) {
	cols, ok := fileColumns[fileType]
	if !ok {
		return nil, fmt.Errorf("unknown file type %q", fileType)
	}
	pathCol, flagCol := cols[0], cols[1]

	query := fmt.Sprintf(`
		UPDATE events
		SET %[1]s = $1, %[2]s = TRUE,
		    video_duration = CASE WHEN $2::double precision IS NOT NULL THEN $2 ELSE video_duration END
		WHERE id = $3 AND (%[1]s IS NULL OR %[1]s = $1)
		RETURNING `+eventColumns, pathCol, flagCol)

	var e Event
	err := scanEvent(m.DB.QueryRowContext(ctx, query, path, duration, id), &e)
	if err == sql.ErrNoRows {
		// Either the event is gone or the artifact already has a different path.
		if _, getErr := m.Get(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("%w: %s already recorded with a different path", ErrConflict, fileType)
	}
	if err != nil {
		return nil, classify(err)
	}
	return &e, nil
}

// UpdateStatus moves the event status out of processing into a terminal
// state. Terminal states never transition again; a second attempt is
// ErrConflict.
func (m EventModel) UpdateStatus(ctx context.Context, id int, status string) (*Event, error) {
	query := `
		UPDATE events
		SET status = $1
		WHERE id = $2 AND status = 'processing'
		RETURNING ` + eventColumns

	var e Event
	err := scanEvent(m.DB.QueryRowContext(ctx, query, status, id), &e)
	if err == sql.ErrNoRows {
		if _, getErr := m.Get(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("%w: event %d is already terminal", ErrConflict, id)
	}
	if err != nil {
		return nil, classify(err)
	}
	return &e, nil
}

// DeleteOlderThan prunes events older than the cutoff. Used by retention.
func (m EventModel) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := m.DB.ExecContext(ctx, `DELETE FROM events WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, classify(err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func scanEvent(row rowScanner, e *Event) error {
	var (
		confidence                      sql.NullFloat64
		imgA, imgB, thumb, h264, mp4    sql.NullString
		duration                        sql.NullFloat64
		mp4ConvertedAt, mp4ClaimedAt    sql.NullTime
		mp4ClaimedBy, mp4Err            sql.NullString
		aiProcessedAt                   sql.NullTime
		aiPerson                        sql.NullBool
		aiConfidence                    sql.NullFloat64
		aiObjects, aiDesc, aiPhrase     sql.NullString
		aiErr                           sql.NullString
	)

	err := row.Scan(
		&e.ID, &e.CameraID, &e.Timestamp, &e.MotionScore, &confidence, &e.Status,
		&imgA, &imgB, &thumb, &h264, &mp4, &duration,
		&e.ImageATransferred, &e.ImageBTransferred, &e.ThumbnailTransferred, &e.VideoTransferred,
		&e.MP4ConversionStatus, &mp4ConvertedAt, &mp4ClaimedBy, &mp4ClaimedAt, &mp4Err,
		&e.AIProcessed, &aiProcessedAt, &aiPerson, &aiConfidence, &aiObjects,
		&aiDesc, &aiPhrase, &aiErr, &e.CreatedAt,
	)
	if err != nil {
		return err
	}

	e.ConfidenceScore = nullFloat(confidence)
	e.ImageAPath = nullString(imgA)
	e.ImageBPath = nullString(imgB)
	e.ThumbnailPath = nullString(thumb)
	e.VideoH264Path = nullString(h264)
	e.VideoMP4Path = nullString(mp4)
	e.VideoDuration = nullFloat(duration)
	e.MP4ConvertedAt = nullTime(mp4ConvertedAt)
	e.MP4ClaimedBy = nullString(mp4ClaimedBy)
	e.MP4ClaimedAt = nullTime(mp4ClaimedAt)
	e.MP4ConversionError = nullString(mp4Err)
	e.AIProcessedAt = nullTime(aiProcessedAt)
	e.AIPersonDetected = nullBool(aiPerson)
	e.AIConfidence = nullFloat(aiConfidence)
	e.AIObjects = nullString(aiObjects)
	e.AIDescription = nullString(aiDesc)
	e.AIPhrase = nullString(aiPhrase)
	e.AIError = nullString(aiErr)
	return nil
}

func nullString(v sql.NullString) *string {
	if v.Valid {
		return &v.String
	}
	return nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if v.Valid {
		return &v.Float64
	}
	return nil
}

func nullTime(v sql.NullTime) *time.Time {
	if v.Valid {
		return &v.Time
	}
	return nil
}

func nullBool(v sql.NullBool) *bool {
	if v.Valid {
		return &v.Bool
	}
	return nil
}

// --- Worker claim primitives ---
//
// Claims are conditional row updates in a single statement: the predicate
// matches only unclaimed rows or rows whose claim is older than the reclaim
// horizon, so at most one worker holds a fresh claim per sub-state. Commits
// are guarded by the claimant string; a reclaimed row makes the prior
// worker's commit a no-op.

// ConversionJob is a claimed candidate for H.264 -> MP4 conversion.
type ConversionJob struct {
	EventID       int
	CameraID      string
	H264Path      string
	VideoDuration *float64
	CreatedAt     time.Time
}

// ClaimConversions claims up to limit events pending conversion (or stuck in
// processing beyond the horizon) for the given worker instance.
func (m EventModel) ClaimConversions(ctx context.Context, claimant string, horizon time.Duration, limit int) ([]ConversionJob, error) {
	query := `
		UPDATE events
		SET mp4_conversion_status = 'processing', mp4_claimed_by = $1, mp4_claimed_at = now()
		WHERE id IN (
			SELECT id FROM events
			WHERE video_transferred = TRUE
			  AND video_h264_path IS NOT NULL AND video_h264_path <> ''
			  AND (mp4_conversion_status = 'pending'
			       OR (mp4_conversion_status = 'processing' AND mp4_claimed_at < now() - $2::interval))
			ORDER BY timestamp DESC
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, camera_id, video_h264_path, video_duration, created_at`

	rows, err := m.DB.QueryContext(ctx, query, claimant, interval(horizon), limit)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var jobs []ConversionJob
	for rows.Next() {
		var j ConversionJob
		var duration sql.NullFloat64
		if err := rows.Scan(&j.EventID, &j.CameraID, &j.H264Path, &duration, &j.CreatedAt); err != nil {
			return nil, classify(err)
		}
		j.VideoDuration = nullFloat(duration)
		jobs = append(jobs, j)
	}
	return jobs, classify(rows.Err())
}

// CompleteConversion commits a successful conversion. The update only lands
// while this claimant still owns the row; false means the claim was lost
// (stale reclaim or cascading delete) and the result must be discarded.
func (m EventModel) CompleteConversion(ctx context.Context, claimant string, eventID int, mp4Path string, duration float64) (bool, error) {
	query := `
		UPDATE events
		SET mp4_conversion_status = 'complete',
		    video_mp4_path = $1,
		    video_duration = $2,
		    mp4_converted_at = now(),
		    mp4_conversion_error = NULL,
		    mp4_claimed_by = NULL,
		    mp4_claimed_at = NULL
		WHERE id = $3 AND mp4_claimed_by = $4 AND mp4_conversion_status = 'processing'`

	res, err := m.DB.ExecContext(ctx, query, mp4Path, duration, eventID, claimant)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// FailConversion latches the MP4 sub-state to failed with a reason.
func (m EventModel) FailConversion(ctx context.Context, claimant string, eventID int, reason string) error {
	query := `
		UPDATE events
		SET mp4_conversion_status = 'failed',
		    mp4_conversion_error = $1,
		    mp4_claimed_by = NULL,
		    mp4_claimed_at = NULL
		WHERE id = $2 AND mp4_claimed_by = $3 AND mp4_conversion_status = 'processing'`

	_, err := m.DB.ExecContext(ctx, query, reason, eventID, claimant)
	return classify(err)
}

// ReleaseConversion reverts a claim without judging the event, e.g. when the
// artifact has not quiesced yet. The row returns to pending.
func (m EventModel) ReleaseConversion(ctx context.Context, claimant string, eventID int) error {
	query := `
		UPDATE events
		SET mp4_conversion_status = 'pending',
		    mp4_claimed_by = NULL,
		    mp4_claimed_at = NULL
		WHERE id = $1 AND mp4_claimed_by = $2 AND mp4_conversion_status = 'processing'`

	_, err := m.DB.ExecContext(ctx, query, eventID, claimant)
	return classify(err)
}

// RecoverStaleConversions resets rows stuck in processing beyond the horizon
// back to pending. Run by every conversion worker at boot and periodically.
func (m EventModel) RecoverStaleConversions(ctx context.Context, horizon time.Duration) (int64, error) {
	query := `
		UPDATE events
		SET mp4_conversion_status = 'pending', mp4_claimed_by = NULL, mp4_claimed_at = NULL
		WHERE mp4_conversion_status = 'processing' AND mp4_claimed_at < now() - $1::interval`

	res, err := m.DB.ExecContext(ctx, query, interval(horizon))
	if err != nil {
		return 0, classify(err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// OptimizationJob is a claimed candidate for MP4 re-encoding.
type OptimizationJob struct {
	EventID  int
	CameraID string
	MP4Path  string
}

// ClaimOptimizations claims converted MP4s for re-encoding. The sub-state
// stays 'complete' until commit; ownership lives in the claim columns so the
// forward-only DAG is preserved.
func (m EventModel) ClaimOptimizations(ctx context.Context, claimant string, horizon time.Duration, limit int) ([]OptimizationJob, error) {
	query := `
		UPDATE events
		SET mp4_claimed_by = $1, mp4_claimed_at = now()
		WHERE id IN (
			SELECT id FROM events
			WHERE mp4_conversion_status = 'complete'
			  AND video_mp4_path IS NOT NULL AND video_mp4_path <> ''
			  AND (mp4_claimed_by IS NULL OR mp4_claimed_at < now() - $2::interval)
			ORDER BY timestamp DESC
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, camera_id, video_mp4_path`

	rows, err := m.DB.QueryContext(ctx, query, claimant, interval(horizon), limit)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var jobs []OptimizationJob
	for rows.Next() {
		var j OptimizationJob
		if err := rows.Scan(&j.EventID, &j.CameraID, &j.MP4Path); err != nil {
			return nil, classify(err)
		}
		jobs = append(jobs, j)
	}
	return jobs, classify(rows.Err())
}

// CompleteOptimization advances complete -> optimized and rewrites the MP4
// path. Guarded by the claimant.
func (m EventModel) CompleteOptimization(ctx context.Context, claimant string, eventID int, mp4Path string) (bool, error) {
	query := `
		UPDATE events
		SET mp4_conversion_status = 'optimized',
		    video_mp4_path = $1,
		    mp4_claimed_by = NULL,
		    mp4_claimed_at = NULL
		WHERE id = $2 AND mp4_claimed_by = $3 AND mp4_conversion_status = 'complete'`

	res, err := m.DB.ExecContext(ctx, query, mp4Path, eventID, claimant)
	if err != nil {
		return false, classify(err)
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// FailOptimization latches failed from the complete state.
func (m EventModel) FailOptimization(ctx context.Context, claimant string, eventID int, reason string) error {
	query := `
		UPDATE events
		SET mp4_conversion_status = 'failed',
		    mp4_conversion_error = $1,
		    mp4_claimed_by = NULL,
		    mp4_claimed_at = NULL
		WHERE id = $2 AND mp4_claimed_by = $3 AND mp4_conversion_status = 'complete'`

	_, err := m.DB.ExecContext(ctx, query, reason, eventID, claimant)
	return classify(err)
}

// ReleaseOptimization drops the claim leaving the row claimable again.
func (m EventModel) ReleaseOptimization(ctx context.Context, claimant string, eventID int) error {
	query := `
		UPDATE events
		SET mp4_claimed_by = NULL, mp4_claimed_at = NULL
		WHERE id = $1 AND mp4_claimed_by = $2 AND mp4_conversion_status = 'complete'`

	_, err := m.DB.ExecContext(ctx, query, eventID, claimant)
	return classify(err)
}

// AIJob is a claimed candidate for vision/language analysis.
type AIJob struct {
	EventID    int
	CameraID   string
	ImageAPath string
	ImageBPath string
}

// ClaimAIJobs claims un-analyzed events whose two stills have transferred.
func (m EventModel) ClaimAIJobs(ctx context.Context, claimant string, horizon time.Duration, limit int) ([]AIJob, error) {
	query := `
		UPDATE events
		SET ai_claimed_by = $1, ai_claimed_at = now()
		WHERE id IN (
			SELECT id FROM events
			WHERE ai_processed = FALSE
			  AND image_a_transferred = TRUE AND image_b_transferred = TRUE
			  AND (ai_claimed_by IS NULL OR ai_claimed_at < now() - $2::interval)
			ORDER BY timestamp DESC
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, camera_id, image_a_path, image_b_path`

	rows, err := m.DB.QueryContext(ctx, query, claimant, interval(horizon), limit)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var jobs []AIJob
	for rows.Next() {
		var j AIJob
		if err := rows.Scan(&j.EventID, &j.CameraID, &j.ImageAPath, &j.ImageBPath); err != nil {
			return nil, classify(err)
		}
		jobs = append(jobs, j)
	}
	return jobs, classify(rows.Err())
}

// AIResult carries everything the AI worker writes in one transaction.
// Error is set when the retry budget was exhausted; Description may still be
// present from a successful vision call (partial success).
type AIResult struct {
	PersonDetected *bool
	Confidence     *float64
	Objects        *string
	Description    *string
	Phrase         *string
	Error          *string
}

// CompleteAI latches ai_processed=true and writes all AI fields atomically.
// The latch never reverts; the predicate keeps the write exactly-once.
func (m EventModel) CompleteAI(ctx context.Context, claimant string, eventID int, res AIResult) (bool, error) {
	query := `
		UPDATE events
		SET ai_processed = TRUE,
		    ai_processed_at = now(),
		    ai_person_detected = $1,
		    ai_confidence = $2,
		    ai_objects = $3,
		    ai_description = $4,
		    ai_phrase = $5,
		    ai_error = $6,
		    ai_claimed_by = NULL,
		    ai_claimed_at = NULL
		WHERE id = $7 AND ai_claimed_by = $8 AND ai_processed = FALSE`

	r, err := m.DB.ExecContext(ctx, query,
		nullableBool(res.PersonDetected), nullableFloat(res.Confidence),
		nullableStr(res.Objects), nullableStr(res.Description),
		nullableStr(res.Phrase), nullableStr(res.Error),
		eventID, claimant)
	if err != nil {
		return false, classify(err)
	}
	n, _ := r.RowsAffected()
	return n == 1, nil
}

// ReleaseAI drops the claim so a later iteration retries the event.
func (m EventModel) ReleaseAI(ctx context.Context, claimant string, eventID int) error {
	query := `
		UPDATE events
		SET ai_claimed_by = NULL, ai_claimed_at = NULL
		WHERE id = $1 AND ai_claimed_by = $2 AND ai_processed = FALSE`

	_, err := m.DB.ExecContext(ctx, query, eventID, claimant)
	return classify(err)
}

// RecoverStaleAIClaims clears claims older than the horizon.
func (m EventModel) RecoverStaleAIClaims(ctx context.Context, horizon time.Duration) (int64, error) {
	query := `
		UPDATE events
		SET ai_claimed_by = NULL, ai_claimed_at = NULL
		WHERE ai_processed = FALSE AND ai_claimed_at < now() - $1::interval`

	res, err := m.DB.ExecContext(ctx, query, interval(horizon))
	if err != nil {
		return 0, classify(err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func interval(d time.Duration) string {
	return fmt.Sprintf("%d seconds", int(d.Seconds()))
}

func nullableStr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullableBool(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}
