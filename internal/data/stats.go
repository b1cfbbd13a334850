package data

import (
	"context"
	"time"
)

// CameraStats summarizes one camera's recent activity. Byte counts are
// estimates from typical artifact sizes since file sizes are not stored.
type CameraStats struct {
	Events      int     `json:"events"`
	Files       int     `json:"files"`
	Bytes       int64   `json:"bytes"`
	PeriodHours int     `json:"period_hours"`
}

// Estimated artifact sizes used for byte totals.
const (
	estImageBytes     = 200_000
	estThumbBytes     = 50_000
	estVideoBytesPerS = 500_000
)

type StatsModel struct {
	DB DBTX
}

// CameraStats counts events and transferred artifacts for one camera over
// the trailing window.
func (m StatsModel) CameraStats(ctx context.Context, cameraID string, hours int) (*CameraStats, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	query := `
		SELECT
			count(*),
			coalesce(sum(
				(image_a_transferred::int) + (image_b_transferred::int) +
				(thumbnail_transferred::int) + (video_transferred::int)), 0),
			coalesce(sum(
				(image_a_transferred::int) * $1 + (image_b_transferred::int) * $1 +
				(thumbnail_transferred::int) * $2 +
				CASE WHEN video_transferred THEN coalesce(video_duration, 0) * $3 ELSE 0 END), 0)
		FROM events
		WHERE camera_id = $4 AND timestamp >= $5`

	var s CameraStats
	var bytes float64
	err := m.DB.QueryRowContext(ctx, query,
		estImageBytes, estThumbBytes, estVideoBytesPerS, cameraID, cutoff,
	).Scan(&s.Events, &s.Files, &bytes)
	if err != nil {
		return nil, classify(err)
	}
	s.Bytes = int64(bytes)
	s.PeriodHours = hours
	return &s, nil
}

// StatusCount is one bucket of an aggregate breakdown.
type StatusCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// DayCount is the number of events on one UTC day.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// Overview is the read-only aggregate surface for dashboards.
type Overview struct {
	EventsByCamera    []StatusCount `json:"events_by_camera"`
	EventsByStatus    []StatusCount `json:"events_by_status"`
	EventsByMP4Status []StatusCount `json:"events_by_mp4_status"`
	EventsByDay       []DayCount    `json:"events_by_day"`
	DaysTotal         int           `json:"days_total"`
}

// Overview aggregates totals per camera, per status, per MP4 status and per
// day. The per-day series is paginated (newest day first).
func (m StatsModel) Overview(ctx context.Context, dayLimit, dayOffset int) (*Overview, error) {
	o := &Overview{}

	byCamera, err := m.grouped(ctx, `SELECT camera_id, count(*) FROM events GROUP BY camera_id ORDER BY camera_id`)
	if err != nil {
		return nil, err
	}
	o.EventsByCamera = byCamera

	byStatus, err := m.grouped(ctx, `SELECT status, count(*) FROM events GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, err
	}
	o.EventsByStatus = byStatus

	byMP4, err := m.grouped(ctx, `SELECT mp4_conversion_status, count(*) FROM events GROUP BY mp4_conversion_status ORDER BY mp4_conversion_status`)
	if err != nil {
		return nil, err
	}
	o.EventsByMP4Status = byMP4

	if err := m.DB.QueryRowContext(ctx,
		`SELECT count(DISTINCT date_trunc('day', timestamp)) FROM events`).Scan(&o.DaysTotal); err != nil {
		return nil, classify(err)
	}

	rows, err := m.DB.QueryContext(ctx, `
		SELECT to_char(date_trunc('day', timestamp), 'YYYY-MM-DD') AS day, count(*)
		FROM events
		GROUP BY day
		ORDER BY day DESC
		LIMIT $1 OFFSET $2`, dayLimit, dayOffset)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	for rows.Next() {
		var d DayCount
		if err := rows.Scan(&d.Day, &d.Count); err != nil {
			return nil, classify(err)
		}
		o.EventsByDay = append(o.EventsByDay, d)
	}
	return o, classify(rows.Err())
}

func (m StatsModel) grouped(ctx context.Context, query string) ([]StatusCount, error) {
	rows, err := m.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var out []StatusCount
	for rows.Next() {
		var s StatusCount
		if err := rows.Scan(&s.Key, &s.Count); err != nil {
			return nil, classify(err)
		}
		out = append(out, s)
	}
	return out, classify(rows.Err())
}
