package data

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// LogLine is one diagnostic record from a camera or the central service.
// Append-only; IDs are database-assigned and match insertion order.
type LogLine struct {
	ID        int       `json:"id"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
}

// Log severity levels.
const (
	LevelInfo    = "INFO"
	LevelWarning = "WARNING"
	LevelError   = "ERROR"
)

// SourceCentral is the reserved source name for the central service itself.
const SourceCentral = "central"

type LogModel struct {
	DB DBTX
}

// InsertBatch inserts all lines in one statement (all-or-nothing) and
// returns the assigned ID range [first, last]. The unnest insert keeps the
// IDs contiguous and in input order.
func (m LogModel) InsertBatch(ctx context.Context, lines []LogLine) (first, last int, err error) {
	sources := make([]string, len(lines))
	timestamps := make([]time.Time, len(lines))
	levels := make([]string, len(lines))
	messages := make([]string, len(lines))
	for i, l := range lines {
		sources[i] = l.Source
		timestamps[i] = l.Timestamp
		levels[i] = l.Level
		messages[i] = l.Message
	}

	query := `
		INSERT INTO logs (source, timestamp, level, message)
		SELECT * FROM unnest($1::text[], $2::timestamptz[], $3::text[], $4::text[])
		RETURNING id`

	rows, err := m.DB.QueryContext(ctx, query,
		pq.Array(sources), pq.Array(timestamps), pq.Array(levels), pq.Array(messages))
	if err != nil {
		return 0, 0, classify(err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return 0, 0, classify(err)
		}
		if first == 0 {
			first = id
		}
		last = id
	}
	return first, last, classify(rows.Err())
}

// LogFilter narrows queries. An empty Levels slice means all levels; an
// empty Source means all sources. Start/End are inclusive.
type LogFilter struct {
	Source string
	Levels []string
	Start  *time.Time
	End    *time.Time
}

func (f LogFilter) where() (string, []any, int) {
	where := "WHERE 1=1"
	args := []any{}
	next := 1

	if f.Source != "" {
		where += fmt.Sprintf(" AND source = $%d", next)
		args = append(args, f.Source)
		next++
	}
	if len(f.Levels) > 0 {
		where += fmt.Sprintf(" AND level = ANY($%d)", next)
		args = append(args, pq.Array(f.Levels))
		next++
	}
	if f.Start != nil {
		where += fmt.Sprintf(" AND timestamp >= $%d", next)
		args = append(args, *f.Start)
		next++
	}
	if f.End != nil {
		where += fmt.Sprintf(" AND timestamp <= $%d", next)
		args = append(args, *f.End)
		next++
	}
	return where, args, next
}

// List returns a page of logs plus the total count. Newest first unless
// ascending; ID is always the tiebreaker so pagination is stable under
// concurrent inserts.
func (m LogModel) List(ctx context.Context, filter LogFilter, ascending bool, limit, offset int) ([]*LogLine, int, error) {
	where, args, next := filter.where()

	var total int
	if err := m.DB.QueryRowContext(ctx, "SELECT count(*) FROM logs "+where, args...).Scan(&total); err != nil {
		return nil, 0, classify(err)
	}

	order := "ORDER BY timestamp DESC, id DESC"
	if ascending {
		order = "ORDER BY timestamp ASC, id ASC"
	}
	query := fmt.Sprintf(`SELECT id, source, timestamp, level, message FROM logs %s %s LIMIT $%d OFFSET $%d`,
		where, order, next, next+1)
	args = append(args, limit, offset)

	lines, err := m.queryLines(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return lines, total, nil
}

// ListAfterID returns up to limit lines with ID strictly greater than the
// watermark, ascending by ID, honoring the filter. Callers keep a
// monotonically increasing watermark to tail without re-reading.
func (m LogModel) ListAfterID(ctx context.Context, afterID int, filter LogFilter, limit int) ([]*LogLine, error) {
	where, args, next := filter.where()
	query := fmt.Sprintf(`
		SELECT id, source, timestamp, level, message FROM logs
		%s AND id > $%d
		ORDER BY id ASC
		LIMIT $%d`, where, next, next+1)
	args = append(args, afterID, limit)

	return m.queryLines(ctx, query, args...)
}

// DeleteOlderThan prunes logs past the retention horizon.
func (m LogModel) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := m.DB.ExecContext(ctx, `DELETE FROM logs WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, classify(err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (m LogModel) queryLines(ctx context.Context, query string, args ...any) ([]*LogLine, error) {
	rows, err := m.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var lines []*LogLine
	for rows.Next() {
		var l LogLine
		if err := rows.Scan(&l.ID, &l.Source, &l.Timestamp, &l.Level, &l.Message); err != nil {
			return nil, classify(err)
		}
		lines = append(lines, &l)
	}
	return lines, classify(rows.Err())
}
