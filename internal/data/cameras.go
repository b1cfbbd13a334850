package data

import (
	"context"
	"database/sql"
	"time"
)

// Camera is a registered ingest endpoint. CameraID is the stable string the
// agents use ("camera_1"); ID is the surrogate key.
type Camera struct {
	ID        int        `json:"id"`
	CameraID  string     `json:"camera_id"`
	Name      string     `json:"name"`
	Location  string     `json:"location"`
	IPAddress string     `json:"ip_address"`
	Status    string     `json:"status"`
	LastSeen  *time.Time `json:"last_seen"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Camera status values. Transitions are advisory only.
const (
	CameraOnline  = "online"
	CameraOffline = "offline"
	CameraError   = "error"
)

type CameraModel struct {
	DB DBTX
}

const cameraColumns = `id, camera_id, name, location, ip_address, status, last_seen, created_at, updated_at`

// Register upserts a camera keyed by its stable string. On conflict every
// field except camera_id is overwritten (last-write-wins) and the canonical
// row is returned.
func (m CameraModel) Register(ctx context.Context, c *Camera) error {
	query := `
		INSERT INTO cameras (camera_id, name, location, ip_address, status)
		VALUES ($1, $2, $3, $4, 'online')
		ON CONFLICT (camera_id) DO UPDATE
		SET name = EXCLUDED.name,
		    location = EXCLUDED.location,
		    ip_address = EXCLUDED.ip_address,
		    status = 'online',
		    updated_at = now()
		RETURNING ` + cameraColumns

	row := m.DB.QueryRowContext(ctx, query, c.CameraID, c.Name, c.Location, c.IPAddress)
	if err := scanCamera(row, c); err != nil {
		return classify(err)
	}
	return nil
}

// Get fetches a camera by stable string.
func (m CameraModel) Get(ctx context.Context, cameraID string) (*Camera, error) {
	query := `SELECT ` + cameraColumns + ` FROM cameras WHERE camera_id = $1`

	var c Camera
	if err := scanCamera(m.DB.QueryRowContext(ctx, query, cameraID), &c); err != nil {
		return nil, classify(err)
	}
	return &c, nil
}

// List returns all cameras ordered by stable string.
func (m CameraModel) List(ctx context.Context) ([]*Camera, error) {
	query := `SELECT ` + cameraColumns + ` FROM cameras ORDER BY camera_id`

	rows, err := m.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var cameras []*Camera
	for rows.Next() {
		var c Camera
		if err := scanCamera(rows, &c); err != nil {
			return nil, classify(err)
		}
		cameras = append(cameras, &c)
	}
	return cameras, classify(rows.Err())
}

// Heartbeat stamps last_seen and flips the advisory status back to online.
func (m CameraModel) Heartbeat(ctx context.Context, cameraID string) error {
	query := `
		UPDATE cameras
		SET last_seen = now(), status = 'online', updated_at = now()
		WHERE camera_id = $1`

	res, err := m.DB.ExecContext(ctx, query, cameraID)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a camera. Events cascade via the foreign key.
func (m CameraModel) Delete(ctx context.Context, cameraID string) error {
	res, err := m.DB.ExecContext(ctx, `DELETE FROM cameras WHERE camera_id = $1`, cameraID)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Exists reports whether the stable string is registered.
func (m CameraModel) Exists(ctx context.Context, cameraID string) (bool, error) {
	var exists bool
	err := m.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM cameras WHERE camera_id = $1)`, cameraID).Scan(&exists)
	if err != nil {
		return false, classify(err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCamera(row rowScanner, c *Camera) error {
	var lastSeen sql.NullTime
	err := row.Scan(&c.ID, &c.CameraID, &c.Name, &c.Location, &c.IPAddress,
		&c.Status, &lastSeen, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return err
	}
	if lastSeen.Valid {
		c.LastSeen = &lastSeen.Time
	}
	return nil
}
