package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func cameraRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "camera_id", "name", "location", "ip_address", "status",
		"last_seen", "created_at", "updated_at",
	}).AddRow(1, "camera_1", "Front Door", "porch", "192.168.1.20", "online", nil, now, now)
}

func TestCameraRegister(t *testing.T) {
	db, mock := newMock(t)
	m := CameraModel{DB: db}

	now := time.Now()
	mock.ExpectQuery("INSERT INTO cameras").
		WithArgs("camera_1", "Front Door", "porch", "192.168.1.20").
		WillReturnRows(cameraRows(now))

	c := &Camera{CameraID: "camera_1", Name: "Front Door", Location: "porch", IPAddress: "192.168.1.20"}
	require.NoError(t, m.Register(context.Background(), c))

	assert.Equal(t, 1, c.ID)
	assert.Equal(t, "online", c.Status)
	assert.Nil(t, c.LastSeen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCameraGetNotFound(t *testing.T) {
	db, mock := newMock(t)
	m := CameraModel{DB: db}

	mock.ExpectQuery("SELECT (.+) FROM cameras WHERE camera_id").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := m.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCameraHeartbeat(t *testing.T) {
	db, mock := newMock(t)
	m := CameraModel{DB: db}

	mock.ExpectExec("UPDATE cameras").
		WithArgs("camera_1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, m.Heartbeat(context.Background(), "camera_1"))

	mock.ExpectExec("UPDATE cameras").
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, m.Heartbeat(context.Background(), "ghost"), ErrNotFound)
}

func TestCameraExists(t *testing.T) {
	db, mock := newMock(t)
	m := CameraModel{DB: db}

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("camera_1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := m.Exists(context.Background(), "camera_1")
	require.NoError(t, err)
	assert.True(t, ok)
}
