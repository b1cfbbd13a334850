package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCameraID(t *testing.T) {
	assert.Nil(t, CameraID("camera_id", "camera_1"))
	assert.Nil(t, CameraID("camera_id", "FrontDoor_2"))

	tests := []struct {
		name string
		id   string
	}{
		{"empty", ""},
		{"spaces", "camera 1"},
		{"dash", "camera-1"},
		{"slash", "camera/1"},
		{"too long", strings.Repeat("a", 51)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := CameraID("camera_id", tt.id)
			require.NotNil(t, fe)
			assert.Equal(t, "camera_id", fe.Field)
		})
	}
}

func TestSource(t *testing.T) {
	assert.Nil(t, Source("source", "central"))
	assert.Nil(t, Source("source", "camera_2"))
	assert.NotNil(t, Source("source", "bad source"))
}

func TestLevel(t *testing.T) {
	for _, level := range []string{"INFO", "WARNING", "ERROR"} {
		assert.Nil(t, Level("level", level))
	}
	assert.NotNil(t, Level("level", "DEBUG"))
	assert.NotNil(t, Level("level", "info"))
}

func TestEventStatus(t *testing.T) {
	for _, s := range []string{"complete", "interrupted", "failed"} {
		assert.Nil(t, EventStatus("status", s))
	}
	// processing is the initial state, never a transition target.
	assert.NotNil(t, EventStatus("status", "processing"))
	assert.NotNil(t, EventStatus("status", "done"))
}

func TestRelativePath(t *testing.T) {
	assert.Nil(t, RelativePath("path", "camera_1/videos/12_20260102_030405_video.h264"))

	tests := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"absolute", "/etc/passwd"},
		{"dotdot", "camera_1/../../../etc/passwd"},
		{"backslash", "camera_1\\videos\\x.h264"},
		{"too long", strings.Repeat("a/", 130)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, RelativePath("path", tt.path))
		})
	}
}

func TestScores(t *testing.T) {
	assert.Nil(t, MotionScore("motion_score", 0))
	assert.Nil(t, MotionScore("motion_score", 9999.5))
	assert.NotNil(t, MotionScore("motion_score", -0.1))

	assert.Nil(t, ConfidenceScore("confidence_score", 0))
	assert.Nil(t, ConfidenceScore("confidence_score", 100))
	assert.NotNil(t, ConfidenceScore("confidence_score", 100.1))
	assert.NotNil(t, ConfidenceScore("confidence_score", -1))
}

func TestPagination(t *testing.T) {
	assert.Nil(t, Limit("limit", 1, MaxEventLimit))
	assert.Nil(t, Limit("limit", MaxEventLimit, MaxEventLimit))
	assert.Nil(t, Limit("limit", 0, MaxEventLimit), "zero is a count-only query")
	assert.NotNil(t, Limit("limit", -1, MaxEventLimit))
	assert.NotNil(t, Limit("limit", MaxEventLimit+1, MaxEventLimit))

	assert.Nil(t, Offset("offset", 0))
	assert.NotNil(t, Offset("offset", -1))
}

func TestHours(t *testing.T) {
	assert.Nil(t, Hours("hours", 1))
	assert.Nil(t, Hours("hours", 168))
	assert.NotNil(t, Hours("hours", 0))
	assert.NotNil(t, Hours("hours", 169))
}

func TestFieldErrorMessage(t *testing.T) {
	fe := CameraID("camera_id", "")
	require.NotNil(t, fe)
	assert.Equal(t, "camera_id: is required", fe.Error())
}
