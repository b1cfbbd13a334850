package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectDisabled(t *testing.T) {
	p, err := Connect("", "central.events", "test")
	require.NoError(t, err)
	assert.Nil(t, p, "empty URL disables notifications")
}

func TestNilPublisherIsSafe(t *testing.T) {
	var p *Publisher
	// All methods must tolerate the disabled (nil) publisher.
	p.Publish(KindCreated, 1, "camera_1")
	p.Close()
}
