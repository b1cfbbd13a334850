// Package notify publishes event lifecycle notifications over NATS so
// viewers can react without polling. Publishing is best effort: a nil
// Publisher or a failed publish never blocks the pipeline.
package notify

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// Lifecycle kinds carried in the subject suffix.
const (
	KindCreated   = "created"
	KindConverted = "converted"
	KindOptimized = "optimized"
	KindAnalyzed  = "analyzed"
)

// Notification is the published payload.
type Notification struct {
	Kind      string    `json:"kind"`
	EventID   int       `json:"event_id"`
	CameraID  string    `json:"camera_id"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher struct {
	conn          *nats.Conn
	subjectPrefix string
	maxRetries    int
}

// Connect dials NATS. An empty URL disables notifications and returns nil,
// which every method tolerates.
func Connect(url, subjectPrefix, name string) (*Publisher, error) {
	if url == "" {
		return nil, nil
	}
	conn, err := nats.Connect(url, nats.Name(name))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Publisher{conn: conn, subjectPrefix: subjectPrefix, maxRetries: 3}, nil
}

// Publish sends one notification on {prefix}.{kind}, retrying briefly.
func (p *Publisher) Publish(kind string, eventID int, cameraID string) {
	if p == nil {
		return
	}
	n := Notification{Kind: kind, EventID: eventID, CameraID: cameraID, Timestamp: time.Now().UTC()}
	data, err := json.Marshal(n)
	if err != nil {
		return
	}

	subject := fmt.Sprintf("%s.%s", p.subjectPrefix, kind)
	for i := 0; i <= p.maxRetries; i++ {
		if err = p.conn.Publish(subject, data); err == nil {
			return
		}
		time.Sleep(time.Duration(i*100) * time.Millisecond)
	}
	log.Printf("notify: publish %s for event %d failed: %v", subject, eventID, err)
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.conn.Close()
}
