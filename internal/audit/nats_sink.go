package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// SubjectPrefix is prepended to every published event subject.
const SubjectPrefix = "ward.events"

// NatsSink publishes events so other services can follow the ward in real
// time. It does not store anything.
type NatsSink struct {
	conn *nats.Conn
}

// ConnectNats dials the server with bounded reconnects.
func ConnectNats(url, name string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(10),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return nc, nil
}

func NewNatsSink(conn *nats.Conn) *NatsSink {
	return &NatsSink{conn: conn}
}

type natsMessage struct {
	Type      string          `json:"type"`
	Subject   string          `json:"subject"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func (s *NatsSink) Record(_ context.Context, ev Event) error {
	data, err := json.Marshal(natsMessage{
		Type:      ev.Type,
		Subject:   ev.Subject,
		Payload:   json.RawMessage(ev.Payload),
		CreatedAt: ev.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := s.conn.Publish(Topic(ev.Type), data); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Topic maps an event type to its NATS subject, e.g. PATIENT_ASSIGNED to
// ward.events.patient_assigned.
func Topic(eventType string) string {
	return SubjectPrefix + "." + strings.ToLower(eventType)
}

// FanOut records every event in each sink in turn. All sinks are tried;
// the first error is returned.
type FanOut []Sink

func (f FanOut) Record(ctx context.Context, ev Event) error {
	var first error
	for _, s := range f {
		if err := s.Record(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
