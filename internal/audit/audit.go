package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event is one entry of the audit trail. Subject is the identifier of the
// thing the event is about (room number, appointment id, plate).
type Event struct {
	ID        int64
	Type      string
	Subject   string
	Payload   []byte
	CreatedAt time.Time
}

type Sink interface {
	Record(ctx context.Context, ev Event) error
}

// Reader returns the latest events recorded for a subject, newest first.
type Reader interface {
	Recent(ctx context.Context, subject string, limit int) ([]Event, error)
}

// Recorder marshals payloads and writes events to a Sink. Failures are logged
// and never returned: an operation that already happened is not undone
// because its audit row could not be written.
type Recorder struct {
	sink   Sink
	logger *zap.Logger
}

func NewRecorder(sink Sink, logger *zap.Logger) *Recorder {
	if sink == nil {
		sink = NewLogSink(logger)
	}
	return &Recorder{sink: sink, logger: logger}
}

func (r *Recorder) Emit(ctx context.Context, eventType, subject string, payload map[string]any) {
	if r == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		r.logger.Warn("failed to marshal event payload", zap.String("event", eventType), zap.Error(err))
		data = nil
	}

	ev := Event{
		Type:      eventType,
		Subject:   subject,
		Payload:   data,
		CreatedAt: time.Now(),
	}

	if err := r.sink.Record(ctx, ev); err != nil {
		r.logger.Error("failed to record event",
			zap.String("event", eventType),
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}

// LogSink writes events to the structured log only.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Record(_ context.Context, ev Event) error {
	s.logger.Info("audit event",
		zap.String("event", ev.Type),
		zap.String("subject", ev.Subject),
		zap.ByteString("payload", ev.Payload),
	)
	return nil
}

// MemorySink keeps events in memory, mostly for tests and local runs.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Record(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev.ID = int64(len(s.events) + 1)
	s.events = append(s.events, ev)
	return nil
}

func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *MemorySink) Recent(_ context.Context, subject string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Event
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		if s.events[i].Subject == subject {
			out = append(out, s.events[i])
		}
	}
	return out, nil
}

// Types returns the event types in the order they were recorded.
func (s *MemorySink) Types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Type)
	}
	return out
}
