package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type failingSink struct{}

func (failingSink) Record(context.Context, Event) error {
	return errors.New("db down")
}

func TestRecorder_EmitWritesPayload(t *testing.T) {
	sink := NewMemorySink()
	rec := NewRecorder(sink, zap.NewNop())

	rec.Emit(context.Background(), "ROOM_REGISTERED", "101", map[string]any{"capacity": 2})

	events := sink.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Type != "ROOM_REGISTERED" || ev.Subject != "101" {
		t.Errorf("unexpected event %+v", ev)
	}
	if ev.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	var payload map[string]any
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if payload["capacity"] != float64(2) {
		t.Errorf("expected capacity 2 in payload, got %v", payload["capacity"])
	}
}

func TestRecorder_SinkFailureIsSwallowed(t *testing.T) {
	rec := NewRecorder(failingSink{}, zap.NewNop())
	// must not panic or block
	rec.Emit(context.Background(), "X", "y", nil)
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var rec *Recorder
	rec.Emit(context.Background(), "X", "y", nil)
}

func TestRecorder_DefaultsToLogSink(t *testing.T) {
	rec := NewRecorder(nil, zap.NewNop())
	if _, ok := rec.sink.(*LogSink); !ok {
		t.Errorf("expected LogSink fallback, got %T", rec.sink)
	}
}

func TestMemorySink_Types(t *testing.T) {
	sink := NewMemorySink()
	ctx := context.Background()
	_ = sink.Record(ctx, Event{Type: "A"})
	_ = sink.Record(ctx, Event{Type: "B"})

	types := sink.Types()
	if len(types) != 2 || types[0] != "A" || types[1] != "B" {
		t.Errorf("unexpected types %v", types)
	}
	if sink.Events()[1].ID != 2 {
		t.Errorf("expected sequential ids")
	}
}

func TestFanOut_RecordsInEverySink(t *testing.T) {
	a, b := NewMemorySink(), NewMemorySink()
	rec := NewRecorder(FanOut{a, failingSink{}, b}, zap.NewNop())

	rec.Emit(context.Background(), "PATIENT_ASSIGNED", "101", nil)

	if len(a.Events()) != 1 || len(b.Events()) != 1 {
		t.Errorf("expected both memory sinks to receive the event, got %d and %d", len(a.Events()), len(b.Events()))
	}

	err := FanOut{failingSink{}, a}.Record(context.Background(), Event{Type: "X"})
	if err == nil {
		t.Error("expected the failing sink's error to be returned")
	}
	if len(a.Events()) != 2 {
		t.Error("expected later sinks to run after a failure")
	}
}

func TestTopic(t *testing.T) {
	if got := Topic("PATIENT_ASSIGNED"); got != "ward.events.patient_assigned" {
		t.Errorf("unexpected topic %q", got)
	}
}

func TestMemorySink_RecentNewestFirst(t *testing.T) {
	sink := NewMemorySink()
	rec := NewRecorder(sink, zap.NewNop())
	ctx := context.Background()

	rec.Emit(ctx, "ROOM_REGISTERED", "101", nil)
	rec.Emit(ctx, "ROOM_REGISTERED", "102", nil)
	rec.Emit(ctx, "CAREGIVER_BOUND", "101", nil)
	rec.Emit(ctx, "ROOM_CLEANED", "101", nil)

	got, err := sink.Recent(ctx, "101", 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 || got[0].Type != "ROOM_CLEANED" || got[1].Type != "CAREGIVER_BOUND" {
		t.Errorf("unexpected events %+v", got)
	}

	all, _ := sink.Recent(ctx, "101", 0)
	if len(all) != 3 {
		t.Errorf("expected 3 events for room 101, got %d", len(all))
	}
}
