package appointment

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hackgods/ward-scheduling/internal/people"
)

var luis = people.Patient{ID: "P1", Name: "Luis"}

func mustNew(t *testing.T, p NewParams) *Appointment {
	t.Helper()
	if p.Kind == "" {
		p.Kind = KindInPerson
	}
	if p.Patient.ID == "" {
		p.Patient = luis
	}
	if p.Provider == "" {
		p.Provider = "Dr. Paz"
	}
	if p.Date == "" {
		p.Date = "2025-05-01"
	}
	if p.Time == "" {
		p.Time = "10:00"
	}
	if p.Kind == KindInPerson && p.Facility == "" {
		p.Facility = "Centro Norte"
	}
	a, err := New(p)
	if err != nil {
		t.Fatalf("new appointment: %v", err)
	}
	return a
}

func TestNew_Defaults(t *testing.T) {
	a := mustNew(t, NewParams{})

	if a.ID == "" {
		t.Error("expected a generated id")
	}
	if a.Status != StatusPending || a.Attended {
		t.Errorf("expected pending and not attended, got %s/%v", a.Status, a.Attended)
	}
	want := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	if !a.ScheduledAt.Equal(want) {
		t.Errorf("expected %s, got %s", want, a.ScheduledAt)
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		params NewParams
	}{
		{"bad date", NewParams{Kind: KindInPerson, Patient: luis, Provider: "Dr. Paz", Date: "01/05/2025", Time: "10:00", Facility: "X"}},
		{"bad time", NewParams{Kind: KindInPerson, Patient: luis, Provider: "Dr. Paz", Date: "2025-05-01", Time: "25:00", Facility: "X"}},
		{"unknown kind", NewParams{Kind: "video", Patient: luis, Provider: "Dr. Paz", Date: "2025-05-01", Time: "10:00"}},
		{"no patient", NewParams{Kind: KindInPerson, Provider: "Dr. Paz", Date: "2025-05-01", Time: "10:00", Facility: "X"}},
		{"no provider", NewParams{Kind: KindInPerson, Patient: luis, Provider: "  ", Date: "2025-05-01", Time: "10:00", Facility: "X"}},
		{"in person without facility", NewParams{Kind: KindInPerson, Patient: luis, Provider: "Dr. Paz", Date: "2025-05-01", Time: "10:00"}},
		{"telephonic without phone", NewParams{Kind: KindTelephonic, Patient: luis, Provider: "Dr. Paz", Date: "2025-05-01", Time: "10:00"}},
		{"emergency without priority", NewParams{Kind: KindEmergency, Patient: luis, Provider: "Dr. Paz", Date: "2025-05-01", Time: "10:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.params); !errors.Is(err, ErrInvalidAppointment) {
				t.Errorf("expected ErrInvalidAppointment, got %v", err)
			}
		})
	}
}

func TestCancel_IsIdempotent(t *testing.T) {
	a := mustNew(t, NewParams{ID: "C1"})

	for i := 0; i < 2; i++ {
		msg, err := a.Cancel()
		if err != nil {
			t.Fatalf("cancel #%d: %v", i+1, err)
		}
		if msg == "" {
			t.Error("expected a confirmation message")
		}
		if a.Status != StatusCancelled || a.Attended {
			t.Errorf("cancel #%d: expected cancelled/false, got %s/%v", i+1, a.Status, a.Attended)
		}
	}
}

func TestComplete(t *testing.T) {
	a := mustNew(t, NewParams{ID: "C1"})

	msg, err := a.Complete()
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if a.Status != StatusCompleted || !a.Attended {
		t.Errorf("expected completed/true, got %s/%v", a.Status, a.Attended)
	}
	if !strings.Contains(msg, "Luis") {
		t.Errorf("expected message to name the patient, got %q", msg)
	}

	if _, err := a.Complete(); err != nil {
		t.Errorf("expected repeated complete to be harmless, got %v", err)
	}
}

func TestTerminalStatesAreFinal(t *testing.T) {
	done := mustNew(t, NewParams{ID: "C1"})
	_, _ = done.Complete()
	if _, err := done.Cancel(); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Errorf("cancel after complete: expected ErrInvalidStatusTransition, got %v", err)
	}
	if done.Status != StatusCompleted || !done.Attended {
		t.Error("expected completed appointment to be untouched")
	}

	cancelled := mustNew(t, NewParams{ID: "C2"})
	_, _ = cancelled.Cancel()
	if _, err := cancelled.Complete(); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Errorf("complete after cancel: expected ErrInvalidStatusTransition, got %v", err)
	}
	if cancelled.Status != StatusCancelled || cancelled.Attended {
		t.Error("expected cancelled appointment to be untouched")
	}
}

func TestVariantMessages(t *testing.T) {
	inPerson := mustNew(t, NewParams{ID: "A1", Kind: KindInPerson, Facility: "Centro Norte"})
	phone := mustNew(t, NewParams{ID: "A2", Kind: KindTelephonic, ContactPhone: "600111222"})
	urgent := mustNew(t, NewParams{ID: "A3", Kind: KindEmergency, Priority: "high"})

	msg, _ := inPerson.Cancel()
	if !strings.Contains(msg, "Centro Norte") || !strings.Contains(msg, "2025-05-01") {
		t.Errorf("in-person cancel should mention facility and date, got %q", msg)
	}

	msg, _ = phone.Cancel()
	if strings.Contains(msg, "Centro") || !strings.Contains(msg, "A2") {
		t.Errorf("unexpected telephonic cancel message %q", msg)
	}

	msg, _ = urgent.Cancel()
	if !strings.Contains(msg, "Emergency") {
		t.Errorf("unexpected emergency cancel message %q", msg)
	}

	phone2 := mustNew(t, NewParams{ID: "A4", Kind: KindTelephonic, ContactPhone: "600111222"})
	msg, _ = phone2.Complete()
	if !strings.Contains(msg, "600111222") {
		t.Errorf("telephonic complete should mention the phone, got %q", msg)
	}

	urgent2 := mustNew(t, NewParams{ID: "A5", Kind: KindEmergency, Priority: "high"})
	msg, _ = urgent2.Complete()
	if !strings.Contains(msg, "priority high") {
		t.Errorf("emergency complete should mention priority, got %q", msg)
	}
}

func TestOverlaps(t *testing.T) {
	base := mustNew(t, NewParams{ID: "A", Time: "10:00"})

	tests := []struct {
		clock string
		want  bool
	}{
		{"10:00", true},
		{"10:20", true},
		{"10:29", true},
		{"10:30", false},
		{"10:35", false},
		{"09:40", true},
		{"09:30", false},
	}

	for _, tt := range tests {
		other := mustNew(t, NewParams{ID: "B", Time: tt.clock})
		if got := base.Overlaps(other); got != tt.want {
			t.Errorf("10:00 vs %s: got %v, want %v", tt.clock, got, tt.want)
		}
		if base.Overlaps(other) != other.Overlaps(base) {
			t.Errorf("10:00 vs %s: relation is not symmetric", tt.clock)
		}
	}
}

func TestOverlaps_NotTransitive(t *testing.T) {
	a := mustNew(t, NewParams{ID: "A", Time: "10:00"})
	b := mustNew(t, NewParams{ID: "B", Time: "10:20"})
	c := mustNew(t, NewParams{ID: "C", Time: "10:40"})

	if !a.Overlaps(b) || !b.Overlaps(c) {
		t.Fatal("expected neighbours to overlap")
	}
	if a.Overlaps(c) {
		t.Error("expected 10:00 and 10:40 not to overlap")
	}
}

func TestSerialize(t *testing.T) {
	a := mustNew(t, NewParams{ID: "A1", Kind: KindTelephonic, ContactPhone: "600111222", Reason: "follow-up"})
	_, _ = a.Complete()

	m := a.Serialize()
	want := map[string]any{
		"id":            "A1",
		"kind":          "telephonic",
		"patient_id":    "P1",
		"patient_name":  "Luis",
		"provider":      "Dr. Paz",
		"reason":        "follow-up",
		"scheduled_at":  "2025-05-01 10:00",
		"status":        "completed",
		"attended":      true,
		"contact_phone": "600111222",
	}
	for k, v := range want {
		if m[k] != v {
			t.Errorf("%s: expected %v, got %v", k, v, m[k])
		}
	}
	if _, ok := m["facility"]; ok {
		t.Error("telephonic appointments should not carry a facility")
	}
}

func TestListing(t *testing.T) {
	a := mustNew(t, NewParams{ID: "A1"})
	if got := a.Listing().Attended; got != "pending" {
		t.Errorf("expected pending, got %q", got)
	}
	_, _ = a.Complete()
	l := a.Listing()
	if l.Attended != "attended" || l.PatientName != "Luis" || l.Kind != KindInPerson {
		t.Errorf("unexpected listing %+v", l)
	}
}

func TestFindConflict(t *testing.T) {
	candidate := mustNew(t, NewParams{ID: "NEW", Provider: "Dr. Paz", Time: "10:00"})

	otherProvider := mustNew(t, NewParams{ID: "E1", Provider: "Dr. Sol", Time: "10:10"})
	cancelled := mustNew(t, NewParams{ID: "E2", Provider: "Dr. Paz", Time: "10:05"})
	_, _ = cancelled.Cancel()
	far := mustNew(t, NewParams{ID: "E3", Provider: "Dr. Paz", Time: "10:35"})
	clash := mustNew(t, NewParams{ID: "E4", Provider: "Dr. Paz", Time: "10:20"})
	completed := mustNew(t, NewParams{ID: "E5", Provider: "Dr. Paz", Time: "09:50"})
	_, _ = completed.Complete()

	if _, ok := FindConflict(candidate, []*Appointment{otherProvider, cancelled, far}); ok {
		t.Error("expected no conflict with other providers, cancelled or distant appointments")
	}

	got, ok := FindConflict(candidate, []*Appointment{otherProvider, far, clash})
	if !ok || got.ID != "E4" {
		t.Errorf("expected conflict with E4, got %v", got)
	}

	got, ok = FindConflict(candidate, []*Appointment{completed})
	if !ok || got.ID != "E5" {
		t.Error("expected completed appointments to still block the slot")
	}

	if _, ok := FindConflict(candidate, []*Appointment{candidate}); ok {
		t.Error("an appointment must not conflict with itself")
	}
}
