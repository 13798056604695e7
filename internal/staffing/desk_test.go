package staffing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/hackgods/ward-scheduling/internal/audit"
	"github.com/hackgods/ward-scheduling/internal/people"
)

type fixture struct {
	dir  *people.Directory
	desk *Desk
	sink *audit.MemorySink
}

func newFixture(t *testing.T, staff ...*people.Staff) *fixture {
	t.Helper()

	dir := people.NewDirectory()
	for _, s := range staff {
		if err := dir.Add(s); err != nil {
			t.Fatalf("add %s: %v", s.ID, err)
		}
	}
	sink := audit.NewMemorySink()
	desk := NewDesk(dir, zap.NewNop(), audit.NewRecorder(sink, zap.NewNop()))
	desk.pick = func(int) int { return 0 }

	return &fixture{dir: dir, desk: desk, sink: sink}
}

func staff(t *testing.T, id, first string, role people.Role) *people.Staff {
	t.Helper()
	s, err := people.NewStaff(id, first, "Paz", role)
	if err != nil {
		t.Fatalf("new staff: %v", err)
	}
	return s
}

func ids(list []*people.Staff) string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, s.ID)
	}
	return strings.Join(out, ",")
}

func TestDesk_SetAvailability(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t,
		staff(t, "MED1", "Juan", people.RoleDoctor),
		staff(t, "ENF1", "Ana", people.RoleNurse),
	)

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{"doctor", "MED1", nil},
		{"nurse", "ENF1", ErrNotDoctor},
		{"unknown", "MED9", people.ErrStaffNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.desk.SetAvailability(ctx, tt.id, false)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	// a repeat with the same value records nothing
	_, _ = f.desk.SetAvailability(ctx, "MED1", false)
	if n := len(f.sink.Events()); n != 1 {
		t.Errorf("expected one availability event, got %d", n)
	}
}

func TestDesk_AvailableDoctors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t,
		staff(t, "MED1", "Juan", people.RoleDoctor),
		staff(t, "ENF1", "Ana", people.RoleNurse),
		staff(t, "MED2", "Rosa", people.RoleDoctor),
		staff(t, "MED3", "Iker", people.RoleDoctor),
	)

	tests := []struct {
		name        string
		unavailable []string
		want        string
	}{
		{"all available", nil, "MED1,MED2,MED3"},
		{"one off duty", []string{"MED2"}, "MED1,MED3"},
		{"none", []string{"MED1", "MED3"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, s := range f.dir.All() {
				if s.Role == people.RoleDoctor {
					_, _ = f.desk.SetAvailability(ctx, s.ID, true)
				}
			}
			for _, id := range tt.unavailable {
				_, _ = f.desk.SetAvailability(ctx, id, false)
			}
			if got := ids(f.desk.AvailableDoctors()); got != tt.want {
				t.Errorf("expected [%s], got [%s]", tt.want, got)
			}
		})
	}
}

func TestDesk_Assign(t *testing.T) {
	ctx := context.Background()
	med1 := staff(t, "MED1", "Juan", people.RoleDoctor)
	med2 := staff(t, "MED2", "Rosa", people.RoleDoctor)
	f := newFixture(t, med1, med2)
	luis := people.Patient{ID: "P1", Name: "Luis"}

	_, _ = f.desk.SetAvailability(ctx, "MED1", false)

	doctor, err := f.desk.Assign(ctx, luis)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if doctor.ID != "MED2" {
		t.Errorf("expected the only available doctor MED2, got %s", doctor.ID)
	}
	if roster := med2.Roster(); len(roster) != 1 || roster[0].ID != "P1" {
		t.Errorf("expected P1 on MED2's roster, got %v", roster)
	}

	// a second request keeps the first doctor even if another is free now
	_, _ = f.desk.SetAvailability(ctx, "MED1", true)
	again, err := f.desk.Assign(ctx, luis)
	if err != nil || again.ID != "MED2" {
		t.Errorf("expected MED2 again, got %v (%v)", again, err)
	}
	if len(med2.Roster()) != 1 || len(med1.Roster()) != 0 {
		t.Error("expected rosters to be unchanged by a repeat assignment")
	}

	got, err := f.desk.AssignmentOf("P1")
	if err != nil || got.Doctor.ID != "MED2" || got.Patient.Name != "Luis" {
		t.Errorf("expected P1 assigned to MED2, got %+v (%v)", got, err)
	}
	if _, err := f.desk.AssignmentOf("P9"); !errors.Is(err, ErrAssignmentNotFound) {
		t.Errorf("expected ErrAssignmentNotFound, got %v", err)
	}

	if _, err := f.desk.Assign(ctx, people.Patient{Name: "Nobody"}); !errors.Is(err, ErrInvalidPatient) {
		t.Errorf("expected ErrInvalidPatient, got %v", err)
	}
}

func TestDesk_AssignWithoutDoctors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		staff []*people.Staff
		off   []string
	}{
		{"empty directory", nil, nil},
		{"only nurses", []*people.Staff{staff(t, "ENF1", "Ana", people.RoleNurse)}, nil},
		{"all off duty", []*people.Staff{staff(t, "MED1", "Juan", people.RoleDoctor)}, []string{"MED1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.staff...)
			for _, id := range tt.off {
				_, _ = f.desk.SetAvailability(ctx, id, false)
			}

			_, err := f.desk.Assign(ctx, people.Patient{ID: "P1", Name: "Luis"})
			if !errors.Is(err, ErrNoDoctorAvailable) {
				t.Fatalf("expected ErrNoDoctorAvailable, got %v", err)
			}
			if len(f.desk.Assignments()) != 0 {
				t.Error("expected no assignment to be stored")
			}
		})
	}
}

func TestDesk_AssignmentsAndDescribe(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t,
		staff(t, "MED1", "Juan", people.RoleDoctor),
		staff(t, "MED2", "Rosa", people.RoleDoctor),
	)

	if got := f.desk.Describe(); got != "no assignments" {
		t.Errorf("unexpected empty description %q", got)
	}

	next := 0
	f.desk.pick = func(n int) int {
		i := next % n
		next++
		return i
	}

	_, _ = f.desk.Assign(ctx, people.Patient{ID: "P1", Name: "Luis"})
	_, _ = f.desk.Assign(ctx, people.Patient{ID: "P2", Name: "Marta"})

	list := f.desk.Assignments()
	if len(list) != 2 || list[0].Doctor.ID != "MED1" || list[1].Doctor.ID != "MED2" {
		t.Fatalf("unexpected assignments %+v", list)
	}

	lines := strings.Split(f.desk.Describe(), "\n")
	if len(lines) != 3 || lines[1] != "Luis (P1) -> Juan Paz (MED1)" {
		t.Errorf("unexpected description %q", lines)
	}

	types := f.sink.Types()
	if len(types) != 2 || types[0] != EventDoctorAssigned {
		t.Errorf("expected two assignment events, got %v", types)
	}
}

func TestDesk_ConcurrentAssignSamePatient(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t,
		staff(t, "MED1", "Juan", people.RoleDoctor),
		staff(t, "MED2", "Rosa", people.RoleDoctor),
	)
	f.desk.pick = func(n int) int { return n - 1 }

	var wg sync.WaitGroup
	results := make([]string, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := f.desk.Assign(ctx, people.Patient{ID: "P1", Name: "Luis"})
			if err != nil {
				t.Errorf("assign #%d: %v", i, err)
				return
			}
			results[i] = d.ID
		}(i)
	}
	wg.Wait()

	for i, id := range results {
		if id != results[0] {
			t.Fatalf("assign #%d got %s, expected every call to agree on %s", i, id, results[0])
		}
	}
	if n := len(f.desk.Assignments()); n != 1 {
		t.Errorf("expected a single assignment, got %d", n)
	}
	if n := len(f.sink.Events()); n != 1 {
		t.Errorf("expected a single event, got %d: %s", n, fmt.Sprint(f.sink.Types()))
	}
}
