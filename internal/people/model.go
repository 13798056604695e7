package people

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	ErrInvalidRole    = errors.New("invalid staff role")
	ErrInvalidStaff   = errors.New("invalid staff member")
	ErrDuplicateStaff = errors.New("staff member already registered")
	ErrStaffNotFound  = errors.New("staff member not found")
)

type Role string

const (
	RoleNurse     Role = "nurse"
	RoleDoctor    Role = "doctor"
	RoleAide      Role = "aide"
	RoleParamedic Role = "paramedic"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleNurse, RoleDoctor, RoleAide, RoleParamedic:
		return true
	}
	return false
}

// Patient is referenced by identity only. Two patients are the same
// patient when their IDs match.
type Patient struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Staff is any hospital worker. Role decides what the worker may do.
// Nurses and doctors keep a roster of the patients they look after; doctors
// also carry an availability flag used when patients are handed out.
type Staff struct {
	ID        string
	FirstName string
	LastName  string
	Role      Role

	mu          sync.Mutex
	roster      []Patient
	unavailable bool
}

func NewStaff(id, firstName, lastName string, role Role) (*Staff, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidStaff)
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	return &Staff{
		ID:        id,
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
	}, nil
}

func (s *Staff) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// Is reports whether other is the same staff member.
func (s *Staff) Is(other *Staff) bool {
	if s == nil || other == nil {
		return false
	}
	return s.ID == other.ID
}

// LinkPatient adds p to the roster unless it is already there.
// It returns true when the roster changed.
func (s *Staff) LinkPatient(p Patient) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.roster {
		if existing.ID == p.ID {
			return false
		}
	}
	s.roster = append(s.roster, p)
	return true
}

// Available reports whether the worker can take new patients. Staff are
// available until marked otherwise.
func (s *Staff) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.unavailable
}

// SetAvailable updates the flag and returns the previous value.
func (s *Staff) SetAvailable(available bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	was := !s.unavailable
	s.unavailable = !available
	return was
}

func (s *Staff) Roster() []Patient {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Patient, len(s.roster))
	copy(out, s.roster)
	return out
}
