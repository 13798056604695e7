package fleet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hackgods/ward-scheduling/internal/audit"
	"github.com/hackgods/ward-scheduling/internal/people"
	"github.com/hackgods/ward-scheduling/internal/registry"
)

const (
	EventAmbulanceRegistered = "AMBULANCE_REGISTERED"
	EventParamedicBoarded    = "PARAMEDIC_BOARDED"
)

var (
	ErrDuplicatePlate   = errors.New("ambulance already registered")
	ErrUnknownAmbulance = errors.New("ambulance not registered")
	ErrInvalidSiren     = errors.New("unknown siren tone")
	ErrInvalidAmbulance = errors.New("invalid ambulance")
	ErrNotParamedic     = errors.New("only paramedics can crew an ambulance")
)

type Siren string

const (
	SirenBitonal    Siren = "bitonal"
	SirenSequential Siren = "sequential"
)

func (s Siren) IsValid() bool {
	return s == SirenBitonal || s == SirenSequential
}

type Severity string

const (
	SeverityUrgent  Severity = "urgent"
	SeveritySerious Severity = "serious"
	SeverityMild    Severity = "mild"
)

// MaxSpeed is the top speed in km/h allowed while carrying a patient of the
// given severity. Unknown severities get 0.
func MaxSpeed(s Severity) int {
	switch Severity(strings.ToLower(string(s))) {
	case SeverityUrgent:
		return 200
	case SeveritySerious:
		return 150
	case SeverityMild:
		return 90
	}
	return 0
}

type Ambulance struct {
	Plate string
	Zone  string
	Model string
	Siren Siren

	mu   sync.Mutex
	crew []*people.Staff
}

func NewAmbulance(plate, zone, model string, siren Siren) (*Ambulance, error) {
	if strings.TrimSpace(plate) == "" {
		return nil, fmt.Errorf("%w: plate is required", ErrInvalidAmbulance)
	}
	if !siren.IsValid() {
		return nil, fmt.Errorf("%w: %q (use bitonal or sequential)", ErrInvalidSiren, siren)
	}
	return &Ambulance{
		Plate: plate,
		Zone:  zone,
		Model: model,
		Siren: siren,
	}, nil
}

// Board adds a paramedic to the crew. It returns false if the paramedic is
// already on board.
func (a *Ambulance) Board(p *people.Staff) (bool, error) {
	if p == nil || p.Role != people.RoleParamedic {
		return false, ErrNotParamedic
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, existing := range a.crew {
		if existing.Is(p) {
			return false, nil
		}
	}
	a.crew = append(a.crew, p)
	return true, nil
}

func (a *Ambulance) Crew() []*people.Staff {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]*people.Staff, len(a.crew))
	copy(out, a.crew)
	return out
}

// Fleet is the ambulance registry, unique by plate.
type Fleet struct {
	ambulances *registry.Ordered[*Ambulance]
	logger     *zap.Logger
	events     *audit.Recorder
}

func NewFleet(logger *zap.Logger, events *audit.Recorder) *Fleet {
	return &Fleet{
		ambulances: registry.NewOrdered[*Ambulance](),
		logger:     logger,
		events:     events,
	}
}

func (f *Fleet) Register(ctx context.Context, a *Ambulance) error {
	if err := f.ambulances.Put(a.Plate, a); err != nil {
		if errors.Is(err, registry.ErrDuplicateKey) {
			return fmt.Errorf("%w: %s", ErrDuplicatePlate, a.Plate)
		}
		return err
	}

	f.logger.Info("ambulance registered", zap.String("plate", a.Plate), zap.String("zone", a.Zone))
	f.events.Emit(ctx, EventAmbulanceRegistered, a.Plate, map[string]any{
		"zone":  a.Zone,
		"model": a.Model,
		"siren": a.Siren,
	})
	return nil
}

func (f *Fleet) Find(plate string) (*Ambulance, bool) {
	return f.ambulances.Get(plate)
}

// Board puts a paramedic on the ambulance with the given plate.
func (f *Fleet) Board(ctx context.Context, plate string, p *people.Staff) (bool, error) {
	a, ok := f.ambulances.Get(plate)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownAmbulance, plate)
	}

	added, err := a.Board(p)
	if err != nil || !added {
		return added, err
	}

	f.events.Emit(ctx, EventParamedicBoarded, plate, map[string]any{
		"paramedic": p.ID,
	})
	return true, nil
}

func (f *Fleet) All() []*Ambulance {
	return f.ambulances.Values()
}

func (f *Fleet) Count() int {
	return f.ambulances.Len()
}
