package people

import (
	"errors"
	"fmt"

	"github.com/hackgods/ward-scheduling/internal/registry"
)

// Directory resolves staff members by ID.
type Directory struct {
	staff *registry.Ordered[*Staff]
}

func NewDirectory() *Directory {
	return &Directory{staff: registry.NewOrdered[*Staff]()}
}

func (d *Directory) Add(s *Staff) error {
	if err := d.staff.Put(s.ID, s); err != nil {
		if errors.Is(err, registry.ErrDuplicateKey) {
			return fmt.Errorf("%w: %s", ErrDuplicateStaff, s.ID)
		}
		return err
	}
	return nil
}

func (d *Directory) Get(id string) (*Staff, error) {
	s, ok := d.staff.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStaffNotFound, id)
	}
	return s, nil
}

func (d *Directory) All() []*Staff {
	return d.staff.Values()
}
