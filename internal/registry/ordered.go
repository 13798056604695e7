package registry

import (
	"errors"
	"sync"
)

var ErrDuplicateKey = errors.New("key already registered")

// Ordered is a unique index that remembers insertion order.
// It is safe for concurrent use.
type Ordered[V any] struct {
	mu    sync.RWMutex
	items map[string]V
	order []string
}

func NewOrdered[V any]() *Ordered[V] {
	return &Ordered[V]{
		items: make(map[string]V),
	}
}

// Put stores v under key. It returns ErrDuplicateKey if the key is taken.
func (o *Ordered[V]) Put(key string, v V) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.items[key]; ok {
		return ErrDuplicateKey
	}
	o.items[key] = v
	o.order = append(o.order, key)
	return nil
}

func (o *Ordered[V]) Get(key string) (V, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	v, ok := o.items[key]
	return v, ok
}

// Values returns a snapshot of all values in insertion order.
func (o *Ordered[V]) Values() []V {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make([]V, 0, len(o.order))
	for _, key := range o.order {
		out = append(out, o.items[key])
	}
	return out
}

func (o *Ordered[V]) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.order)
}
