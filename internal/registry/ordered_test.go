package registry

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestOrdered_PutRejectsDuplicate(t *testing.T) {
	o := NewOrdered[int]()
	if err := o.Put("a", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := o.Put("a", 2); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	v, ok := o.Get("a")
	if !ok || v != 1 {
		t.Errorf("expected original value 1 to survive, got %d (found=%v)", v, ok)
	}
}

func TestOrdered_ValuesKeepInsertionOrder(t *testing.T) {
	o := NewOrdered[string]()
	for _, k := range []string{"303", "101", "202"} {
		if err := o.Put(k, "room "+k); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}

	got := o.Values()
	want := []string{"room 303", "room 101", "room 202"}
	if len(got) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestOrdered_GetMissing(t *testing.T) {
	o := NewOrdered[int]()
	if _, ok := o.Get("nope"); ok {
		t.Error("expected missing key to report not found")
	}
}

func TestOrdered_ConcurrentPutSameKey(t *testing.T) {
	o := NewOrdered[int]()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := o.Put("shared", i); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
			_ = o.Put(fmt.Sprintf("k-%d", i), i)
		}(i)
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("expected exactly one winner for shared key, got %d", wins)
	}
	if o.Len() != 51 {
		t.Errorf("expected 51 keys, got %d", o.Len())
	}
}
