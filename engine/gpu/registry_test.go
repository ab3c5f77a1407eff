package gpu

import (
	"sync"
	"testing"
)

type widget struct {
	name string
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry[widget]()

	h := r.Register(&widget{name: "a"})
	if !h.IsValid() {
		t.Fatalf("Register returned invalid handle %d", h)
	}
	if got := r.Get(h); got.name != "a" {
		t.Fatalf("Get returned %q, want %q", got.name, "a")
	}
	if !r.Contains(h) {
		t.Fatalf("Contains(%d) = false, want true", h)
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
}

func TestRegistryHandlesAreNeverReused(t *testing.T) {
	r := NewRegistry[widget]()

	first := r.Register(&widget{name: "first"})
	r.Take(first)

	second := r.Register(&widget{name: "second"})
	if second == first {
		t.Fatalf("handle %d was reused after Take", first)
	}
	if r.Contains(first) {
		t.Fatalf("taken handle %d still live", first)
	}
}

func TestRegistryTakeTransfersOwnership(t *testing.T) {
	r := NewRegistry[widget]()

	h := r.Register(&widget{name: "owned"})
	w := r.Take(h)
	if w.name != "owned" {
		t.Fatalf("Take returned %q, want %q", w.name, "owned")
	}
	if r.Len() != 0 {
		t.Fatalf("Len = %d after Take, want 0", r.Len())
	}
}

func TestRegistryGetDeadHandlePanics(t *testing.T) {
	r := NewRegistry[widget]()
	h := r.Register(&widget{})
	r.Take(h)

	defer func() {
		if recover() == nil {
			t.Fatalf("Get on dead handle did not panic")
		}
	}()
	r.Get(h)
}

func TestRegistryTakeDeadHandlePanics(t *testing.T) {
	r := NewRegistry[widget]()
	h := r.Register(&widget{})
	r.Take(h)

	defer func() {
		if recover() == nil {
			t.Fatalf("Take on dead handle did not panic")
		}
	}()
	r.Take(h)
}

func TestRegistryZeroHandlePanics(t *testing.T) {
	r := NewRegistry[widget]()

	defer func() {
		if recover() == nil {
			t.Fatalf("Get on zero handle did not panic")
		}
	}()
	r.Get(HandleNone)
}

func TestRegistryWriteMutatesInPlace(t *testing.T) {
	r := NewRegistry[widget]()
	h := r.Register(&widget{name: "before"})

	err := r.Write(h, func(w *widget) error {
		w.name = "after"
		return nil
	})
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if got := r.Get(h).name; got != "after" {
		t.Fatalf("value after Write = %q, want %q", got, "after")
	}
}

func TestRegistryHandlesSnapshotIsSorted(t *testing.T) {
	r := NewRegistry[widget]()
	for i := 0; i < 5; i++ {
		r.Register(&widget{})
	}

	handles := r.Handles()
	if len(handles) != 5 {
		t.Fatalf("Handles returned %d entries, want 5", len(handles))
	}
	for i := 1; i < len(handles); i++ {
		if handles[i] <= handles[i-1] {
			t.Fatalf("handles not sorted: %v", handles)
		}
	}
}

func TestRegistryReadHoldsSharedLock(t *testing.T) {
	r := NewRegistry[widget]()
	h := r.Register(&widget{name: "shared"})

	var got string
	r.Read(h, func(w *widget) {
		got = w.name
	})
	if got != "shared" {
		t.Fatalf("Read saw %q, want %q", got, "shared")
	}
}

func TestRegistryReadDeadHandlePanics(t *testing.T) {
	r := NewRegistry[widget]()
	h := r.Register(&widget{})
	r.Take(h)

	defer func() {
		if recover() == nil {
			t.Fatalf("Read on dead handle did not panic")
		}
	}()
	r.Read(h, func(*widget) {})
}

type counter struct {
	n int
}

func TestRegistryWriteIsExclusive(t *testing.T) {
	r := NewRegistry[counter]()
	h := r.Register(&counter{})

	const goroutines = 8
	const increments = 200

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < increments; i++ {
				r.Write(h, func(c *counter) error {
					c.n++
					return nil
				})
			}
		}()
	}
	wg.Wait()

	if got := r.Get(h).n; got != goroutines*increments {
		t.Fatalf("counter = %d, want %d", got, goroutines*increments)
	}
}

func TestRegistryConcurrentRegister(t *testing.T) {
	r := NewRegistry[widget]()

	const goroutines = 16
	const perGoroutine = 100

	var wg sync.WaitGroup
	seen := make([][]Handle[widget], goroutines)
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				seen[g] = append(seen[g], r.Register(&widget{}))
			}
		}(g)
	}
	wg.Wait()

	unique := make(map[Handle[widget]]bool)
	for _, handles := range seen {
		for _, h := range handles {
			if unique[h] {
				t.Fatalf("handle %d issued twice", h)
			}
			unique[h] = true
		}
	}
	if r.Len() != goroutines*perGoroutine {
		t.Fatalf("Len = %d, want %d", r.Len(), goroutines*perGoroutine)
	}
}
