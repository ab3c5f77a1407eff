package containers

import (
	"errors"
	"testing"
)

func TestRingQueueEnqueueDequeue(t *testing.T) {
	q := NewRingQueue[int](3)

	for i := 1; i <= 3; i++ {
		if err := q.Enqueue(i); err != nil {
			t.Fatalf("Enqueue(%d) failed: %v", i, err)
		}
	}
	if !q.IsFull() {
		t.Fatalf("queue not full after %d enqueues", q.Len())
	}
	if err := q.Enqueue(4); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Enqueue on full queue returned %v, want ErrQueueFull", err)
	}

	for i := 1; i <= 3; i++ {
		v, err := q.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue failed: %v", err)
		}
		if v != i {
			t.Fatalf("Dequeue = %d, want %d", v, i)
		}
	}
	if _, err := q.Dequeue(); !errors.Is(err, ErrQueueEmpty) {
		t.Fatalf("Dequeue on empty queue did not return ErrQueueEmpty")
	}
}

func TestRingQueueWrapsAround(t *testing.T) {
	q := NewRingQueue[string](2)

	q.Enqueue("a")
	q.Enqueue("b")
	q.Dequeue()
	if err := q.Enqueue("c"); err != nil {
		t.Fatalf("Enqueue after wrap failed: %v", err)
	}

	v, _ := q.Dequeue()
	if v != "b" {
		t.Fatalf("Dequeue = %q, want %q", v, "b")
	}
	v, _ = q.Dequeue()
	if v != "c" {
		t.Fatalf("Dequeue = %q, want %q", v, "c")
	}
}

func TestRingQueuePeek(t *testing.T) {
	q := NewRingQueue[int](2)

	if _, err := q.Peek(); !errors.Is(err, ErrQueueEmpty) {
		t.Fatalf("Peek on empty queue did not return ErrQueueEmpty")
	}

	q.Enqueue(42)
	v, err := q.Peek()
	if err != nil {
		t.Fatalf("Peek failed: %v", err)
	}
	if v != 42 {
		t.Fatalf("Peek = %d, want 42", v)
	}
	if q.Len() != 1 {
		t.Fatalf("Peek consumed the element")
	}
}

func TestRingQueueZeroesDequeuedSlots(t *testing.T) {
	q := NewRingQueue[*int](1)

	x := 7
	q.Enqueue(&x)
	q.Dequeue()

	if q.data[0] != nil {
		t.Fatalf("dequeued slot still holds a reference")
	}
}
