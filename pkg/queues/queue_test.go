package queues

import "testing"

func TestQueueFIFO(t *testing.T) {
	q := NewQueue[int]()
	if !q.IsEmpty() || q.Len() != 0 {
		t.Fatalf("fresh queue not empty")
	}

	for _, v := range []int{1, 2, 3} {
		q.Push(v)
	}
	if q.Len() != 3 {
		t.Errorf("Len = %d, want 3", q.Len())
	}
	if q.Peek() != 1 {
		t.Errorf("Peek = %d, want 1", q.Peek())
	}

	for _, want := range []int{1, 2, 3} {
		if got := q.Pop(); got != want {
			t.Errorf("Pop = %d, want %d", got, want)
		}
	}
	if !q.IsEmpty() {
		t.Errorf("queue not empty after draining")
	}
}

func TestQueuePeekDoesNotConsume(t *testing.T) {
	q := NewQueue[string]()
	q.Push("a")
	q.Peek()
	q.Peek()
	if q.Len() != 1 {
		t.Errorf("Peek consumed the head")
	}
}
