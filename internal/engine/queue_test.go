package engine

import (
	"container/heap"
	"testing"
	"time"
)

func TestQueueOrdersByFireTime(t *testing.T) {
	base := time.Date(2025, time.June, 11, 2, 0, 0, 0, time.UTC)

	q := triggerQueue{}
	heap.Init(&q)
	heap.Push(&q, &Trigger{ScheduleID: "c", NextFire: base.Add(2 * time.Hour)})
	heap.Push(&q, &Trigger{ScheduleID: "a", NextFire: base})
	heap.Push(&q, &Trigger{ScheduleID: "b", NextFire: base.Add(time.Hour)})

	var got []string
	for q.Len() > 0 {
		got = append(got, heap.Pop(&q).(*Trigger).ScheduleID)
	}
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pop order = %v, want %v", got, want)
		}
	}
}

func TestQueueTieBreaksOnScheduleID(t *testing.T) {
	base := time.Date(2025, time.June, 11, 2, 0, 0, 0, time.UTC)

	q := triggerQueue{}
	heap.Init(&q)
	heap.Push(&q, &Trigger{ScheduleID: "zz", NextFire: base})
	heap.Push(&q, &Trigger{ScheduleID: "aa", NextFire: base})

	if head := q.peek(); head.ScheduleID != "aa" {
		t.Errorf("peek = %q, want aa", head.ScheduleID)
	}
}

func TestQueuePeekEmpty(t *testing.T) {
	q := triggerQueue{}
	if q.peek() != nil {
		t.Error("peek on empty queue should be nil")
	}
}
