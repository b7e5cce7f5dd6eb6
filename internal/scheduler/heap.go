// Package scheduler drains probe work through a fixed worker pool ordered by
// a priority min-heap.
package scheduler

import (
	"context"

	"github.com/aleister1102/paramseeker/internal/models"
)

// ProbeFunc is one surface's probe bound to the scheduler: inject the names
// into the request, send, and grade the response.
type ProbeFunc func(ctx context.Context, info *models.RequestInfo, names []string) models.Verdict

// Item is one unit of probe work on the heap.
type Item struct {
	priority int
	seq      uint64

	surface models.Surface
	fn      ProbeFunc
	info    *models.RequestInfo
	names   []string

	// retried marks a chunk that already consumed its transport re-queue.
	// A second exhaustion discards it instead of spinning forever.
	retried bool
}

// itemHeap orders items by priority, breaking ties by insertion order.
type itemHeap []*Item

func (h itemHeap) Len() int { return len(h) }

func (h itemHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h itemHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *itemHeap) Push(x interface{}) {
	*h = append(*h, x.(*Item))
}

func (h *itemHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
