package search

import (
	"container/heap"

	"github.com/theoremus-urban-solutions/tripsearch/routing"
)

type queueItem struct {
	state    *routing.State
	estimate float64
	seq      uint64
}

type stateHeap []queueItem

func (h stateHeap) Len() int { return len(h) }

// Less breaks ties in insertion order so that runs are reproducible
func (h stateHeap) Less(i, j int) bool {
	if h[i].estimate != h[j].estimate {
		return h[i].estimate < h[j].estimate
	}
	return h[i].seq < h[j].seq
}

func (h stateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *stateHeap) Push(x any) { *h = append(*h, x.(queueItem)) }

func (h *stateHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = queueItem{}
	*h = old[:n-1]
	return item
}

// priorityQueue is a binary min-heap of states keyed by estimate
type priorityQueue struct {
	h   stateHeap
	seq uint64
}

func (q *priorityQueue) push(s *routing.State, estimate float64) {
	q.seq++
	heap.Push(&q.h, queueItem{state: s, estimate: estimate, seq: q.seq})
}

func (q *priorityQueue) pop() (*routing.State, float64) {
	item := heap.Pop(&q.h).(queueItem)
	return item.state, item.estimate
}

func (q *priorityQueue) empty() bool { return len(q.h) == 0 }

func (q *priorityQueue) size() int { return len(q.h) }
