package feed

import (
	"container/heap"
	"time"

	"github.com/openquant/barsim/internal/model"
)

// Tick is one synchronized timestep across every symbol in the feed: the
// bars (if any) that became available at exactly this timestamp. Symbols
// with no bar at this tick are simply absent from the map — gaps are
// preserved, never synthesized.
type Tick struct {
	Ts   time.Time
	Bars map[string]model.Bar
}

type heapItem struct {
	bar model.Bar
	src Source
}

type barHeap []heapItem

func (h barHeap) Len() int { return len(h) }
func (h barHeap) Less(i, j int) bool {
	if h[i].bar.Ts.Equal(h[j].bar.Ts) {
		return h[i].bar.Symbol < h[j].bar.Symbol
	}
	return h[i].bar.Ts.Before(h[j].bar.Ts)
}
func (h barHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *barHeap) Push(x any)        { *h = append(*h, x.(heapItem)) }
func (h *barHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Feed k-way merges a fixed set of per-symbol Sources into a single ordered
// stream of Ticks keyed by timestamp, the same shape as a k-way merge of
// sorted runs: pull the minimum head across all sources, group every source
// sharing that exact timestamp into one Tick, advance only those sources.
type Feed struct {
	h *barHeap
}

// NewFeed primes the merge by reading one bar from every source.
func NewFeed(sources []Source) (*Feed, error) {
	h := &barHeap{}
	heap.Init(h)
	for _, s := range sources {
		bar, ok, err := s.Next()
		if err != nil {
			return nil, err
		}
		if ok {
			heap.Push(h, heapItem{bar: bar, src: s})
		}
	}
	return &Feed{h: h}, nil
}

// Next returns the next Tick in timestamp order, or ok=false once every
// source is exhausted.
func (f *Feed) Next() (Tick, bool, error) {
	if f.h.Len() == 0 {
		return Tick{}, false, nil
	}
	ts := (*f.h)[0].bar.Ts
	tick := Tick{Bars: map[string]model.Bar{}}
	tick.Ts = ts
	for f.h.Len() > 0 && (*f.h)[0].bar.Ts.Equal(ts) {
		item := heap.Pop(f.h).(heapItem)
		tick.Bars[item.bar.Symbol] = item.bar
		next, ok, err := item.src.Next()
		if err != nil {
			return Tick{}, false, err
		}
		if ok {
			heap.Push(f.h, heapItem{bar: next, src: item.src})
		}
	}
	return tick, true, nil
}
