package search

import "container/heap"

type item struct {
	node  *node
	cost  float64
	seq   int
	index int
}

// frontier is a min-priority queue of nodes by path cost. Ties go to the
// node pushed first so results are deterministic.
type frontier struct {
	items []*item
	seq   int
}

func (f *frontier) Len() int { return len(f.items) }

func (f *frontier) Less(i, j int) bool {
	if f.items[i].cost != f.items[j].cost {
		return f.items[i].cost < f.items[j].cost
	}
	return f.items[i].seq < f.items[j].seq
}

func (f *frontier) Swap(i, j int) {
	f.items[i], f.items[j] = f.items[j], f.items[i]
	f.items[i].index = i
	f.items[j].index = j
}

func (f *frontier) Push(x any) {
	it := x.(*item)
	it.index = len(f.items)
	f.items = append(f.items, it)
}

func (f *frontier) Pop() any {
	old := f.items
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	f.items = old[:n-1]
	return it
}

func (f *frontier) push(n *node, cost float64) {
	f.seq++
	heap.Push(f, &item{node: n, cost: cost, seq: f.seq})
}

func (f *frontier) pop() (*node, float64) {
	it := heap.Pop(f).(*item)
	return it.node, it.cost
}
