package cpsat

import "sync"

// varPool reuses the []int slices the search allocates on every branch
// node (the set of still-unassigned variable indices), the same
// GC-pressure argument the teacher's SATPool makes for its clause and
// literal slices, trimmed down to the one shape branch-and-bound actually
// needs.
type varPool struct {
	intSlicePool *sync.Pool
}

var globalVarPool = newVarPool()

func newVarPool() *varPool {
	return &varPool{
		intSlicePool: &sync.Pool{
			New: func() interface{} {
				return make([]int, 0, 64)
			},
		},
	}
}

func (p *varPool) getIntSlice(size int) []int {
	s := p.intSlicePool.Get().([]int)
	if cap(s) < size {
		return make([]int, 0, size)
	}
	return s[:0]
}

func (p *varPool) putIntSlice(s []int) {
	if s != nil && cap(s) <= 4096 {
		p.intSlicePool.Put(s)
	}
}
