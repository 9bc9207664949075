package engine

// IndexMap is the Index Remapper for one domain: a bijection between
// domain IDs and the dense [0,N) integer indices the solver operates on,
// built fresh for one run and discarded at run end. It holds one slice
// (index to id) and one hashtable (id to index), with no lifetime coupling
// to domain objects.
type IndexMap struct {
	idxToID []uint
	idToIdx map[uint]int
}

// NewIndexMap builds a bijection over ids in the given order: ids[i] gets
// index i.
func NewIndexMap(ids []uint) *IndexMap {
	m := &IndexMap{
		idxToID: append([]uint(nil), ids...),
		idToIdx: make(map[uint]int, len(ids)),
	}
	for i, id := range ids {
		m.idToIdx[id] = i
	}
	return m
}

// Len is the number of entries in the map.
func (m *IndexMap) Len() int { return len(m.idxToID) }

// IDOf returns the domain ID for a dense index.
func (m *IndexMap) IDOf(idx int) uint { return m.idxToID[idx] }

// IndexOf returns the dense index for a domain ID, and whether it exists.
func (m *IndexMap) IndexOf(id uint) (int, bool) {
	idx, ok := m.idToIdx[id]
	return idx, ok
}
