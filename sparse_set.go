package depot

// SparseIndex is implemented by keys that can address a slot in a sparse array.
type SparseIndex interface {
	comparable
	Index() int
}

// SparseSet maps sparse keys to packed dense positions.
//
// Slots in the sparse array hold the dense position plus one, so a freshly grown
// (zeroed) region reads as absent. The sparse array only ever grows.
//
// The set has no removal method. Containers that need removal swap-remove on
// the dense array themselves and repoint the moved key's sparse slot.
type SparseSet[K SparseIndex] struct {
	sparse []int
	dense  []K
}

// Contains reports whether k was inserted. Keys beyond the sparse array are absent.
func (s *SparseSet[K]) Contains(k K) bool {
	i := k.Index()
	return i >= 0 && i < len(s.sparse) && s.sparse[i] != 0
}

// Insert adds k and returns true, or returns false without mutating if k is
// already present or has a negative index.
func (s *SparseSet[K]) Insert(k K) bool {
	i := k.Index()
	if i < 0 || s.Contains(k) {
		return false
	}
	if i >= len(s.sparse) {
		s.sparse = append(s.sparse, make([]int, i+1-len(s.sparse))...)
	}
	s.dense = append(s.dense, k)
	s.sparse[i] = len(s.dense)
	return true
}

// Index returns the dense position of k.
func (s *SparseSet[K]) Index(k K) (int, bool) {
	if !s.Contains(k) {
		return 0, false
	}
	return s.sparse[k.Index()] - 1, true
}

// Dense returns the packed keys in insertion (or compaction) order. The slice
// is owned by the set.
func (s *SparseSet[K]) Dense() []K {
	return s.dense
}

func (s *SparseSet[K]) Len() int {
	return len(s.dense)
}
