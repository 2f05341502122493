package depot

type factory struct{}

// Factory builds the storage, queries and cursors.
var Factory factory

func (f factory) NewStorage(opts ...Option) *Storage {
	return newStorage(opts...)
}

func (f factory) NewQuery() Query {
	return newQuery()
}

// NewCursor returns a cursor over the entities of sto matched by query. The
// storage stays locked from the cursor's first step until it is exhausted or
// Reset.
func (f factory) NewCursor(query QueryNode, sto *Storage) *Cursor {
	return newCursor(query, sto)
}

func FactoryNewCache[K comparable, T any](cap int) Cache[K, T] {
	return &SimpleCache[K, T]{
		itemIndices: make(map[K]int),
		maxCapacity: cap,
	}
}
