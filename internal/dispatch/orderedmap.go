package dispatch

// signalMode selects how repeated Set calls for the same id accumulate
// before being read: Single keeps only the latest value, Multi queues
// every value in arrival order.
type signalMode int

const (
	modeSingle signalMode = iota
	modeMulti
)

type signalEntry struct {
	mode  signalMode
	value []byte
	queue [][]byte
}

// orderedMap holds one signalEntry per id plus an arrival-order index
// so the dispatcher can hand out ids in the order they were first (or,
// for Multi ids, most recently) touched, regardless of how many times
// a given id was overwritten in between reads.
type orderedMap struct {
	values  map[uint64]*signalEntry
	indexes []uint64
}

func newOrderedMap() *orderedMap {
	return &orderedMap{values: make(map[uint64]*signalEntry)}
}

func (m *orderedMap) clear() {
	m.values = make(map[uint64]*signalEntry)
	m.indexes = m.indexes[:0]
}

// count returns the number of ids currently holding an undelivered
// value.
func (m *orderedMap) count() int {
	n := 0
	for _, e := range m.values {
		if e.mode == modeSingle || len(e.queue) > 0 {
			n++
		}
	}
	return n
}

func (m *orderedMap) insert(id uint64, value []byte) {
	if e, ok := m.values[id]; ok {
		switch e.mode {
		case modeSingle:
			e.value = value
		case modeMulti:
			e.queue = append(e.queue, value)
		}
	} else {
		m.values[id] = &signalEntry{mode: modeSingle, value: value}
	}
	m.indexes = append(m.indexes, id)
}

// pop removes and returns the next queued value for id, if any.
func (m *orderedMap) pop(id uint64) ([]byte, bool) {
	e, ok := m.values[id]
	if !ok {
		return nil, false
	}
	switch e.mode {
	case modeSingle:
		delete(m.values, id)
		return e.value, true
	case modeMulti:
		if len(e.queue) == 0 {
			return nil, false
		}
		v := e.queue[0]
		e.queue = e.queue[1:]
		return v, true
	}
	return nil, false
}

// popFirst returns the oldest still-pending (id, value) pair, skipping
// over index entries left behind by ids that have already been fully
// drained.
func (m *orderedMap) popFirst() (uint64, []byte, bool) {
	for len(m.indexes) > 0 {
		id := m.indexes[0]
		m.indexes = m.indexes[1:]
		if v, ok := m.pop(id); ok {
			return id, v, true
		}
		for len(m.indexes) > 0 && m.indexes[0] == id {
			m.indexes = m.indexes[1:]
		}
	}
	return 0, nil, false
}

func (m *orderedMap) setToMulti(id uint64) {
	e, ok := m.values[id]
	if !ok {
		m.values[id] = &signalEntry{mode: modeMulti}
		return
	}
	if e.mode == modeSingle {
		e.mode = modeMulti
		e.queue = [][]byte{e.value}
		e.value = nil
	}
}

// setToSingle collapses a Multi entry back to Single, keeping only the
// most recently queued value and discarding the rest.
func (m *orderedMap) setToSingle(id uint64) {
	e, ok := m.values[id]
	if !ok {
		return
	}
	if e.mode != modeMulti {
		return
	}
	if len(e.queue) == 0 {
		delete(m.values, id)
		return
	}
	last := e.queue[len(e.queue)-1]
	e.mode = modeSingle
	e.value = last
	e.queue = nil
}
