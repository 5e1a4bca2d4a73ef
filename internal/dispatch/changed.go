package dispatch

// changedState is the guarded state behind Dispatcher: pending signal
// values, which ids are currently "blocked" (owned by a caller mid-
// sequence through a Multi queue), and which ids are registered to be
// handed out at all. Values can be set for an unregistered id; get
// discards each one it reaches while the id is still unregistered.
type changedState struct {
	values     *orderedMap
	blocked    map[uint64]struct{}
	registered map[uint64]struct{}
}

func newChangedState() *changedState {
	return &changedState{
		values:     newOrderedMap(),
		blocked:    make(map[uint64]struct{}),
		registered: make(map[uint64]struct{}),
	}
}

func (c *changedState) clear() {
	c.values.clear()
	c.blocked = make(map[uint64]struct{})
}

// queuedCount returns the number of ids currently holding an
// undelivered value, regardless of registration.
func (c *changedState) queuedCount() int {
	return c.values.count()
}

// set records a new value for id and reports whether a waiter should
// be woken: no wakeup is needed if id is currently blocked, since
// whichever goroutine is already working through that id's queue will
// see the new value on its next call.
func (c *changedState) set(id uint64, value []byte) (wake bool) {
	c.values.insert(id, value)
	_, blocked := c.blocked[id]
	return !blocked
}

// get implements the ordered hand-out rule: a caller passing the id it
// was last given continues draining that id's queue (as long as the id
// is still blocked, meaning nobody else has claimed it) before the
// dispatcher moves on to the next oldest id.
func (c *changedState) get(prevID uint64, hasPrev bool) (id uint64, value []byte, ok bool) {
	var gotID uint64
	var gotVal []byte
	var gotOK bool

	switch {
	case hasPrev:
		if _, isBlocked := c.blocked[prevID]; isBlocked {
			if v, found := c.values.pop(prevID); found {
				gotID, gotVal, gotOK = prevID, v, true
			} else {
				nextID, nextVal, found := c.values.popFirst()
				delete(c.blocked, prevID)
				if found {
					c.blocked[nextID] = struct{}{}
				}
				gotID, gotVal, gotOK = nextID, nextVal, found
			}
		} else {
			nextID, nextVal, found := c.values.popFirst()
			if found {
				c.blocked[nextID] = struct{}{}
			}
			gotID, gotVal, gotOK = nextID, nextVal, found
		}
	default:
		nextID, nextVal, found := c.values.popFirst()
		if found {
			c.blocked[nextID] = struct{}{}
		}
		gotID, gotVal, gotOK = nextID, nextVal, found
	}

	if !gotOK {
		return 0, nil, false
	}
	if _, registered := c.registered[gotID]; !registered {
		// Drop the unregistered id's value and move on to the next
		// pending one.
		delete(c.blocked, gotID)
		return c.get(0, false)
	}
	return gotID, gotVal, true
}
