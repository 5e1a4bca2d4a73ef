// Package dispatch implements the per-id ordered signal dispatcher: a
// single mailbox per slot id, drained in first-touched order, with a
// reserved id carrying the connection's own internal log messages.
package dispatch

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/eguisync/eguisync/internal/metrics"
	"github.com/eguisync/eguisync/internal/typeinfo"
)

// LoggingPath is hashed the same way every other slot id is hashed
// (typeinfo.HashPath), so the logging channel behaves like any other
// registered Signal slot from the client's point of view. Exported so
// callers wiring up a Registry can register a matching Signal slot
// under this exact path.
const LoggingPath = "__egui_states_logging"

const loggingPath = LoggingPath

// Log levels carried as the first byte of a logging-channel payload.
const (
	LevelDebug uint8 = iota
	LevelInfo
	LevelWarning
	LevelError
)

// Dispatcher hands out signal values to the goroutines calling Wait
// (host application code; any number may call it) in the order their
// ids were first set,
// condition-variable style: Wait blocks until a value is available
// rather than polling.
type Dispatcher struct {
	mu        sync.Mutex
	cond      *sync.Cond
	state     *changedState
	loggingID uint64
	metrics   *metrics.Metrics
	// Debug gates Dispatcher.DebugLog: the reference implementation only
	// emits these under a debug build; Go has no equivalent of
	// cfg(debug_assertions), so this is a runtime flag instead.
	Debug bool
}

// NewDispatcher creates an empty dispatcher. debug controls whether
// Debug-level log messages are actually queued.
func NewDispatcher(debug bool) *Dispatcher {
	d := &Dispatcher{
		state:     newChangedState(),
		loggingID: typeinfo.HashPath(loggingPath),
		Debug:     debug,
	}
	d.cond = sync.NewCond(&d.mu)
	return d
}

// LoggingID returns the reserved id clients must register to receive
// internal log messages on.
func (d *Dispatcher) LoggingID() uint64 {
	return d.loggingID
}

// SetMetrics wires m so subsequent Set/Wait/Reset calls report the
// number of ids currently holding an undelivered value. Calling it
// more than once replaces the previously wired Metrics.
func (d *Dispatcher) SetMetrics(m *metrics.Metrics) {
	d.mu.Lock()
	d.metrics = m
	if m != nil {
		m.SetDispatcherQueued(d.state.queuedCount())
	}
	d.mu.Unlock()
}

// Set records a new value for id and wakes a blocked Wait call if one
// could now make progress.
func (d *Dispatcher) Set(id uint64, value []byte) {
	d.mu.Lock()
	wake := d.state.set(id, value)
	d.reportQueuedLocked()
	d.mu.Unlock()
	if wake {
		d.cond.Broadcast()
	}
}

// Reset drops every pending value and blocked-id marker. Registrations
// are left untouched.
func (d *Dispatcher) Reset() {
	d.mu.Lock()
	d.state.clear()
	d.reportQueuedLocked()
	d.mu.Unlock()
}

// reportQueuedLocked updates the DispatcherQueued gauge, if wired,
// to the current number of ids holding an undelivered value. Callers
// must hold d.mu.
func (d *Dispatcher) reportQueuedLocked() {
	if d.metrics != nil {
		d.metrics.SetDispatcherQueued(d.state.queuedCount())
	}
}

// SetRegistered marks id as eligible (or no longer eligible) to be
// handed out by Wait. Values can be set for an unregistered id, but
// Wait discards each one it reaches while the id is unregistered.
func (d *Dispatcher) SetRegistered(id uint64, registered bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if registered {
		d.state.registered[id] = struct{}{}
	} else {
		delete(d.state.registered, id)
	}
}

// SetMultiMode switches id to queue every value it receives instead of
// keeping only the latest one.
func (d *Dispatcher) SetMultiMode(id uint64) {
	d.mu.Lock()
	d.state.values.setToMulti(id)
	d.mu.Unlock()
}

// SetSingleMode switches id back to keeping only its latest value,
// discarding any values still queued from Multi mode.
func (d *Dispatcher) SetSingleMode(id uint64) {
	d.mu.Lock()
	d.state.values.setToSingle(id)
	d.mu.Unlock()
}

// Wait blocks until the next eligible signal is available and returns
// it. Pass hasPrev=false on a connection's first call; on every
// subsequent call pass the id returned by the previous Wait so the
// dispatcher keeps draining a Multi id's queue before moving on. Wait
// returns ok=false only when ctx is done.
func (d *Dispatcher) Wait(ctx context.Context, prevID uint64, hasPrev bool) (id uint64, value []byte, ok bool) {
	stop := context.AfterFunc(ctx, d.cond.Broadcast)
	defer stop()

	d.mu.Lock()
	defer d.mu.Unlock()
	for {
		if gotID, v, found := d.state.get(prevID, hasPrev); found {
			d.reportQueuedLocked()
			return gotID, v, true
		}
		if ctx.Err() != nil {
			return 0, nil, false
		}
		d.cond.Wait()
	}
}

func encodeLogMessage(level uint8, message string) []byte {
	buf := make([]byte, 0, 5+len(message))
	buf = append(buf, level)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(message)))
	buf = append(buf, message...)
	return buf
}

// DebugLog queues a debug-level message on the logging channel, but only
// when the dispatcher was constructed with debug logging enabled.
func (d *Dispatcher) DebugLog(message string) {
	if !d.Debug {
		return
	}
	d.Set(d.loggingID, encodeLogMessage(LevelDebug, message))
}

// Info queues an info-level message on the logging channel.
func (d *Dispatcher) Info(message string) {
	d.Set(d.loggingID, encodeLogMessage(LevelInfo, message))
}

// Warning queues a warning-level message on the logging channel.
func (d *Dispatcher) Warning(message string) {
	d.Set(d.loggingID, encodeLogMessage(LevelWarning, message))
}

// Error queues an error-level message on the logging channel.
func (d *Dispatcher) Error(message string) {
	d.Set(d.loggingID, encodeLogMessage(LevelError, message))
}
