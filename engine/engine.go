// Package engine implements the CORE of an SMPL-style discrete-event
// simulation: a virtual clock driven by a time-ordered event queue, and
// multi-server resource facilities with priority queueing and preemption.
//
// # Reading Guide
//
// Start with these three files:
//   - descriptor.go: the pooled event descriptor and the two linked lists
//     it can live on (the engine's time queue, or a facility's wait queue).
//   - facility.go: server bookkeeping, the priority-ordered wait queue, and
//     the preempted-first tie-break.
//   - engine.go (this file): the public API — Init, Schedule, Cause,
//     Request/Preempt/Release, and the read-only statistics queries.
//
// The engine never formats output itself; see the sibling report and trace
// packages for that.
package engine

import (
	"fmt"
	"math"

	"github.com/smpl-go/smpl/rng"
	"github.com/smpl-go/smpl/trace"
)

// Outcome is the result of Request or Preempt.
type Outcome int

const (
	// Reserved means a server was immediately granted to the caller.
	Reserved Outcome = 0
	// Queued means the caller was enqueued on the facility's wait queue.
	Queued Outcome = 1
)

func (o Outcome) String() string {
	if o == Reserved {
		return "RESERVED"
	}
	return "QUEUED"
}

// Engine owns the virtual clock, the global event queue, the descriptor
// pool, the facility registry, and the PRNG for one simulation run. Each
// concurrently running simulation needs its own Engine — nothing here is
// safe for concurrent use.
type Engine struct {
	modelName     string
	clock         float64
	intervalStart float64

	lastEventCode int
	lastToken     Token

	timeQueueHead *eventDescriptor
	freePoolHead  *eventDescriptor

	facilities map[FacilityHandle]*Facility
	nextHandle FacilityHandle

	prng            *rng.Stream
	nextStreamIndex int

	traceEnabled bool
	sink         trace.Sink
}

// New creates an Engine with no model initialized yet; call Init before
// scheduling events or creating facilities.
func New() *Engine {
	return &Engine{
		facilities:      make(map[FacilityHandle]*Facility),
		prng:            rng.New(0),
		nextStreamIndex: 1,
	}
}

// SetSink installs the destination for trace lines. A nil sink silently
// drops trace output even when tracing is enabled.
func (e *Engine) SetSink(sink trace.Sink) { e.sink = sink }

func (e *Engine) emit(msg string) {
	if e.traceEnabled && e.sink != nil {
		e.sink.Emit(trace.Line(e.clock, msg))
	}
}

// Init re-initializes the engine for a new model run: clears both queues,
// the facility registry, and the free pool; zeros the clock and interval
// start; and advances the PRNG to the next stream in the 1..15 rotation.
func (e *Engine) Init(modelName string) error {
	if modelName == "" {
		return fmt.Errorf("%w: model name must be provided", ErrInvalidArgument)
	}

	e.timeQueueHead = nil
	e.freePoolHead = nil
	e.facilities = make(map[FacilityHandle]*Facility)
	e.nextHandle = 0

	e.clock = 0
	e.intervalStart = 0

	e.lastEventCode = 0
	e.lastToken = nil
	e.traceEnabled = false

	e.modelName = modelName

	if err := e.prng.Stream(e.nextStreamIndex); err != nil {
		return err
	}
	e.nextStreamIndex++
	if e.nextStreamIndex > 15 {
		e.nextStreamIndex = 1
	}
	return nil
}

// Rand exposes the engine's PRNG stream for direct sampler calls.
func (e *Engine) Rand() *rng.Stream { return e.prng }

// MName returns the current model name.
func (e *Engine) MName() string { return e.modelName }

// Time returns the current virtual clock. It only changes inside Cause.
func (e *Engine) Time() float64 { return e.clock }

// IntervalStart returns the clock value at which the current statistics
// interval began (the clock at Init or the most recent Reset).
func (e *Engine) IntervalStart() float64 { return e.intervalStart }

// Trace toggles emission of trace lines.
func (e *Engine) Trace(enabled bool) { e.traceEnabled = enabled }

// Schedule inserts a new event at clock+delay into the time-ordered queue.
func (e *Engine) Schedule(code int, delay float64, token Token) error {
	if delay < 0 || math.IsNaN(delay) || math.IsInf(delay, 0) {
		return fmt.Errorf("%w: delay must be finite and non-negative, got %v", ErrInvalidArgument, delay)
	}
	if token == nil {
		return fmt.Errorf("%w: token must be provided", ErrInvalidArgument)
	}

	d := e.acquireDescriptor()
	d.eventCode = code
	d.token = token
	d.remaining = 0
	d.triggerTime = e.clock + delay
	e.insertTimeQueue(d)

	e.emit(fmt.Sprintf("SCHEDULE EVENT %d FOR TOKEN %v", code, token))
	return nil
}

// Cause dequeues and dispatches the earliest pending event, advancing the
// clock to its trigger time. ok is false (and nothing changes) when the
// queue is empty.
func (e *Engine) Cause() (code int, token Token, ok bool) {
	d := e.timeQueueHead
	if d == nil {
		return 0, nil, false
	}
	e.timeQueueHead = d.next

	e.lastEventCode = d.eventCode
	e.lastToken = d.token
	e.clock = d.triggerTime

	code, token = d.eventCode, d.token
	e.releaseDescriptor(d)

	e.emit(fmt.Sprintf("CAUSE EVENT %d FOR TOKEN %v", code, token))
	return code, token, true
}

// Cancel removes the first time-queue entry matching code (earliest first)
// and returns its token.
func (e *Engine) Cancel(code int) (token Token, ok bool) {
	d := e.detachTimeQueueMatch(func(d *eventDescriptor) bool { return d.eventCode == code })
	if d == nil {
		return nil, false
	}
	token = d.token
	e.emit(fmt.Sprintf("CANCEL EVENT %d FOR TOKEN %v", code, token))
	e.releaseDescriptor(d)
	return token, true
}

// RemEvent behaves like Cancel but also returns the event's trigger time.
func (e *Engine) RemEvent(code int) (token Token, triggerTime float64, ok bool) {
	d := e.detachTimeQueueMatch(func(d *eventDescriptor) bool { return d.eventCode == code })
	if d == nil {
		return nil, 0, false
	}
	token, triggerTime = d.token, d.triggerTime
	e.emit(fmt.Sprintf("CANCEL EVENT %d FOR TOKEN %v", code, token))
	e.releaseDescriptor(d)
	return token, triggerTime, true
}

// Unschedule removes the first time-queue entry matching both code and
// token, reporting whether one was found.
func (e *Engine) Unschedule(code int, token Token) bool {
	d := e.detachTimeQueueMatch(func(d *eventDescriptor) bool {
		return d.eventCode == code && d.token == token
	})
	if d == nil {
		return false
	}
	e.emit(fmt.Sprintf("UNSCHEDULE EVENT %d FOR TOKEN %v", code, token))
	e.releaseDescriptor(d)
	return true
}

// suspend removes and returns the single time-queue entry scheduled for
// token. It panics if none exists: a facility holder with no pending event
// violates the engine's one-event-per-holder invariant, which is an
// internal bug, not a caller input error.
func (e *Engine) suspend(token Token) *eventDescriptor {
	d := e.detachTimeQueueMatch(func(d *eventDescriptor) bool { return d.token == token })
	if d == nil {
		panic(fmt.Sprintf("engine: no pending event scheduled for token %v", token))
	}
	e.emit(fmt.Sprintf("SUSPEND EVENT %d FOR TOKEN %v", d.eventCode, token))
	return d
}

// Facility creates a facility with nServers servers (>= 1) and registers
// it, returning an opaque handle.
func (e *Engine) Facility(name string, nServers int) (FacilityHandle, error) {
	if name == "" {
		return 0, fmt.Errorf("%w: facility name must be provided", ErrInvalidArgument)
	}
	if nServers < 1 {
		return 0, fmt.Errorf("%w: facility must have at least one server, got %d", ErrInvalidArgument, nServers)
	}

	h := e.nextHandle
	e.nextHandle++
	e.facilities[h] = newFacility(name, nServers)

	e.emit(fmt.Sprintf("CREATE FACILITY %s WITH ID %d", name, h))
	return h, nil
}

func (e *Engine) facility(h FacilityHandle) (*Facility, error) {
	f, ok := e.facilities[h]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	return f, nil
}

// FName returns a facility's name.
func (e *Engine) FName(h FacilityHandle) (string, error) {
	f, err := e.facility(h)
	if err != nil {
		return "", err
	}
	return f.name, nil
}

// Request attempts non-preemptive acquisition of a facility server: an
// immediately free server is reserved (Reserved); otherwise token joins the
// wait queue behind same-or-higher priority waiters (Queued).
func (e *Engine) Request(h FacilityHandle, token Token, priority int) (Outcome, error) {
	if token == nil {
		return 0, fmt.Errorf("%w: token must be provided", ErrInvalidArgument)
	}
	f, err := e.facility(h)
	if err != nil {
		return 0, err
	}

	if s, free := f.firstFreeServer(); free {
		f.reserve(s, token, priority, e.clock)
		e.emit(fmt.Sprintf("REQUEST FACILITY %s FOR TOKEN %v:  RESERVED", f.name, token))
		return Reserved, nil
	}

	f.enqueueWait(e.lastEventCode, token, priority, e.clock)
	e.emit(fmt.Sprintf("REQUEST FACILITY %s FOR TOKEN %v:  QUEUED  (inq = %d)", f.name, token, f.queueLength))
	return Queued, nil
}

// Preempt attempts acquisition of a facility server, displacing the current
// lowest-priority holder when token strictly outranks it. See SPEC_FULL.md
// section 4.3 for the full state machine.
func (e *Engine) Preempt(h FacilityHandle, token Token, priority int) (Outcome, error) {
	if token == nil {
		return 0, fmt.Errorf("%w: token must be provided", ErrInvalidArgument)
	}
	f, err := e.facility(h)
	if err != nil {
		return 0, err
	}

	if s, free := f.firstFreeServer(); free {
		f.reserve(s, token, priority, e.clock)
		e.emit(fmt.Sprintf("PREEMPT FACILITY %s FOR TOKEN %v:  RESERVED", f.name, token))
		return Reserved, nil
	}

	victim := f.lowestPriorityHolder()
	if priority <= victim.holderPriority {
		f.enqueueWait(e.lastEventCode, token, priority, e.clock)
		e.emit(fmt.Sprintf("PREEMPT FACILITY %s FOR TOKEN %v:  QUEUED  (inq = %d)", f.name, token, f.queueLength))
		return Queued, nil
	}

	e.emit(fmt.Sprintf("PREEMPT FACILITY %s FOR TOKEN %v:  INTERRUPT", f.name, token))

	preempted := victim.holder
	suspended := e.suspend(preempted)

	remaining := suspended.triggerTime - e.clock
	if remaining == 0 {
		remaining = 1e-99
	}
	victimPriority := victim.holderPriority
	victimCode := suspended.eventCode
	e.releaseDescriptor(suspended)

	d := &eventDescriptor{eventCode: victimCode, token: preempted, priority: victimPriority, remaining: remaining}
	f.insertQueueDescriptor(d, e.clock)
	e.emit(fmt.Sprintf("QUEUE FOR TOKEN %v (inq = %d)", preempted, f.queueLength))

	victim.releaseCount++
	victim.totalBusyTime += e.clock - victim.holdStart
	f.busyCount--
	f.preemptCount++

	f.reserve(victim, token, priority, e.clock)
	e.emit(fmt.Sprintf("RESERVE %s FOR TOKEN %v:  RESERVED", f.name, token))
	return Reserved, nil
}

// Release relinquishes the server held by token and, if the facility's wait
// queue is non-empty, admits the head entry: an ordinary waiter is
// re-dispatched at the current instant; a preempted resumption reclaims the
// just-freed server and resumes its suspended event after its remaining
// residual time.
func (e *Engine) Release(h FacilityHandle, token Token) error {
	if token == nil {
		return fmt.Errorf("%w: token must be provided", ErrInvalidArgument)
	}
	f, err := e.facility(h)
	if err != nil {
		return err
	}

	var s *facilityServer
	for _, cand := range f.servers {
		if cand.holder == token {
			s = cand
			break
		}
	}
	if s == nil {
		return fmt.Errorf("%w: token %v holds no server of facility %s", ErrStateError, token, f.name)
	}

	s.releaseCount++
	s.totalBusyTime += e.clock - s.holdStart
	s.holder = nil
	f.busyCount--

	e.emit(fmt.Sprintf("RELEASE FACILITY %s FOR TOKEN %v", f.name, token))

	if f.queueLength > 0 {
		d := f.dequeueHead(e.clock)
		e.emit(fmt.Sprintf("DEQUEUE FOR TOKEN %v  (inq = %d)", d.token, f.queueLength))

		if d.remaining == 0 {
			d.triggerTime = e.clock
			e.pushFront(d)
			e.emit(fmt.Sprintf("RESCHEDULE EVENT %d FOR TOKEN %v", d.eventCode, d.token))
		} else {
			f.reserve(s, d.token, d.priority, e.clock)
			e.emit(fmt.Sprintf("RESERVE %s FOR TOKEN %v", f.name, d.token))

			d.triggerTime = e.clock + d.remaining
			e.insertTimeQueue(d)
			e.emit(fmt.Sprintf("RESUME EVENT %d FOR TOKEN %v", d.eventCode, d.token))
		}
	}
	return nil
}

// Status reports whether every server of the facility is currently busy.
func (e *Engine) Status(h FacilityHandle) (bool, error) {
	f, err := e.facility(h)
	if err != nil {
		return false, err
	}
	return f.busyCount == len(f.servers), nil
}

// InQ returns the facility's current wait-queue length.
func (e *Engine) InQ(h FacilityHandle) (int, error) {
	f, err := e.facility(h)
	if err != nil {
		return 0, err
	}
	return f.queueLength, nil
}

// U returns the facility's mean utilization: the sum, across servers, of
// total busy time over the current statistics interval.
func (e *Engine) U(h FacilityHandle) (float64, error) {
	f, err := e.facility(h)
	if err != nil {
		return 0, err
	}
	return f.utilization(e.clock, e.intervalStart), nil
}

// B returns the facility's mean busy period: total busy time divided by
// total releases across all servers, or the raw total when there have been
// no releases yet.
func (e *Engine) B(h FacilityHandle) (float64, error) {
	f, err := e.facility(h)
	if err != nil {
		return 0, err
	}
	return f.meanBusyPeriod(), nil
}

// Lq returns the facility's time-weighted mean queue length over the
// current statistics interval.
func (e *Engine) Lq(h FacilityHandle) (float64, error) {
	f, err := e.facility(h)
	if err != nil {
		return 0, err
	}
	return f.meanQueueLength(e.clock, e.intervalStart), nil
}

// Reset zeros every facility's and server's statistics and starts a new
// statistics interval at the current clock. Pending events are untouched.
// Note: total_queueing_time is zeroed but last_change_time is not, so Lq can
// be briefly biased until the next queue transition — this mirrors the
// original generator and is intentional (see SPEC_FULL.md section 9).
func (e *Engine) Reset() {
	for _, f := range e.facilities {
		f.resetStats()
	}
	e.intervalStart = e.clock
}

// FacilityHandles returns every registered facility handle, in creation
// order, for callers (e.g. report) that need to enumerate the registry.
func (e *Engine) FacilityHandles() []FacilityHandle {
	handles := make([]FacilityHandle, 0, len(e.facilities))
	for h := FacilityHandle(0); h < e.nextHandle; h++ {
		if _, ok := e.facilities[h]; ok {
			handles = append(handles, h)
		}
	}
	return handles
}

// Snapshot is a read-only view of a facility's operation counters, used by
// the report package without exposing the Facility struct itself.
type Snapshot struct {
	Name           string
	NumServers     int
	Releases       int
	PreemptCount   int
	QueueExitCount int
}

// Snapshot returns the facility's current operation counters.
func (e *Engine) Snapshot(h FacilityHandle) (Snapshot, error) {
	f, err := e.facility(h)
	if err != nil {
		return Snapshot{}, err
	}
	releases := 0
	for _, s := range f.servers {
		releases += s.releaseCount
	}
	return Snapshot{
		Name:           f.name,
		NumServers:     len(f.servers),
		Releases:       releases,
		PreemptCount:   f.preemptCount,
		QueueExitCount: f.queueExitCount,
	}, nil
}
