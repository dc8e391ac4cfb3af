package engine

// FacilityHandle is an opaque identifier for a registered facility. Handles
// are assigned in creation order starting at 0, and numbering restarts at
// every Engine.Init.
type FacilityHandle int

// facilityServer is one unit of capacity within a facility.
type facilityServer struct {
	holder         Token // nil means the server is free
	holderPriority int
	holdStart      float64
	releaseCount   int
	totalBusyTime  float64
}

func (s *facilityServer) free() bool { return s.holder == nil }

// Facility is a resource with one or more interchangeable servers and a
// priority-ordered wait queue.
type Facility struct {
	name    string
	servers []*facilityServer

	busyCount int

	queueHead         *eventDescriptor
	queueLength       int
	lastChangeTime    float64
	totalQueueingTime float64

	queueExitCount int
	preemptCount   int
}

// NumServers returns the facility's fixed server count.
func (f *Facility) NumServers() int { return len(f.servers) }

func newFacility(name string, nServers int) *Facility {
	servers := make([]*facilityServer, nServers)
	for i := range servers {
		servers[i] = &facilityServer{}
	}
	return &Facility{name: name, servers: servers}
}

func (f *Facility) resetStats() {
	f.queueExitCount = 0
	f.preemptCount = 0
	f.totalQueueingTime = 0
	for _, s := range f.servers {
		s.releaseCount = 0
		s.totalBusyTime = 0
	}
}

// firstFreeServer returns the first server with no holder, in declaration
// order.
func (f *Facility) firstFreeServer() (*facilityServer, bool) {
	for _, s := range f.servers {
		if s.free() {
			return s, true
		}
	}
	return nil, false
}

// lowestPriorityHolder returns the busy server holding the lowest priority,
// first-found ties going to the earliest server. Callers must ensure every
// server is busy.
func (f *Facility) lowestPriorityHolder() *facilityServer {
	lowest := f.servers[0]
	for _, s := range f.servers[1:] {
		if s.holderPriority < lowest.holderPriority {
			lowest = s
		}
	}
	return lowest
}

// reserve installs token as the holder of server s at time clock.
func (f *Facility) reserve(s *facilityServer, token Token, priority int, clock float64) {
	s.holder = token
	s.holderPriority = priority
	s.holdStart = clock
	f.busyCount++
}

// integrateQueueLength applies the staircase integral ∫ L(t) dt for the span
// since the last queue-length change, using the length in effect up to now.
// Callers must call this immediately before queueLength actually changes.
func (f *Facility) integrateQueueLength(clock float64) {
	f.totalQueueingTime += float64(f.queueLength) * (clock - f.lastChangeTime)
	f.lastChangeTime = clock
}

// enqueueWait inserts a new ordinary-waiter descriptor (remaining == 0) for
// token, at priority, carrying eventCode for later re-dispatch.
func (f *Facility) enqueueWait(eventCode int, token Token, priority int, clock float64) *eventDescriptor {
	d := &eventDescriptor{eventCode: eventCode, token: token, priority: priority}
	f.insertQueueDescriptor(d, clock)
	return d
}

// insertQueueDescriptor splices d into the facility's wait queue in priority
// order (descending). A preempted resumption (remaining > 0) is inserted
// ahead of every existing entry at the same priority, ordinary waiter or
// preempted alike — so preempted resumptions at equal priority stack LIFO,
// each new one jumping ahead of the last. An ordinary waiter (remaining ==
// 0) goes behind all existing entries at the same priority.
func (f *Facility) insertQueueDescriptor(d *eventDescriptor, clock float64) {
	f.integrateQueueLength(clock)
	f.queueLength++

	insertBefore := func(cur *eventDescriptor) bool {
		if cur.priority < d.priority {
			return true
		}
		return cur.priority == d.priority && d.remaining > 0
	}

	var pred *eventDescriptor
	succ := f.queueHead
	for succ != nil && !insertBefore(succ) {
		pred = succ
		succ = succ.next
	}
	d.next = succ
	if pred == nil {
		f.queueHead = d
	} else {
		pred.next = d
	}
}

// dequeueHead removes and returns the head of the wait queue. Callers must
// check queueLength > 0 first.
func (f *Facility) dequeueHead(clock float64) *eventDescriptor {
	d := f.queueHead
	f.queueHead = d.next
	d.next = nil

	f.integrateQueueLength(clock)
	f.queueLength--
	f.queueExitCount++
	return d
}

// utilization sums each server's total busy time over the interval
// [intervalStart, clock], matching SMPL's U(): the sum across servers, not
// an average, so a fully busy n-server facility reports ~n.
func (f *Facility) utilization(clock, intervalStart float64) float64 {
	span := clock - intervalStart
	if span <= 0 {
		return 0
	}
	var busy float64
	for _, s := range f.servers {
		busy += s.totalBusyTime
	}
	return busy / span
}

// meanBusyPeriod returns total busy time divided by total releases across
// all servers, falling back to the raw total when no releases occurred yet.
func (f *Facility) meanBusyPeriod() float64 {
	var busy float64
	var releases int
	for _, s := range f.servers {
		busy += s.totalBusyTime
		releases += s.releaseCount
	}
	if releases > 0 {
		return busy / float64(releases)
	}
	return busy
}

// meanQueueLength returns the time-weighted mean of queue length over the
// interval [intervalStart, clock].
func (f *Facility) meanQueueLength(clock, intervalStart float64) float64 {
	span := clock - intervalStart
	if span <= 0 {
		return 0
	}
	return f.totalQueueingTime / span
}
