package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacility_InsertQueueDescriptor_PriorityOrder(t *testing.T) {
	// GIVEN a facility whose single server is already held
	f := newFacility("f", 1)
	f.reserve(f.servers[0], "holder", 0, 0)

	// WHEN waiters are enqueued out of priority order
	f.enqueueWait(1, "low", 1, 0)
	f.enqueueWait(2, "high", 5, 0)
	f.enqueueWait(3, "mid", 3, 0)

	// THEN the queue is ordered by descending priority
	var order []Token
	for d := f.queueHead; d != nil; d = d.next {
		order = append(order, d.token)
	}
	assert.Equal(t, []Token{"high", "mid", "low"}, order)
}

func TestFacility_InsertQueueDescriptor_PreemptedFirstAtEqualPriority(t *testing.T) {
	// GIVEN a facility with an ordinary waiter already queued at priority 5
	f := newFacility("f", 1)
	f.reserve(f.servers[0], "holder", 0, 0)
	f.enqueueWait(1, "ordinary", 5, 0)

	// WHEN a preempted resumption arrives at the same priority
	resumed := &eventDescriptor{eventCode: 2, token: "resumed", priority: 5, remaining: 3}
	f.insertQueueDescriptor(resumed, 0)

	// THEN the preempted resumption goes ahead of the ordinary waiter
	require.NotNil(t, f.queueHead)
	assert.Equal(t, Token("resumed"), f.queueHead.token)
	assert.Equal(t, Token("ordinary"), f.queueHead.next.token)
}

func TestFacility_InsertQueueDescriptor_PreemptedStackLIFOAtEqualPriority(t *testing.T) {
	// GIVEN a facility with one preempted resumption already queued at priority 5
	f := newFacility("f", 1)
	f.reserve(f.servers[0], "holder", 0, 0)
	first := &eventDescriptor{eventCode: 1, token: "first-preempted", priority: 5, remaining: 3}
	f.insertQueueDescriptor(first, 0)

	// WHEN a second preempted resumption arrives at the same priority
	second := &eventDescriptor{eventCode: 2, token: "second-preempted", priority: 5, remaining: 4}
	f.insertQueueDescriptor(second, 0)

	// THEN the second jumps ahead of the first: preempted resumptions stack LIFO
	require.NotNil(t, f.queueHead)
	assert.Equal(t, Token("second-preempted"), f.queueHead.token)
	assert.Equal(t, Token("first-preempted"), f.queueHead.next.token)
}

func TestFacility_LowestPriorityHolder(t *testing.T) {
	f := newFacility("f", 3)
	f.reserve(f.servers[0], "a", 5, 0)
	f.reserve(f.servers[1], "b", 1, 0)
	f.reserve(f.servers[2], "c", 9, 0)

	victim := f.lowestPriorityHolder()
	assert.Equal(t, Token("b"), victim.holder)
}

func TestFacility_Utilization_SumsAcrossServers(t *testing.T) {
	// GIVEN two servers each busy for the full 10-unit interval
	f := newFacility("f", 2)
	f.servers[0].totalBusyTime = 10
	f.servers[1].totalBusyTime = 10

	// THEN utilization is the sum, not the average, so it can exceed 1
	u := f.utilization(10, 0)
	assert.Equal(t, 2.0, u)
}

func TestFacility_MeanBusyPeriod_FallsBackWithoutReleases(t *testing.T) {
	f := newFacility("f", 1)
	f.servers[0].totalBusyTime = 7
	assert.Equal(t, 7.0, f.meanBusyPeriod())

	f.servers[0].releaseCount = 2
	assert.Equal(t, 3.5, f.meanBusyPeriod())
}

func TestFacility_ResetStats_PreservesLastChangeTime(t *testing.T) {
	f := newFacility("f", 1)
	f.lastChangeTime = 42
	f.totalQueueingTime = 100
	f.servers[0].totalBusyTime = 5
	f.servers[0].releaseCount = 1

	f.resetStats()

	assert.Equal(t, 0.0, f.totalQueueingTime)
	assert.Equal(t, 0, f.servers[0].releaseCount)
	assert.Equal(t, 0.0, f.servers[0].totalBusyTime)
	assert.Equal(t, 42.0, f.lastChangeTime, "reset does not touch last_change_time")
}
