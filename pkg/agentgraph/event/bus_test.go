package event_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collector gathers delivered events for assertions.
type collector struct {
	mu     sync.Mutex
	events []event.Event
}

func (c *collector) handle(_ context.Context, evt event.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func (c *collector) kinds() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	kinds := make([]string, len(c.events))
	for i, e := range c.events {
		kinds[i] = e.Kind
	}
	return kinds
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// TestNew verifies identity fields are populated.
func TestNew(t *testing.T) {
	evt := event.New(event.KindRunStarted, "thread-1")
	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, event.KindRunStarted, evt.Kind)
	assert.Equal(t, "thread-1", evt.ThreadID)
	assert.False(t, evt.Timestamp.IsZero())
}

// TestEventWith verifies the builder helpers copy rather than mutate.
func TestEventWith(t *testing.T) {
	base := event.New(event.KindToolCalled, "thread-1")
	scoped := base.WithNode("researcher").WithStep(2).WithField("tool", "check_grammar")

	assert.Empty(t, base.NodeID)
	assert.Nil(t, base.Fields)
	assert.Equal(t, "researcher", scoped.NodeID)
	assert.Equal(t, 2, scoped.Step)
	assert.Equal(t, "check_grammar", scoped.Fields["tool"])
}

// TestBusKindFiltering verifies subscribers only see their kinds.
func TestBusKindFiltering(t *testing.T) {
	bus := event.NewBus(event.BusConfig{})
	defer bus.Close()

	var toolOnly, all collector
	bus.Subscribe([]string{event.KindToolCalled}, toolOnly.handle)
	bus.Subscribe(nil, all.handle)

	ctx := context.Background()
	bus.Publish(ctx, event.New(event.KindRunStarted, "t1"))
	bus.Publish(ctx, event.New(event.KindToolCalled, "t1"))
	bus.Publish(ctx, event.New(event.KindRunCompleted, "t1"))

	waitFor(t, func() bool { return all.len() == 3 && toolOnly.len() == 1 })
	assert.Equal(t, []string{event.KindToolCalled}, toolOnly.kinds())
}

// TestBusUnsubscribe verifies no delivery after unsubscribe.
func TestBusUnsubscribe(t *testing.T) {
	bus := event.NewBus(event.BusConfig{})
	defer bus.Close()

	var c collector
	sub := bus.Subscribe(nil, c.handle)
	require.NotNil(t, sub)

	ctx := context.Background()
	bus.Publish(ctx, event.New(event.KindRunStarted, "t1"))
	waitFor(t, func() bool { return c.len() == 1 })

	sub.Unsubscribe()
	sub.Unsubscribe() // idempotent

	bus.Publish(ctx, event.New(event.KindRunCompleted, "t1"))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, c.len())
}

// TestBusClosed verifies publish and subscribe are no-ops after Close.
func TestBusClosed(t *testing.T) {
	bus := event.NewBus(event.BusConfig{})

	var c collector
	bus.Subscribe(nil, c.handle)
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	bus.Publish(context.Background(), event.New(event.KindRunStarted, "t1"))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, c.len())

	// A closed bus still hands out a usable subscription, so the
	// defer-Unsubscribe pattern cannot nil-panic. It just never fires.
	sub := bus.Subscribe(nil, c.handle)
	require.NotNil(t, sub)
	bus.Publish(context.Background(), event.New(event.KindRunStarted, "t2"))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, c.len())
	sub.Unsubscribe()
}

// TestBusDrop verifies full buffers drop with notification.
func TestBusDrop(t *testing.T) {
	var mu sync.Mutex
	drops := 0
	bus := event.NewBus(event.BusConfig{
		BufferSize: 1,
		OnDrop: func(event.Event, string) {
			mu.Lock()
			drops++
			mu.Unlock()
		},
	})
	defer bus.Close()

	block := make(chan struct{})
	bus.Subscribe(nil, func(context.Context, event.Event) {
		<-block
	})

	ctx := context.Background()
	// The blocked handler consumes at most one event and one more sits
	// in the buffer, so four publishes guarantee a drop.
	for i := 0; i < 4; i++ {
		bus.Publish(ctx, event.New(event.KindNodeStarted, "t1"))
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return drops >= 1
	})
	close(block)
}
