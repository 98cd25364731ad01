package bollywood

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type testCounter struct {
	value        int
	afterRestart bool
}

type incr struct{ by int }
type get struct{}
type failWith struct{ err error }

func newTestCounterProtocol() Protocol {
	return NewProtocol("testCounter", func(def Definition) Actor { return &testCounter{} })
}

func (c *testCounter) Receive(ctx Context) {
	switch msg := ctx.Message().(type) {
	case incr:
		c.value += msg.by
	case get:
		ctx.Respond(c.value, nil)
	case failWith:
		panic(msg.err.Error())
	}
}

func (c *testCounter) ObservableState() map[string]any {
	return map[string]any{"value": c.value, "afterRestart": c.afterRestart}
}

func (c *testCounter) AfterRestart(ctx Context) error {
	c.afterRestart = true
	return nil
}

func askInt(t *testing.T, p Proxy, payload any) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	v, err := Ask[int](ctx, p, payload)
	require.NoError(t, err)
	return v
}

func TestStage_FIFOPerSenderDelivery(t *testing.T) {
	defer goleak.VerifyNone(t)

	stage := NewStage()
	defer stage.Close(context.Background())

	proxy, err := stage.ActorFor(newTestCounterProtocol(), Definition{Type: "testCounter"})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		proxy.Tell(incr{by: 1})
	}

	assert.Equal(t, 10, askInt(t, proxy, get{}))
}

func TestStage_RestartResetsState(t *testing.T) {
	defer goleak.VerifyNone(t)

	stage := NewStage()
	defer stage.Close(context.Background())

	proxy, err := stage.ActorFor(newTestCounterProtocol(), Definition{Type: "testCounter"})
	require.NoError(t, err)

	proxy.Tell(incr{by: 5})
	require.Equal(t, 5, askInt(t, proxy, get{}))

	proxy.Tell(failWith{err: errors.New("boom")})

	require.Eventually(t, func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		v, err := Ask[int](ctx, proxy, get{})
		return err == nil && v == 0
	}, time.Second, 5*time.Millisecond, "state should reset to zero after restart")
}

func TestStage_ResumePreservesState(t *testing.T) {
	defer goleak.VerifyNone(t)

	stage := NewStage()
	defer stage.Close(context.Background())

	supervisorProtocol := NewSupervisor(Strategy{Intensity: 10, Period: time.Minute, Scope: ScopeOne, OnBreach: Stop}, func(err error, sup Supervised, strat Strategy) Directive {
		return Resume
	})
	supervisorProxy, err := stage.ActorFor(supervisorProtocol, Definition{Type: "resumeSupervisor"})
	require.NoError(t, err)
	require.NoError(t, stage.RegisterSupervisor("resume-sup", supervisorProxy))

	proxy, err := stage.ActorFor(newTestCounterProtocol(), Definition{Type: "testCounter"}, WithSupervisor("resume-sup"))
	require.NoError(t, err)

	proxy.Tell(incr{by: 7})
	require.Equal(t, 7, askInt(t, proxy, get{}))

	proxy.Tell(failWith{err: errors.New("boom")})

	require.Eventually(t, func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		v, err := Ask[int](ctx, proxy, get{})
		return err == nil && v == 7
	}, time.Second, 5*time.Millisecond, "state should survive a Resume directive")
}

type spawnChild struct{}

// trackingActor records its own name into a shared, mutex-guarded slice
// when it finishes stopping, so a test can assert on stop ordering.
type trackingActor struct {
	name  string
	order *[]string
	mu    *sync.Mutex
}

func (a *trackingActor) Receive(ctx Context) {
	if _, ok := ctx.Message().(spawnChild); ok {
		_, _ = ctx.ChildActorFor(newTrackingProtocol("child", a.order, a.mu), Definition{Type: "tracking"})
	}
}

func (a *trackingActor) AfterStop(ctx Context) error {
	a.mu.Lock()
	*a.order = append(*a.order, a.name)
	a.mu.Unlock()
	return nil
}

func newTrackingProtocol(name string, order *[]string, mu *sync.Mutex) Protocol {
	return NewProtocol("tracking", func(def Definition) Actor {
		return &trackingActor{name: name, order: order, mu: mu}
	})
}

func TestStage_ChildrenStopBeforeParent(t *testing.T) {
	defer goleak.VerifyNone(t)

	stage := NewStage()

	var order []string
	var mu sync.Mutex

	parentProxy, err := stage.ActorFor(newTrackingProtocol("parent", &order, &mu), Definition{Type: "tracking"})
	require.NoError(t, err)

	parentProxy.Tell(spawnChild{})
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, stage.Close(context.Background()))

	require.Len(t, order, 2)
	assert.Equal(t, "child", order[0], "child must finish stopping before its parent")
	assert.Equal(t, "parent", order[1])
}

func TestStage_DeadLetterAfterClose(t *testing.T) {
	stage := NewStage()

	proxy, err := stage.ActorFor(newTestCounterProtocol(), Definition{Type: "testCounter"})
	require.NoError(t, err)

	require.NoError(t, stage.Close(context.Background()))

	before := stage.DeadLetters().Count()
	proxy.Tell(incr{by: 1})
	assert.Equal(t, before+1, stage.DeadLetters().Count())
}

func TestStage_ActorForRejectsAfterClose(t *testing.T) {
	stage := NewStage()
	require.NoError(t, stage.Close(context.Background()))

	_, err := stage.ActorFor(newTestCounterProtocol(), Definition{Type: "testCounter"})
	assert.ErrorIs(t, err, ErrStageClosed)
}
