package bollywood

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestSupervisor_EscalateForwardsToGrandparent(t *testing.T) {
	defer goleak.VerifyNone(t)

	stage := NewStage()
	defer stage.Close(context.Background())

	escalated := make(chan Supervised, 1)
	grandProtocol := NewSupervisor(DefaultStrategy(), func(err error, sup Supervised, strat Strategy) Directive {
		escalated <- sup
		return Stop
	})
	grandProxy, err := stage.ActorFor(grandProtocol, Definition{Type: "grandSupervisor"})
	require.NoError(t, err)
	require.NoError(t, stage.RegisterSupervisor("grand", grandProxy))

	midProtocol := NewSupervisor(Strategy{Intensity: 1 << 30, Period: time.Minute, Scope: ScopeOne, OnBreach: Stop}, func(err error, sup Supervised, strat Strategy) Directive {
		return Escalate
	})
	midProxy, err := stage.ActorFor(midProtocol, Definition{Type: "midSupervisor"}, WithSupervisor("grand"))
	require.NoError(t, err)
	require.NoError(t, stage.RegisterSupervisor("mid", midProxy))

	proxy, err := stage.ActorFor(newTestCounterProtocol(), Definition{Type: "testCounter"}, WithSupervisor("mid"))
	require.NoError(t, err)

	proxy.Tell(failWith{err: errors.New("boom")})

	select {
	case report := <-escalated:
		assert.Equal(t, midProxy.Address(), report.Child.Address())
	case <-time.After(time.Second):
		t.Fatal("expected the grandparent supervisor to receive an escalated report")
	}
}

func TestSupervisor_ScopeAllAppliesDirectiveToEverySibling(t *testing.T) {
	defer goleak.VerifyNone(t)

	stage := NewStage()
	defer stage.Close(context.Background())

	supervisorProtocol := NewSupervisor(Strategy{Intensity: 1 << 30, Period: time.Minute, Scope: ScopeAll, OnBreach: Stop}, AlwaysRestart)
	supervisorProxy, err := stage.ActorFor(supervisorProtocol, Definition{Type: "scopeAllSupervisor"})
	require.NoError(t, err)
	require.NoError(t, stage.RegisterSupervisor("scope-all", supervisorProxy))

	a, err := stage.ActorFor(newTestCounterProtocol(), Definition{Type: "testCounter"}, WithSupervisor("scope-all"))
	require.NoError(t, err)
	b, err := stage.ActorFor(newTestCounterProtocol(), Definition{Type: "testCounter"}, WithSupervisor("scope-all"))
	require.NoError(t, err)

	a.Tell(incr{by: 3})
	b.Tell(incr{by: 9})
	require.Equal(t, 3, askInt(t, a, get{}))
	require.Equal(t, 9, askInt(t, b, get{}))

	a.Tell(failWith{err: errors.New("boom")})

	require.Eventually(t, func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		va, errA := Ask[int](ctx, a, get{})
		vb, errB := Ask[int](ctx, b, get{})
		return errA == nil && errB == nil && va == 0 && vb == 0
	}, time.Second, 5*time.Millisecond, "a ScopeAll restart directive must restart every sibling, not just the one that failed")
}

func TestSupervisor_IntensityBreachSubstitutesOnBreach(t *testing.T) {
	defer goleak.VerifyNone(t)

	stage := NewStage()
	defer stage.Close(context.Background())

	supervisorProtocol := NewSupervisor(Strategy{Intensity: 1, Period: time.Minute, Scope: ScopeOne, OnBreach: Stop}, AlwaysRestart)
	supervisorProxy, err := stage.ActorFor(supervisorProtocol, Definition{Type: "strictSupervisor"})
	require.NoError(t, err)
	require.NoError(t, stage.RegisterSupervisor("strict", supervisorProxy))

	proxy, err := stage.ActorFor(newTestCounterProtocol(), Definition{Type: "testCounter"}, WithSupervisor("strict"))
	require.NoError(t, err)

	proxy.Tell(failWith{err: errors.New("first")})
	require.Eventually(t, func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		_, err := Ask[int](ctx, proxy, get{})
		return err == nil
	}, time.Second, 5*time.Millisecond, "first failure should only restart, actor should still answer")

	proxy.Tell(failWith{err: errors.New("second")})

	require.Eventually(t, func() bool {
		_, ok := stage.ActorOf(proxy.Address())
		return !ok
	}, time.Second, 5*time.Millisecond, "breaching intensity should stop the actor instead of restarting it again")
}
