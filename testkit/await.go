// Package testkit provides polling helpers for asserting on actor state
// from tests without racing an actor's own dispatch worker: every helper
// here goes through bollywood.ObservableState (itself routed through the
// target's mailbox) rather than reaching into actor fields directly.
//
// Named and shaped after the original runtime's testkit/test_await_assist.py
// (AwaitObservableState/AwaitStateValue/AwaitAssert).
package testkit

import (
	"context"
	"fmt"
	"time"

	"github.com/lguibr/bollywood"
)

const (
	defaultPollInterval = 10 * time.Millisecond
	defaultTimeout      = 2 * time.Second
)

// Options tunes how long and how often Await* helpers poll before giving up.
type Options struct {
	Timeout      time.Duration
	PollInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaultPollInterval
	}
	return o
}

// AwaitObservableState polls p's ObservableState until predicate returns
// true, or times out. It returns the last-seen state and an error if the
// predicate never held.
func AwaitObservableState(p bollywood.Proxy, predicate func(map[string]any) bool, opts Options) (map[string]any, error) {
	opts = opts.withDefaults()
	deadline := time.Now().Add(opts.Timeout)
	var last map[string]any

	for {
		ctx, cancel := context.WithTimeout(context.Background(), opts.PollInterval)
		state, err := bollywood.ObservableState(ctx, p)
		cancel()
		if err == nil {
			last = state
			if predicate(state) {
				return state, nil
			}
		}
		if time.Now().After(deadline) {
			return last, fmt.Errorf("testkit: AwaitObservableState: condition not met within %s", opts.Timeout)
		}
		time.Sleep(opts.PollInterval)
	}
}

// AwaitStateValue polls until key is present in p's ObservableState and
// equal to want, returning the observed value or a timeout error.
func AwaitStateValue(p bollywood.Proxy, key string, want any, opts Options) (any, error) {
	var got any
	state, err := AwaitObservableState(p, func(s map[string]any) bool {
		v, ok := s[key]
		got = v
		return ok && v == want
	}, opts)
	if err != nil {
		return state[key], fmt.Errorf("testkit: AwaitStateValue(%q): %w (last seen %v)", key, err, got)
	}
	return got, nil
}

// AwaitAssert polls condition until it returns true, or times out, without
// going through an actor at all — useful for asserting on test-local
// counters (e.g. a recording DeadLetterListener's count) rather than
// ObservableState.
func AwaitAssert(condition func() bool, opts Options) error {
	opts = opts.withDefaults()
	deadline := time.Now().Add(opts.Timeout)
	for {
		if condition() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("testkit: AwaitAssert: condition not met within %s", opts.Timeout)
		}
		time.Sleep(opts.PollInterval)
	}
}
