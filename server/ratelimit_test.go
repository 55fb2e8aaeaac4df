package server

import (
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func TestRateLimiter_TryConsume(t *testing.T) {
	tests := map[string]struct {
		interval time.Duration
		calls    []time.Duration
		exp      []bool
	}{
		"chat scenario": {
			interval: time.Second,
			calls:    []time.Duration{0, 500 * time.Millisecond, 1001 * time.Millisecond},
			exp:      []bool{true, false, true},
		},
		"rejection does not reset window": {
			interval: time.Second,
			calls:    []time.Duration{0, 999 * time.Millisecond, time.Second},
			exp:      []bool{true, false, true},
		},
		"zero interval always accepts": {
			interval: 0,
			calls:    []time.Duration{0, 0, 0},
			exp:      []bool{true, true, true},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			l := NewRateLimiter(tt.interval)
			for i, offset := range tt.calls {
				testutil.AssertEqual(t, "call result", l.TryConsume("a", t0.Add(offset)), tt.exp[i])
			}
		})
	}
}

func TestRateLimiter_IndependentSessionsAndChannels(t *testing.T) {
	move := NewRateLimiter(60 * time.Millisecond)
	chat := NewRateLimiter(time.Second)

	testutil.AssertEqual(t, "chat a", chat.TryConsume("a", t0), true)
	testutil.AssertEqual(t, "chat a again", chat.TryConsume("a", t0.Add(100*time.Millisecond)), false)
	testutil.AssertEqual(t, "chat b", chat.TryConsume("b", t0.Add(100*time.Millisecond)), true)
	testutil.AssertEqual(t, "move a", move.TryConsume("a", t0.Add(100*time.Millisecond)), true)
}

func TestRateLimiter_Forget(t *testing.T) {
	l := NewRateLimiter(time.Second)
	l.TryConsume("a", t0)
	l.Forget("a")
	testutil.AssertEqual(t, "after forget", l.TryConsume("a", t0.Add(time.Millisecond)), true)
}
