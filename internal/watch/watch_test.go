package watch

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesBurstsIntoOneCall(t *testing.T) {
	var calls int32
	d := newDebouncer(30*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })

	for i := 0; i < 5; i++ {
		d.trigger()
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(80 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected exactly 1 callback after a burst, got %d", got)
	}
}

func TestDebouncer_StopPreventsCallback(t *testing.T) {
	var calls int32
	d := newDebouncer(20*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })
	d.trigger()
	d.stop()
	time.Sleep(40 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("expected no callback after stop, got %d", got)
	}
}
