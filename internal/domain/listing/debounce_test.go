package listing

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_CoalescesBurstIntoOneCall(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	var mu sync.Mutex
	last := 0

	for i := 1; i <= 10; i++ {
		i := i
		d.Trigger(func() {
			calls.Add(1)
			mu.Lock()
			last = i
			mu.Unlock()
		})
	}

	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, int32(1), calls.Load(), "burst must collapse to one invocation")
	mu.Lock()
	assert.Equal(t, 10, last, "the latest call wins")
	mu.Unlock()
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestDebouncer_ZeroWindowRunsSynchronously(t *testing.T) {
	d := NewDebouncer(0)

	ran := false
	d.Trigger(func() { ran = true })

	assert.True(t, ran)
}

func TestDebouncer_SeparateBurstsFireSeparately(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	time.Sleep(50 * time.Millisecond)
	d.Trigger(func() { calls.Add(1) })
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, int32(2), calls.Load())
}
