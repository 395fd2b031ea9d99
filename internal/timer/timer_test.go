package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

func TestArmFiresAfterDelay(t *testing.T) {
	mock := clock.NewMock()
	tm := New(mock)

	var fired atomic.Int32
	tm.Arm(100*time.Millisecond, func() { fired.Add(1) })
	require.True(t, tm.Armed())

	mock.Add(99 * time.Millisecond)
	require.Equal(t, int32(0), fired.Load())

	mock.Add(2 * time.Millisecond)
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.False(t, tm.Armed())
}

func TestArmReplacesPendingTimer(t *testing.T) {
	mock := clock.NewMock()
	tm := New(mock)

	var first, second atomic.Int32
	tm.Arm(50*time.Millisecond, func() { first.Add(1) })
	tm.Arm(50*time.Millisecond, func() { second.Add(1) })

	mock.Add(200 * time.Millisecond)
	require.Eventually(t, func() bool { return second.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, int32(0), first.Load(), "replaced timer must never fire")
}

func TestStopPreventsFire(t *testing.T) {
	mock := clock.NewMock()
	tm := New(mock)

	var fired atomic.Int32
	tm.Arm(50*time.Millisecond, func() { fired.Add(1) })
	require.True(t, tm.Stop())
	require.False(t, tm.Armed())

	mock.Add(200 * time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, int32(0), fired.Load())
}

func TestStopWithoutPending(t *testing.T) {
	tm := New(clock.NewMock())
	require.False(t, tm.Stop())
}
