package livewire

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/palomar-io/livewire/domain/entities"
)

func TestRegistryEmitsInSubscriptionOrder(t *testing.T) {
	var r registry[int]
	var order []string
	r.subscribe(func(v int) { order = append(order, "a") })
	r.subscribe(func(v int) { order = append(order, "b") })
	r.subscribe(func(v int) { order = append(order, "c") })

	r.emit(1)
	require.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRegistryUnsubscribe(t *testing.T) {
	var r registry[int]
	var got []int
	cancelA := r.subscribe(func(v int) { got = append(got, v) })
	r.subscribe(func(v int) { got = append(got, v*10) })

	r.emit(1)
	cancelA()
	cancelA() // second call is harmless
	r.emit(2)

	require.Equal(t, []int{1, 10, 20}, got)
}

func TestRegistryReset(t *testing.T) {
	var r registry[int]
	var fired int
	r.subscribe(func(int) { fired++ })

	r.reset()
	r.emit(1)
	require.Zero(t, fired)
}

func TestBusSubscriptionsAreIndependent(t *testing.T) {
	b := newBus()
	var opens, closes int
	b.OnOpen(func() { opens++ })
	b.OnClose(func(entities.CloseInfo) { closes++ })

	b.open.emit(struct{}{})
	require.Equal(t, 1, opens)
	require.Zero(t, closes)
}
