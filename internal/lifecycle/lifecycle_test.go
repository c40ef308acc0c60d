package lifecycle_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightwaveos/core/internal/lifecycle"
	"github.com/lightwaveos/core/internal/logx"
)

type countingStopper struct {
	stopped atomic.Bool
	order   *[]int
	id      int
}

func (s *countingStopper) Stop() {
	s.stopped.Store(true)
	*s.order = append(*s.order, s.id)
}

func TestShutdownStopsInReverseOrder(t *testing.T) {
	orc := lifecycle.New(logx.Discard())

	var order []int

	a := &countingStopper{id: 1, order: &order} //nolint:exhaustruct
	b := &countingStopper{id: 2, order: &order} //nolint:exhaustruct

	orc.Register(a)
	orc.Register(b)

	orc.Shutdown()

	require.Len(t, order, 2)
	assert.Equal(t, 2, order[0])
	assert.Equal(t, 1, order[1])
}

func TestShutdownIsIdempotent(t *testing.T) {
	orc := lifecycle.New(logx.Discard())

	var order []int

	a := &countingStopper{id: 1, order: &order} //nolint:exhaustruct
	orc.Register(a)

	orc.Shutdown()
	orc.Shutdown()

	assert.Len(t, order, 1)
}

func TestDoneClosesOnShutdown(t *testing.T) {
	orc := lifecycle.New(logx.Discard())

	select {
	case <-orc.Done():
		t.Fatal("Done closed before Shutdown")
	default:
	}

	orc.Shutdown()

	select {
	case <-orc.Done():
	default:
		t.Fatal("Done not closed after Shutdown")
	}
}

func TestWaitForSignalTriggersShutdown(t *testing.T) {
	orc := lifecycle.New(logx.Discard())

	var order []int
	orc.Register(&countingStopper{id: 1, order: &order}) //nolint:exhaustruct

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})

	go func() {
		orc.WaitForSignal(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitForSignal did not return after cancel")
	}

	assert.Len(t, order, 1)
}
