package client

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/tableorder/models"
)

func orders(refs ...string) []models.Order {
	out := make([]models.Order, 0, len(refs))
	for _, r := range refs {
		out = append(out, models.Order{Reference: r, Status: models.OrderOpen})
	}
	return out
}

type result struct {
	orders []models.Order
	err    error
}

func newTestPoller(fetch FetchFunc) (*Poller, chan Snapshot) {
	updates := make(chan Snapshot, 16)
	p := NewPoller(fetch)
	p.OnUpdate = func(s Snapshot) { updates <- s }
	return p, updates
}

func waitUpdate(t *testing.T, updates chan Snapshot) Snapshot {
	t.Helper()
	select {
	case s := <-updates:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no poller update")
		return Snapshot{}
	}
}

func TestPoller_FailuresKeepLastGoodOrders(t *testing.T) {
	results := make(chan result, 8)
	p, updates := newTestPoller(func(ctx context.Context) ([]models.Order, error) {
		r := <-results
		return r.orders, r.err
	})
	ctx := context.Background()

	results <- result{orders: orders("a", "b")}
	require.True(t, p.poll(ctx, false))
	first := waitUpdate(t, updates)
	assert.Len(t, first.Orders, 2)
	assert.False(t, first.LastSuccess.IsZero())
	assert.False(t, first.Stale())

	down := errors.New("connection refused")
	for i := 1; i <= 3; i++ {
		results <- result{err: down}
		require.True(t, p.poll(ctx, false))
		s := waitUpdate(t, updates)
		assert.Equal(t, i, s.ConsecutiveFailures)
		assert.Len(t, s.Orders, 2, "old orders stay on screen")
		assert.Equal(t, first.LastSuccess, s.LastSuccess)
		assert.ErrorIs(t, s.LastError, down)
		assert.Equal(t, i >= DefaultStaleAfter, s.Stale())
	}

	results <- result{orders: orders("c")}
	require.True(t, p.poll(ctx, false))
	s := waitUpdate(t, updates)
	assert.Equal(t, 0, s.ConsecutiveFailures)
	assert.False(t, s.Stale())
	assert.NoError(t, s.LastError)
	require.Len(t, s.Orders, 1)
	assert.Equal(t, "c", s.Orders[0].Reference)
}

func TestPoller_TickSkippedWhileRequestInFlight(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	p, updates := newTestPoller(func(ctx context.Context) ([]models.Order, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return orders("a"), nil
	})
	ctx := context.Background()

	require.True(t, p.poll(ctx, false))
	assert.False(t, p.poll(ctx, false))
	assert.False(t, p.poll(ctx, false))

	close(release)
	waitUpdate(t, updates)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// the next tick goes through once the request is done
	require.True(t, p.poll(ctx, false))
	waitUpdate(t, updates)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestPoller_RefreshSupersedesSlowRequest(t *testing.T) {
	slowStarted := make(chan struct{})
	slowRelease := make(chan struct{})
	var calls int32
	p, updates := newTestPoller(func(ctx context.Context) ([]models.Order, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(slowStarted)
			// ignores cancellation and answers late with old data
			<-slowRelease
			return orders("old"), nil
		}
		return orders("new"), nil
	})
	ctx := context.Background()

	require.True(t, p.poll(ctx, false))
	<-slowStarted
	require.True(t, p.poll(ctx, true))

	s := waitUpdate(t, updates)
	require.Len(t, s.Orders, 1)
	assert.Equal(t, "new", s.Orders[0].Reference)

	close(slowRelease)
	p.wg.Wait()

	select {
	case extra := <-updates:
		t.Fatalf("superseded result delivered: %+v", extra.Orders)
	default:
	}
	require.Len(t, p.Snapshot().Orders, 1)
	assert.Equal(t, "new", p.Snapshot().Orders[0].Reference)
}

func TestPoller_RefreshCancelsInFlightContext(t *testing.T) {
	cancelled := make(chan struct{})
	var calls int32
	p, updates := newTestPoller(func(ctx context.Context) ([]models.Order, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		}
		return orders("fresh"), nil
	})
	ctx := context.Background()

	require.True(t, p.poll(ctx, false))
	require.True(t, p.poll(ctx, true))

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight request was not cancelled")
	}
	s := waitUpdate(t, updates)
	assert.Equal(t, 0, s.ConsecutiveFailures, "cancelled request is not a failure")
	require.Len(t, s.Orders, 1)
	assert.Equal(t, "fresh", s.Orders[0].Reference)
	p.wg.Wait()
}

func TestPoller_StartPollsOnIntervalUntilStopped(t *testing.T) {
	var calls int32
	p, _ := newTestPoller(func(ctx context.Context) ([]models.Order, error) {
		atomic.AddInt32(&calls, 1)
		return orders("a"), nil
	})
	p.OnUpdate = nil
	p.Interval = 10 * time.Millisecond

	p.Start(context.Background())
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 3 }, 2*time.Second, 5*time.Millisecond)
	p.Stop()

	after := atomic.LoadInt32(&calls)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt32(&calls))
	assert.Len(t, p.Snapshot().Orders, 1)
}

func TestPoller_StopDuringRequestIsNotAFailure(t *testing.T) {
	started := make(chan struct{})
	p, updates := newTestPoller(func(ctx context.Context) ([]models.Order, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	p.Interval = time.Hour

	p.Start(context.Background())
	<-started
	p.Stop()

	select {
	case s := <-updates:
		t.Fatalf("cancelled request delivered: failures=%d err=%v", s.ConsecutiveFailures, s.LastError)
	default:
	}
	s := p.Snapshot()
	assert.Equal(t, 0, s.ConsecutiveFailures)
	assert.NoError(t, s.LastError)
}

func TestPoller_TimeoutStillCountsAsFailure(t *testing.T) {
	p, updates := newTestPoller(func(ctx context.Context) ([]models.Order, error) {
		return nil, context.DeadlineExceeded
	})

	require.True(t, p.poll(context.Background(), false))
	s := waitUpdate(t, updates)
	assert.Equal(t, 1, s.ConsecutiveFailures)
	assert.ErrorIs(t, s.LastError, context.DeadlineExceeded)
}
