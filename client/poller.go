package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yeremiapane/tableorder/models"
)

const (
	DefaultPollInterval = 10 * time.Second
	DefaultStaleAfter   = 3
)

// FetchFunc performs one feed request.
type FetchFunc func(ctx context.Context) ([]models.Order, error)

// Snapshot is what the waiter's screen shows. A failed poll keeps the last
// good Orders and only bumps ConsecutiveFailures.
type Snapshot struct {
	Orders              []models.Order
	LastSuccess         time.Time
	LastError           error
	ConsecutiveFailures int
	staleAfter          int
}

// Stale reports whether enough polls in a row have failed that the orders
// shown can no longer be trusted.
func (s Snapshot) Stale() bool {
	return s.staleAfter > 0 && s.ConsecutiveFailures >= s.staleAfter
}

// Poller refreshes a waiter's order feed on a fixed interval. At most one
// request is in flight: a tick that finds one running is skipped, and
// Refresh cancels the running one and starts over. Each request carries a
// generation number and only the latest generation may update the snapshot,
// so a slow answer never overwrites a newer one.
type Poller struct {
	Fetch      FetchFunc
	Interval   time.Duration
	StaleAfter int
	// OnUpdate is called after every applied poll, in generation order.
	OnUpdate func(Snapshot)

	now func() time.Time

	mu         sync.Mutex
	snap       Snapshot
	generation uint64
	inflight   context.CancelFunc

	notifyMu  sync.Mutex
	delivered uint64

	refresh chan struct{}
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewPoller(fetch FetchFunc) *Poller {
	return &Poller{
		Fetch:      fetch,
		Interval:   DefaultPollInterval,
		StaleAfter: DefaultStaleAfter,
		now:        time.Now,
		refresh:    make(chan struct{}, 1),
	}
}

// Start polls once immediately and then every Interval until Stop or ctx
// is done.
func (p *Poller) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.loop(ctx)
	}()
}

// Stop cancels any request in flight and waits for the poller to exit.
func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

// Refresh asks for an immediate poll, superseding one in flight.
func (p *Poller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Poller) loop(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.poll(ctx, false)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx, false)
		case <-p.refresh:
			p.poll(ctx, true)
		}
	}
}

// poll starts a request unless one is running. With supersede set, the
// running request is cancelled and its result will be discarded.
func (p *Poller) poll(ctx context.Context, supersede bool) bool {
	p.mu.Lock()
	if p.inflight != nil {
		if !supersede {
			p.mu.Unlock()
			return false
		}
		p.inflight()
	}
	p.generation++
	gen := p.generation
	reqCtx, cancel := context.WithCancel(ctx)
	p.inflight = cancel
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer cancel()
		orders, err := p.Fetch(reqCtx)
		if reqCtx.Err() != nil && errors.Is(err, context.Canceled) {
			p.abandon(gen)
			return
		}
		p.apply(gen, orders, err)
	}()
	return true
}

// abandon clears the in-flight slot of a request cancelled by Stop or
// Refresh without touching the snapshot.
func (p *Poller) abandon(gen uint64) {
	p.mu.Lock()
	if gen == p.generation {
		p.inflight = nil
	}
	p.mu.Unlock()
}

func (p *Poller) apply(gen uint64, orders []models.Order, err error) {
	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		return
	}
	p.inflight = nil
	if err != nil {
		p.snap.ConsecutiveFailures++
		p.snap.LastError = err
	} else {
		p.snap.Orders = orders
		p.snap.LastSuccess = p.now()
		p.snap.LastError = nil
		p.snap.ConsecutiveFailures = 0
	}
	snap := p.snapshotLocked()
	p.mu.Unlock()

	if p.OnUpdate == nil {
		return
	}
	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()
	if gen <= p.delivered {
		return
	}
	p.delivered = gen
	p.OnUpdate(snap)
}

func (p *Poller) snapshotLocked() Snapshot {
	s := p.snap
	s.Orders = append([]models.Order(nil), p.snap.Orders...)
	s.staleAfter = p.StaleAfter
	return s
}
