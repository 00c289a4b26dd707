// Package checkout implements the reservation/compensation protocol
// around the asynchronous payment step.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/hifzanazir00781/OnlineShoppingStore/internal/catalog"
	"github.com/hifzanazir00781/OnlineShoppingStore/internal/payment"
	"github.com/hifzanazir00781/OnlineShoppingStore/internal/persist"
	"github.com/hifzanazir00781/OnlineShoppingStore/pkg/kit"
)

// orderSeed is where order numbering starts; the first order gets 1001.
const orderSeed = 1000

type Status int

const (
	StatusProcessing Status = iota
	StatusSucceeded
	StatusFailed
)

// Notification reports checkout progress to the originating session:
// Processing exactly once on the caller's goroutine, then Succeeded or
// Failed exactly once on a pool worker goroutine.
type Notification struct {
	OrderID int64
	Status  Status
}

var ErrEmptyCart = errors.New("cart is empty")

// StockError reports the item that failed the phase-1 stock check.
type StockError struct {
	Name      string
	Available int64
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: %d available", e.Name, e.Available)
}

// Coordinator runs checkouts: a synchronous reservation under
// canonically ordered per-product locks, then an asynchronous payment
// whose failure is compensated item by item.
type Coordinator struct {
	store   *catalog.Store
	sink    persist.Sink
	gateway payment.Gateway
	pool    *payment.Pool
	log     *zap.Logger
	metrics *kit.Metrics

	orders atomic.Int64
}

func NewCoordinator(
	store *catalog.Store,
	sink persist.Sink,
	gateway payment.Gateway,
	pool *payment.Pool,
	log *zap.Logger,
	metrics *kit.Metrics,
) *Coordinator {
	c := &Coordinator{
		store:   store,
		sink:    sink,
		gateway: gateway,
		pool:    pool,
		log:     log,
		metrics: metrics,
	}
	c.orders.Store(orderSeed)
	return c
}

// Checkout reserves stock for every item and schedules the payment
// attempt. items maps normalized product keys to quantities; every key
// must exist in the catalog. On success, notify sees Processing before
// Checkout returns, and later exactly one of Succeeded or Failed. On
// error (ErrEmptyCart or *StockError) no state has changed and notify
// is never called.
//
// All locks are acquired in ascending key order. Any two checkouts
// whose carts overlap therefore request the shared locks in the same
// global order, which rules out circular wait.
func (c *Coordinator) Checkout(ctx context.Context, items map[string]int, notify func(Notification)) error {
	if len(items) == 0 {
		c.metrics.Checkouts.WithLabelValues("empty").Inc()
		return ErrEmptyCart
	}

	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	locked := make([]*sync.Mutex, 0, len(keys))
	unlock := func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].Unlock()
		}
	}

	for _, k := range keys {
		lk := c.store.LockFor(k)
		if lk == nil {
			unlock()
			return fmt.Errorf("no such product key %q", k)
		}
		lk.Lock()
		locked = append(locked, lk)
	}

	// Validate every item while all locks are held.
	for _, k := range keys {
		p, ok := c.store.Get(k)
		if !ok {
			unlock()
			return fmt.Errorf("no such product key %q", k)
		}
		if p.Stock() < int64(items[k]) {
			avail := p.Stock()
			unlock()
			c.metrics.Checkouts.WithLabelValues("rejected").Inc()
			return &StockError{Name: p.Name, Available: avail}
		}
	}

	// Reserve: decrement everything. The snapshot of what was taken is
	// what compensation restores, independent of later cart changes.
	reserved := make(map[string]int64, len(keys))
	for _, k := range keys {
		p, _ := c.store.Get(k)
		want := int64(items[k])
		p.Adjust(-want)
		reserved[k] = want
	}

	// Flushed while the locks are still held so no other mutation can
	// interleave with this snapshot.
	c.flush(ctx)

	unlock()

	orderID := c.orders.Add(1)
	c.metrics.Checkouts.WithLabelValues("reserved").Inc()
	c.log.Info("order processing", zap.Int64("order_id", orderID), zap.Int("items", len(reserved)))

	// Processing goes out before the pool job exists so an instant
	// outcome can never overtake it.
	notify(Notification{OrderID: orderID, Status: StatusProcessing})

	c.pool.Submit(func() { c.settle(orderID, reserved, notify) })
	return nil
}

// settle runs on a pool worker: one payment attempt, then either the
// success notification or compensation plus the failure notification.
func (c *Coordinator) settle(orderID int64, reserved map[string]int64, notify func(Notification)) {
	start := time.Now()
	ok := c.gateway.Attempt(context.Background())
	c.metrics.PaymentSeconds.Observe(time.Since(start).Seconds())

	if ok {
		c.metrics.Payments.WithLabelValues("success").Inc()
		c.log.Info("order succeeded", zap.Int64("order_id", orderID))
		notify(Notification{OrderID: orderID, Status: StatusSucceeded})
		return
	}

	// Each compensation touches exactly one lock at a time; increments
	// commute, so no global ordering is needed here.
	for k, qty := range reserved {
		lk := c.store.LockFor(k)
		lk.Lock()
		if p, found := c.store.Get(k); found {
			p.Adjust(qty)
		}
		lk.Unlock()
	}
	c.flush(context.Background())

	c.metrics.Payments.WithLabelValues("failed").Inc()
	c.log.Info("order failed, stock restored", zap.Int64("order_id", orderID))
	notify(Notification{OrderID: orderID, Status: StatusFailed})
}

// flush mirrors the catalog to the sink. Failures are logged and never
// retried; the in-memory catalog stays the source of truth.
func (c *Coordinator) flush(ctx context.Context) {
	if err := c.sink.Flush(ctx, c.store.Snapshot()); err != nil {
		c.metrics.Flushes.WithLabelValues(c.sink.Name(), "error").Inc()
		c.log.Error("catalog flush failed", zap.String("sink", c.sink.Name()), zap.Error(err))
		return
	}
	c.metrics.Flushes.WithLabelValues(c.sink.Name(), "ok").Inc()
}
