package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/hifzanazir00781/OnlineShoppingStore/internal/catalog"
	"github.com/hifzanazir00781/OnlineShoppingStore/internal/checkout"
	"github.com/hifzanazir00781/OnlineShoppingStore/internal/protocol"
	"github.com/hifzanazir00781/OnlineShoppingStore/pkg/kit"
)

const outboxDepth = 32

// session drives one connection: greeting, then the command loop until
// EXIT or an I/O failure. The cart is private to the session; payment
// outcomes arrive from pool workers through the outbox.
type session struct {
	id      string
	conn    net.Conn
	store   *catalog.Store
	coord   *checkout.Coordinator
	log     *zap.Logger
	metrics *kit.Metrics

	cart *cart
	out  *outbox
}

func newSession(id string, conn net.Conn, store *catalog.Store, coord *checkout.Coordinator, log *zap.Logger, metrics *kit.Metrics) *session {
	return &session{
		id:      id,
		conn:    conn,
		store:   store,
		coord:   coord,
		log:     log.With(zap.String("session_id", id), zap.String("remote", conn.RemoteAddr().String())),
		metrics: metrics,
		cart:    newCart(),
		out:     newOutbox(outboxDepth),
	}
}

func (s *session) run(ctx context.Context) {
	s.metrics.SessionsActive.Inc()
	defer s.metrics.SessionsActive.Dec()

	s.log.Info("client connected")

	writerDone := make(chan struct{})
	go s.writer(writerDone)

	defer func() {
		s.out.close()
		<-writerDone
		s.conn.Close()
		s.log.Info("client disconnected")
	}()

	s.greet()

	sc := bufio.NewScanner(s.conn)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if !s.handle(ctx, line) {
			return
		}
	}
}

// writer is the only goroutine that touches the connection's write
// side.
func (s *session) writer(done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-s.out.done:
			// Drain whatever was queued before termination.
			for {
				select {
				case line := <-s.out.ch:
					if _, err := fmt.Fprintf(s.conn, "%s\n", line); err != nil {
						return
					}
				default:
					return
				}
			}
		case line := <-s.out.ch:
			if _, err := fmt.Fprintf(s.conn, "%s\n", line); err != nil {
				s.out.close()
				return
			}
		}
	}
}

// greet sends the catalog listing, the END marker, and the usage hint.
func (s *session) greet() {
	for _, it := range s.store.Snapshot() {
		s.out.send(protocol.ProductLine(it.Name, it.Price, it.Stock, it.Description))
	}
	s.out.send(protocol.End)
	s.out.send(protocol.Info(protocol.Usage))
}

// handle processes one command line. It returns false when the session
// should terminate.
func (s *session) handle(ctx context.Context, line string) bool {
	cmd, err := protocol.Parse(line)
	if err != nil {
		s.metrics.Commands.WithLabelValues("invalid", "error").Inc()
		switch {
		case errors.Is(err, protocol.ErrBadAddFormat):
			s.out.send(protocol.Errorf("Invalid ADD format. Use ADD:name:qty"))
		case errors.Is(err, protocol.ErrInvalidQuantity):
			s.out.send(protocol.Errorf("Invalid quantity"))
		default:
			s.out.send(protocol.Errorf("Unknown command"))
		}
		return true
	}

	switch cmd.Kind {
	case protocol.KindAdd:
		s.handleAdd(cmd)
	case protocol.KindViewCart:
		s.metrics.Commands.WithLabelValues("view_cart", "ok").Inc()
		s.sendCart()
	case protocol.KindCheckout:
		s.handleCheckout(ctx)
	case protocol.KindExit:
		s.metrics.Commands.WithLabelValues("exit", "ok").Inc()
		s.out.send(protocol.Info("Goodbye"))
		return false
	}
	return true
}

// handleAdd checks availability under the product's lock but reserves
// nothing: the check is advisory and a later checkout re-validates.
func (s *session) handleAdd(cmd protocol.Command) {
	key := catalog.Key(cmd.Name)

	p, ok := s.store.Get(key)
	if !ok {
		s.metrics.Commands.WithLabelValues("add", "error").Inc()
		s.out.send(protocol.Errorf("Product not found: %s", cmd.Name))
		return
	}
	if cmd.Qty <= 0 {
		s.metrics.Commands.WithLabelValues("add", "error").Inc()
		s.out.send(protocol.Errorf("Quantity must be >=1"))
		return
	}

	lk := s.store.LockFor(key)
	lk.Lock()
	if p.Stock() < int64(cmd.Qty) {
		avail := p.Stock()
		lk.Unlock()
		s.metrics.Commands.WithLabelValues("add", "error").Inc()
		s.out.send(protocol.Errorf("Only %d left for %s", avail, p.Name))
		return
	}
	s.cart.add(key, cmd.Qty)
	lk.Unlock()

	s.metrics.Commands.WithLabelValues("add", "ok").Inc()
	s.out.send(protocol.OK(fmt.Sprintf("Added %d x %s to cart", cmd.Qty, p.Name)))
}

func (s *session) sendCart() {
	items := s.cart.snapshot()
	if len(items) == 0 {
		s.out.send(protocol.CartEmpty())
		return
	}

	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]protocol.CartEntry, 0, len(keys))
	var total float64
	for _, k := range keys {
		p, ok := s.store.Get(k)
		if !ok {
			continue
		}
		qty := items[k]
		entries = append(entries, protocol.CartEntry{Name: p.Name, Qty: qty})
		total += p.Price * float64(qty)
	}

	s.out.send(protocol.Cart(entries, total))
}

func (s *session) handleCheckout(ctx context.Context) {
	err := s.coord.Checkout(ctx, s.cart.snapshot(), s.notify)
	if err != nil {
		s.metrics.Commands.WithLabelValues("checkout", "error").Inc()

		var se *checkout.StockError
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			s.out.send(protocol.Errorf("Cart is empty"))
		case errors.As(err, &se):
			s.out.send(protocol.Errorf("Insufficient stock for %s. Available: %d", se.Name, se.Available))
		default:
			s.log.Error("checkout failed", zap.Error(err))
			s.out.send(protocol.Errorf("Checkout failed"))
		}
		return
	}

	s.metrics.Commands.WithLabelValues("checkout", "ok").Inc()
}

// notify receives checkout progress: Processing on this session's own
// goroutine, the final outcome on a payment pool worker. The cart
// survives a failed payment on purpose: the client may CHECKOUT again,
// re-running the reservation against current stock.
func (s *session) notify(n checkout.Notification) {
	switch n.Status {
	case checkout.StatusProcessing:
		s.out.send(protocol.Payment(protocol.StatusProcessing, n.OrderID))
	case checkout.StatusSucceeded:
		s.cart.clear()
		s.out.send(protocol.Payment(protocol.StatusSuccess, n.OrderID))
	case checkout.StatusFailed:
		s.out.send(protocol.Payment(protocol.StatusFailed, n.OrderID))
	}
}
