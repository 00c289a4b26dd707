package integration

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/hifzanazir00781/OnlineShoppingStore/internal/catalog"
	"github.com/hifzanazir00781/OnlineShoppingStore/internal/checkout"
	"github.com/hifzanazir00781/OnlineShoppingStore/internal/payment"
	"github.com/hifzanazir00781/OnlineShoppingStore/internal/persist"
	"github.com/hifzanazir00781/OnlineShoppingStore/internal/server"
	"github.com/hifzanazir00781/OnlineShoppingStore/pkg/kit"
)

type client struct {
	conn net.Conn
	r    *bufio.Reader
}

func startSystem(t *testing.T, catalogSrc string) (*catalog.Store, string, string) {
	t.Helper()

	store, err := catalog.Load(strings.NewReader(catalogSrc))
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}

	path := filepath.Join(t.TempDir(), "products.txt")
	sink := persist.NewFileSink(path)
	pool := payment.NewPool(4, 16, zap.NewNop())
	t.Cleanup(pool.Stop)

	metrics := kit.NewMetrics(prometheus.NewRegistry())
	gw := payment.NewSimulator(5*time.Millisecond, 15*time.Millisecond, 1.0)
	coord := checkout.NewCoordinator(store, sink, gw, pool, zap.NewNop(), metrics)

	srv := server.New("127.0.0.1:0", store, coord, zap.NewNop(), metrics, nil)
	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = srv.Run(ctx) }()

	return store, srv.Addr(), path
}

func connect(t *testing.T, addr string) *client {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetDeadline(time.Now().Add(15 * time.Second))

	c := &client{conn: conn, r: bufio.NewReader(conn)}
	for {
		if c.read(t) == "END" {
			break
		}
	}
	c.read(t) // usage INFO
	return c
}

func (c *client) read(t *testing.T) string {
	t.Helper()

	line, err := c.r.ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return strings.TrimRight(line, "\n")
}

func (c *client) send(t *testing.T, line string) {
	t.Helper()

	if _, err := fmt.Fprintf(c.conn, "%s\n", line); err != nil {
		t.Fatalf("send %q: %v", line, err)
	}
}

// Two sessions race for the last two shirts. The advisory ADD check
// lets both carts fill, but phase 1 admits exactly one reservation.
func TestConcurrentCheckoutSingleWinner(t *testing.T) {
	store, addr, path := startSystem(t, "Shirt,500,2,Cotton shirt\n")

	a := connect(t, addr)
	b := connect(t, addr)

	for _, c := range []*client{a, b} {
		c.send(t, "ADD:shirt:2")
		if got := c.read(t); got != "OK|Added 2 x Shirt to cart" {
			t.Fatalf("ADD reply = %q", got)
		}
	}

	replies := make([]string, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, c := range []*client{a, b} {
		wg.Add(1)
		go func(i int, c *client) {
			defer wg.Done()
			if _, err := fmt.Fprintf(c.conn, "CHECKOUT\n"); err != nil {
				errs[i] = err
				return
			}
			line, err := c.r.ReadString('\n')
			if err != nil {
				errs[i] = err
				return
			}
			replies[i] = strings.TrimRight(line, "\n")
		}(i, c)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("client %d checkout: %v", i, err)
		}
	}

	var winner *client
	var processing, rejected int
	for i, reply := range replies {
		switch {
		case strings.HasPrefix(reply, "PAYMENT|PROCESSING|"):
			processing++
			winner = []*client{a, b}[i]
		case strings.HasPrefix(reply, "ERROR|Insufficient stock for Shirt. Available: "):
			rejected++
		default:
			t.Fatalf("unexpected checkout reply %q", reply)
		}
	}
	if processing != 1 || rejected != 1 {
		t.Fatalf("processing=%d rejected=%d, want exactly one of each (replies: %v)", processing, rejected, replies)
	}

	if got := winner.read(t); !strings.HasPrefix(got, "PAYMENT|SUCCESS|") {
		t.Fatalf("winner outcome = %q", got)
	}

	p, _ := store.Get("shirt")
	if p.Stock() != 0 {
		t.Fatalf("final stock = %d, want 0", p.Stock())
	}

	// The persisted mirror saw the reservation too.
	reloaded, err := catalog.LoadFile(path)
	if err != nil {
		t.Fatalf("reload persisted catalog: %v", err)
	}
	rp, ok := reloaded.Get("shirt")
	if !ok || rp.Stock() != 0 {
		t.Fatalf("persisted stock = %v, want 0", rp)
	}
}
