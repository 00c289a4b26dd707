// Package server accepts TCP connections and runs one session per
// client over the line protocol.
package server

import (
	"context"
	"net"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hifzanazir00781/OnlineShoppingStore/internal/catalog"
	"github.com/hifzanazir00781/OnlineShoppingStore/internal/checkout"
	"github.com/hifzanazir00781/OnlineShoppingStore/pkg/kit"
)

type Server struct {
	addr    string
	store   *catalog.Store
	coord   *checkout.Coordinator
	log     *zap.Logger
	metrics *kit.Metrics
	limiter *kit.IPRateLimiter

	ln net.Listener
	wg sync.WaitGroup

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

func New(addr string, store *catalog.Store, coord *checkout.Coordinator, log *zap.Logger, metrics *kit.Metrics, limiter *kit.IPRateLimiter) *Server {
	return &Server{
		addr:    addr,
		store:   store,
		coord:   coord,
		log:     log,
		metrics: metrics,
		limiter: limiter,
		conns:   make(map[net.Conn]struct{}),
	}
}

// Listen binds the listener so Addr is known before Run is called.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.ln = ln
	return nil
}

// Addr returns the bound listen address. Valid only after Listen.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Run accepts connections until ctx is cancelled, then closes the
// listener and every open connection and waits for the sessions to
// finish.
func (s *Server) Run(ctx context.Context) error {
	if s.ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	s.log.Info("store server listening", zap.String("addr", s.Addr()))

	go func() {
		<-ctx.Done()
		s.ln.Close()
		s.closeConns()
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				s.wg.Wait()
				return nil
			default:
				s.closeConns()
				s.wg.Wait()
				return err
			}
		}

		if s.limiter != nil && !s.limiter.Allow(remoteIP(conn)) {
			s.log.Warn("connection rate limited", zap.String("remote", conn.RemoteAddr().String()))
			conn.Close()
			continue
		}

		s.track(conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)

			sess := newSession(uuid.NewString(), conn, s.store, s.coord, s.log, s.metrics)
			sess.run(ctx)
		}()
	}
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
}

func remoteIP(conn net.Conn) string {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return conn.RemoteAddr().String()
	}
	return host
}
