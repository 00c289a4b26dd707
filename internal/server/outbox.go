package server

import "sync"

// outbox funnels every reply line through one writer goroutine. After
// the session terminates, sends report false and the line is dropped,
// so a payment outcome with no live destination goes nowhere.
type outbox struct {
	ch   chan string
	done chan struct{}
	once sync.Once
}

func newOutbox(buf int) *outbox {
	return &outbox{
		ch:   make(chan string, buf),
		done: make(chan struct{}),
	}
}

func (o *outbox) send(line string) bool {
	select {
	case <-o.done:
		return false
	default:
	}

	select {
	case o.ch <- line:
		return true
	case <-o.done:
		return false
	}
}

func (o *outbox) close() {
	o.once.Do(func() { close(o.done) })
}
