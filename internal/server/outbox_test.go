package server

import "testing"

func TestOutboxSendAfterClose(t *testing.T) {
	o := newOutbox(4)
	if !o.send("a") {
		t.Fatal("send on open outbox reported dropped")
	}
	o.close()
	if o.send("b") {
		t.Fatal("send after close was accepted")
	}
}

func TestOutboxCloseIdempotent(t *testing.T) {
	o := newOutbox(1)
	o.close()
	o.close()
}

func TestOutboxFullBufferSendUnblocksOnClose(t *testing.T) {
	o := newOutbox(1)
	o.send("a")

	accepted := make(chan bool)
	go func() { accepted <- o.send("b") }()

	o.close()
	if <-accepted {
		t.Fatal("send on a full closed outbox was accepted")
	}
}
