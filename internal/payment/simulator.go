// Package payment provides the simulated payment gateway and the
// bounded worker pool that runs attempts off the session goroutines.
package payment

import (
	"context"
	"math/rand/v2"
	"time"
)

// Gateway is the external payment capability: an attempt resolves to
// success or failure only after some delay.
type Gateway interface {
	Attempt(ctx context.Context) bool
}

// Simulator implements Gateway with a uniformly random delay in
// [minDelay, maxDelay) and a fixed success probability.
type Simulator struct {
	minDelay    time.Duration
	maxDelay    time.Duration
	successRate float64
}

func NewSimulator(minDelay, maxDelay time.Duration, successRate float64) *Simulator {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Simulator{minDelay: minDelay, maxDelay: maxDelay, successRate: successRate}
}

func (s *Simulator) Attempt(ctx context.Context) bool {
	delay := s.minDelay
	if span := s.maxDelay - s.minDelay; span > 0 {
		delay += rand.N(span)
	}

	t := time.NewTimer(delay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
	}

	return rand.Float64() < s.successRate
}
