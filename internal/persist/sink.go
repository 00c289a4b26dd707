// Package persist mirrors the in-memory catalog to durable storage.
// The mirror is best effort: a failed flush is logged by the caller and
// never rolls back the mutation that triggered it.
package persist

import (
	"context"

	"github.com/hifzanazir00781/OnlineShoppingStore/internal/catalog"
)

// Sink overwrites durable storage with a full catalog snapshot.
// Implementations must serialize concurrent flushes so writes never
// interleave.
type Sink interface {
	Flush(ctx context.Context, items []catalog.Item) error
	Ping(ctx context.Context) error
	Name() string
}
