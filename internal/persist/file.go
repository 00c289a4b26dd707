package persist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/hifzanazir00781/OnlineShoppingStore/internal/catalog"
)

// FileSink rewrites the whole catalog file on every flush, via a temp
// file and rename so a crash mid-write never truncates the catalog.
type FileSink struct {
	mu   sync.Mutex
	path string
}

func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Name() string { return "file" }

func (s *FileSink) Ping(ctx context.Context) error {
	dir := filepath.Dir(s.path)
	if _, err := os.Stat(dir); err != nil {
		return err
	}
	return nil
}

func (s *FileSink) Flush(ctx context.Context, items []catalog.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "%s,%s,%d,%s\n",
			it.Name,
			strconv.FormatFloat(it.Price, 'f', 2, 64),
			it.Stock,
			it.Description,
		)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".products-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, s.path)
}
