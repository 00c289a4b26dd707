package persist

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/hifzanazir00781/OnlineShoppingStore/internal/catalog"
)

func sampleItems() []catalog.Item {
	return []catalog.Item{
		{Name: "Shirt", Price: 500, Stock: 2, Description: "Cotton shirt"},
		{Name: "Mug", Price: 120.5, Stock: 10, Description: "Ceramic mug"},
	}
}

func TestFileSinkFlushRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.txt")
	sink := NewFileSink(path)

	if err := sink.Flush(context.Background(), sampleItems()); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	want := "Shirt,500.00,2,Cotton shirt\nMug,120.50,10,Ceramic mug\n"
	if string(raw) != want {
		t.Fatalf("file = %q, want %q", raw, want)
	}

	s, err := catalog.Load(strings.NewReader(string(raw)))
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	p, ok := s.Get("mug")
	if !ok || p.Stock() != 10 || p.Price != 120.5 {
		t.Fatalf("reloaded mug wrong: ok=%v %+v", ok, p)
	}
}

func TestFileSinkOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.txt")
	sink := NewFileSink(path)

	if err := sink.Flush(context.Background(), sampleItems()); err != nil {
		t.Fatalf("first flush: %v", err)
	}
	if err := sink.Flush(context.Background(), sampleItems()[:1]); err != nil {
		t.Fatalf("second flush: %v", err)
	}

	raw, _ := os.ReadFile(path)
	if strings.Contains(string(raw), "Mug") {
		t.Fatalf("second flush did not overwrite: %q", raw)
	}
}

func TestFileSinkConcurrentFlushes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.txt")
	sink := NewFileSink(path)
	items := sampleItems()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sink.Flush(context.Background(), items); err != nil {
				t.Errorf("Flush: %v", err)
			}
		}()
	}
	wg.Wait()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if got := strings.Count(string(raw), "\n"); got != 2 {
		t.Fatalf("interleaved writes, %d lines: %q", got, raw)
	}
}
