package catalog

import (
	"strings"
	"sync"
	"testing"
)

const sample = `Shirt,500,2,Cotton shirt
Mug,120.50,10,Ceramic mug
Laptop,99999.99,1,Thin and light
`

func loadSample(t *testing.T) *Store {
	t.Helper()

	s, err := Load(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func TestLoadAndGet(t *testing.T) {
	s := loadSample(t)

	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}

	p, ok := s.Get(Key("  SHIRT "))
	if !ok {
		t.Fatal("shirt not found")
	}
	if p.Name != "Shirt" || p.Price != 500 || p.Stock() != 2 {
		t.Fatalf("unexpected product: %+v stock=%d", p, p.Stock())
	}

	if _, ok := s.Get("socks"); ok {
		t.Fatal("unknown product found")
	}
}

func TestLockRegistryMatchesProducts(t *testing.T) {
	s := loadSample(t)

	for _, it := range s.Snapshot() {
		if s.LockFor(Key(it.Name)) == nil {
			t.Fatalf("no lock for %q", it.Name)
		}
	}
	if s.LockFor("socks") != nil {
		t.Fatal("lock exists for unknown key")
	}
}

func TestSnapshotKeepsFileOrder(t *testing.T) {
	s := loadSample(t)

	got := s.Snapshot()
	want := []string{"Shirt", "Mug", "Laptop"}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("snapshot[%d] = %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestLoadSkipsShortLines(t *testing.T) {
	src := "bad line\nShirt,500,2,Cotton shirt\n\n"
	s, err := Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	for _, src := range []string{
		"Shirt,abc,2,desc\n",
		"Shirt,500,two,desc\n",
		"Shirt,500,-1,desc\n",
	} {
		if _, err := Load(strings.NewReader(src)); err == nil {
			t.Errorf("Load(%q): want error", src)
		}
	}
}

func TestAdjustUnderLockIsConsistent(t *testing.T) {
	s := loadSample(t)
	key := Key("Mug")
	p, _ := s.Get(key)
	lock := s.LockFor(key)

	const workers = 8
	const rounds = 100

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				lock.Lock()
				p.Adjust(-1)
				p.Adjust(1)
				lock.Unlock()
			}
		}()
	}
	wg.Wait()

	if got := p.Stock(); got != 10 {
		t.Fatalf("stock = %d, want 10", got)
	}
}
