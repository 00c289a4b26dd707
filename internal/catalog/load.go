package catalog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Load populates a Store from a catalog source, one record per line in
// the form "name,price,stock,description". Lines with fewer than four
// fields are skipped; fields beyond the third belong to the
// description.
func Load(r io.Reader) (*Store, error) {
	s := newStore()

	sc := bufio.NewScanner(r)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, ",", 4)
		if len(parts) < 4 {
			continue
		}

		name := strings.TrimSpace(parts[0])
		price, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("catalog line %d: bad price %q: %w", lineno, parts[1], err)
		}
		stock, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("catalog line %d: bad stock %q: %w", lineno, parts[2], err)
		}
		if stock < 0 {
			return nil, fmt.Errorf("catalog line %d: negative stock for %q", lineno, name)
		}

		p := &Product{
			Name:        name,
			Price:       price,
			Description: strings.TrimSpace(parts[3]),
		}
		p.stock.Store(stock)
		s.add(p)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return s, nil
}

// LoadFile reads the catalog file at path.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(f)
}
