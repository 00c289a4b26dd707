// Package protocol parses inbound command lines into typed commands
// and formats every server-to-client reply line.
package protocol

import (
	"errors"
	"strconv"
	"strings"
)

type Kind int

const (
	KindAdd Kind = iota
	KindViewCart
	KindCheckout
	KindExit
)

// Command is one parsed client line. Name and Qty are set only for
// KindAdd; Name keeps the client's spelling so error replies can echo
// it back.
type Command struct {
	Kind Kind
	Name string
	Qty  int
}

var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrBadAddFormat    = errors.New("invalid ADD format")
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// Parse turns a trimmed, non-empty line into a Command. Quantity is
// validated as an integer here; positivity and product existence are
// the session's job so error precedence matches the wire contract.
func Parse(line string) (Command, error) {
	switch {
	case strings.EqualFold(line, "VIEW_CART"):
		return Command{Kind: KindViewCart}, nil
	case strings.EqualFold(line, "CHECKOUT"):
		return Command{Kind: KindCheckout}, nil
	case strings.EqualFold(line, "EXIT"):
		return Command{Kind: KindExit}, nil
	case strings.HasPrefix(line, "ADD:"):
		return parseAdd(line)
	}
	return Command{}, ErrUnknownCommand
}

func parseAdd(line string) (Command, error) {
	parts := strings.SplitN(line, ":", 3)
	if len(parts) < 3 {
		return Command{}, ErrBadAddFormat
	}

	name := strings.TrimSpace(parts[1])
	qty, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return Command{}, ErrInvalidQuantity
	}

	return Command{Kind: KindAdd, Name: name, Qty: qty}, nil
}
