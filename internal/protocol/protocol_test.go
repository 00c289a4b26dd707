package protocol

import (
	"errors"
	"testing"
)

func TestParseCommands(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"VIEW_CART", Command{Kind: KindViewCart}},
		{"view_cart", Command{Kind: KindViewCart}},
		{"CHECKOUT", Command{Kind: KindCheckout}},
		{"checkout", Command{Kind: KindCheckout}},
		{"EXIT", Command{Kind: KindExit}},
		{"ADD:Shirt:2", Command{Kind: KindAdd, Name: "Shirt", Qty: 2}},
		{"ADD: shirt : 3", Command{Kind: KindAdd, Name: "shirt", Qty: 3}},
		{"ADD:Shirt:-1", Command{Kind: KindAdd, Name: "Shirt", Qty: -1}},
	}

	for _, tt := range tests {
		got, err := Parse(tt.line)
		if err != nil {
			t.Errorf("Parse(%q): %v", tt.line, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.line, got, tt.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		line string
		want error
	}{
		{"HELP", ErrUnknownCommand},
		{"add:shirt:2", ErrUnknownCommand},
		{"ADD:shirt", ErrBadAddFormat},
		{"ADD:shirt:abc", ErrInvalidQuantity},
		{"ADD:shirt:2.5", ErrInvalidQuantity},
	}

	for _, tt := range tests {
		if _, err := Parse(tt.line); !errors.Is(err, tt.want) {
			t.Errorf("Parse(%q) err = %v, want %v", tt.line, err, tt.want)
		}
	}
}

func TestReplyFormats(t *testing.T) {
	if got := ProductLine("Shirt", 500, 2, "Cotton shirt"); got != "PRODUCT|Shirt|500.00|2|Cotton shirt" {
		t.Errorf("ProductLine = %q", got)
	}
	if got := CartEmpty(); got != "CART|EMPTY" {
		t.Errorf("CartEmpty = %q", got)
	}
	got := Cart([]CartEntry{{Name: "Shirt", Qty: 2}, {Name: "Mug", Qty: 1}}, 1120.5)
	if got != "CART|Shirt x2 | Mug x1 | TOTAL:1120.50" {
		t.Errorf("Cart = %q", got)
	}
	if got := Payment(StatusProcessing, 1001); got != "PAYMENT|PROCESSING|1001" {
		t.Errorf("Payment = %q", got)
	}
	if got := Errorf("Only %d left for %s", 2, "Shirt"); got != "ERROR|Only 2 left for Shirt" {
		t.Errorf("Errorf = %q", got)
	}
}
