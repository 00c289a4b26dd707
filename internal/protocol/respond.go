package protocol

import (
	"fmt"
	"strings"
)

const (
	End   = "END"
	Usage = "Send commands: ADD:name:qty  VIEW_CART  CHECKOUT  EXIT"

	StatusProcessing = "PROCESSING"
	StatusSuccess    = "SUCCESS"
	StatusFailed     = "FAILED"
)

func OK(msg string) string   { return "OK|" + msg }
func Info(msg string) string { return "INFO|" + msg }

func Errorf(format string, a ...any) string {
	return "ERROR|" + fmt.Sprintf(format, a...)
}

func ProductLine(name string, price float64, stock int64, description string) string {
	return fmt.Sprintf("PRODUCT|%s|%.2f|%d|%s", name, price, stock, description)
}

// CartEntry is one cart line as shown to the client.
type CartEntry struct {
	Name string
	Qty  int
}

func CartEmpty() string { return "CART|EMPTY" }

func Cart(entries []CartEntry, total float64) string {
	var sb strings.Builder
	sb.WriteString("CART|")
	for _, e := range entries {
		fmt.Fprintf(&sb, "%s x%d | ", e.Name, e.Qty)
	}
	fmt.Fprintf(&sb, "TOTAL:%.2f", total)
	return sb.String()
}

func Payment(status string, orderID int64) string {
	return fmt.Sprintf("PAYMENT|%s|%d", status, orderID)
}
