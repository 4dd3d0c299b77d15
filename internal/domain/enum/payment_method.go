package enum

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PaymentMethod is how a transaction was paid. The zero value means the
// cashier has not picked one yet.
type PaymentMethod int

const (
	PaymentUnset    PaymentMethod = 0
	PaymentTunai    PaymentMethod = 1
	PaymentDebit    PaymentMethod = 2
	PaymentTransfer PaymentMethod = 3
	PaymentQRIS     PaymentMethod = 4
)

// PaymentMethods lists the selectable methods in display order.
var PaymentMethods = []PaymentMethod{PaymentTunai, PaymentDebit, PaymentTransfer, PaymentQRIS}

func (m PaymentMethod) String() string {
	names := [...]string{"", "Tunai", "Debit", "Transfer", "QRIS"}
	if int(m) < 0 || int(m) >= len(names) {
		return ""
	}
	return names[m]
}

// IsSet reports whether m is one of the selectable methods.
func (m PaymentMethod) IsSet() bool {
	return m >= PaymentTunai && m <= PaymentQRIS
}

// ParsePaymentMethod accepts the wire titles case-insensitively, plus "cash".
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tunai", "cash":
		return PaymentTunai, nil
	case "debit":
		return PaymentDebit, nil
	case "transfer":
		return PaymentTransfer, nil
	case "qris":
		return PaymentQRIS, nil
	case "":
		return PaymentUnset, nil
	default:
		return PaymentUnset, fmt.Errorf("unknown payment method %q", s)
	}
}

func (m PaymentMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParsePaymentMethod(str)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
