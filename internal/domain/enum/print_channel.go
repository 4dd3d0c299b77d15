package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// PrintChannel selects how a receipt reaches paper.
type PrintChannel int

const (
	PrintDesktop PrintChannel = 0 // ESC/POS through the configured printer
	PrintMobile  PrintChannel = 1 // deep link into the bluetooth print app
)

func (c PrintChannel) String() string {
	if c == PrintMobile {
		return "mobile"
	}
	return "desktop"
}

// ParsePrintChannel defaults to desktop for an empty string.
func ParsePrintChannel(s string) (PrintChannel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desktop":
		return PrintDesktop, nil
	case "mobile":
		return PrintMobile, nil
	default:
		return PrintDesktop, fmt.Errorf("unknown print channel %q", s)
	}
}

func (c PrintChannel) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *PrintChannel) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParsePrintChannel(str)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c PrintChannel) Value() (driver.Value, error) {
	return c.String(), nil
}

func (c *PrintChannel) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*c = PrintDesktop
	case string:
		*c, _ = ParsePrintChannel(v)
	case []byte:
		*c, _ = ParsePrintChannel(string(v))
	}
	return nil
}

// PrintJobStatus is the outcome of one dispatch attempt.
type PrintJobStatus int

const (
	PrintJobSent   PrintJobStatus = 0
	PrintJobFailed PrintJobStatus = 1
)

func (s PrintJobStatus) String() string {
	if s == PrintJobFailed {
		return "failed"
	}
	return "sent"
}

func (s PrintJobStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s PrintJobStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *PrintJobStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = PrintJobSent
	case int64:
		*s = PrintJobStatus(v)
	case int:
		*s = PrintJobStatus(v)
	}
	return nil
}
