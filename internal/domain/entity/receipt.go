package entity

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/bumisubur/pos-gateway/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// ReceiptHeader holds the store header printed at the top of a receipt.
type ReceiptHeader struct {
	ShopName     string   `json:"shop_name"`
	AddressLines []string `json:"address_lines,omitempty"`
	Footer       string   `json:"footer,omitempty"`
}

// ReceiptRow is one line of the JSON receipt consumed by the mobile print app.
type ReceiptRow struct {
	Align   int    `json:"align"`
	Bold    int    `json:"bold"`
	Content string `json:"content"`
	Format  int    `json:"format"`
	Type    int    `json:"type"`
}

// ReceiptRows marshals as {"0": row, "1": row, ...} in row order, the shape
// the mobile print app reads.
type ReceiptRows []ReceiptRow

func (r ReceiptRows) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, row := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(strconv.Itoa(i)))
		buf.WriteByte(':')
		b, err := json.Marshal(row)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Row alignment and format codes understood by the mobile print app.
const (
	RowAlignLeft   = 0
	RowAlignCenter = 1

	RowFormatNormal = 0
	RowFormatLarge  = 1
	RowFormatSmall  = 4
)

// PrintSnapshot is the last successfully submitted payload of a checkout,
// kept so the receipt can be printed again without resubmitting.
type PrintSnapshot struct {
	TransactionID string             `json:"transaction_id"`
	Items         []SubmissionLine   `json:"items"`
	PaymentMethod enum.PaymentMethod `json:"payment_method"`
	Total         decimal.Decimal    `json:"total"`
	Discount      decimal.Decimal    `json:"discount"`
	Channel       enum.PrintChannel  `json:"channel"`
	CreatedAt     time.Time          `json:"created_at"`
}

// PrintOutcome reports one dispatch of a receipt.
type PrintOutcome struct {
	JobID    string            `json:"job_id,omitempty"`
	Channel  enum.PrintChannel `json:"channel"`
	Printer  string            `json:"printer,omitempty"`
	DeepLink string            `json:"deep_link,omitempty"`
	Error    string            `json:"error,omitempty"`
}
