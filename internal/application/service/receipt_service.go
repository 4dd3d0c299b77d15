package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bumisubur/pos-gateway/internal/domain/entity"
	"github.com/bumisubur/pos-gateway/internal/domain/enum"
	"github.com/bumisubur/pos-gateway/internal/domain/repository"
	"github.com/bumisubur/pos-gateway/internal/infrastructure/metrics"
	"github.com/bumisubur/pos-gateway/pkg/apperror"
	"github.com/bumisubur/pos-gateway/pkg/pagination"
	"github.com/bumisubur/pos-gateway/pkg/printer"
	"github.com/bumisubur/pos-gateway/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ErrTokenMissing is returned when a mobile print is requested without a
// session token to embed in the link.
var ErrTokenMissing = errors.New("Token not found! Please log in.")

// rowSeparatorWidth is the separator length of the mobile app's 48mm layout.
const rowSeparatorWidth = 39

// TransactionReader loads the canonical detail of a committed transaction.
type TransactionReader interface {
	TransactionForPrint(ctx context.Context, token, id string) (*entity.TransactionDetail, error)
}

// ReceiptSettings is the store identity and print layout.
type ReceiptSettings struct {
	Header        entity.ReceiptHeader
	Width         int
	Location      *time.Location
	MobileScheme  string
	PublicBaseURL string
}

// ReceiptService renders receipts from the server's view of a transaction and
// dispatches them to the desktop printer or the mobile print app.
type ReceiptService struct {
	transactions TransactionReader
	printer      printer.Printer
	journal      repository.PrintJobRepository
	settings     ReceiptSettings
	metrics      *metrics.Metrics
	log          *logrus.Logger
}

// NewReceiptService creates a new receipt service.
func NewReceiptService(
	transactions TransactionReader,
	p printer.Printer,
	journal repository.PrintJobRepository,
	settings ReceiptSettings,
	m *metrics.Metrics,
	log *logrus.Logger,
) *ReceiptService {
	if settings.Width <= 0 {
		settings.Width = 32
	}
	return &ReceiptService{
		transactions: transactions,
		printer:      p,
		journal:      journal,
		settings:     settings,
		metrics:      m,
		log:          log,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
}

// Status reports whether the configured printer is reachable.
func (s *ReceiptService) Status(ctx context.Context) *PrinterStatus {
	return &PrinterStatus{
		Name:      s.printer.Name(),
		Connected: s.printer.IsConnected(ctx),
	}
}

// Dispatch prints transaction id on channel. The transaction itself is never
// touched; a failure only produces an outcome with Error set and a print
// error.
func (s *ReceiptService) Dispatch(ctx context.Context, token, id string, channel enum.PrintChannel, requestedBy string) (entity.PrintOutcome, error) {
	var (
		outcome entity.PrintOutcome
		err     error
	)
	switch channel {
	case enum.PrintMobile:
		outcome, err = s.dispatchMobile(token, id)
	default:
		outcome, err = s.dispatchDesktop(ctx, token, id)
	}
	outcome.Channel = channel

	status := enum.PrintJobSent
	if err != nil {
		status = enum.PrintJobFailed
		outcome.Error = err.Error()
	}
	s.metrics.ObservePrint(channel.String(), status.String())
	outcome.JobID = s.record(ctx, id, channel, outcome.Printer, status, outcome.Error, requestedBy)

	if err != nil {
		s.log.WithFields(logrus.Fields{
			"transaction_id": id,
			"channel":        channel.String(),
		}).WithError(err).Warn("Receipt dispatch failed")
		return outcome, apperror.NewPrintError(err)
	}
	return outcome, nil
}

func (s *ReceiptService) dispatchDesktop(ctx context.Context, token, id string) (entity.PrintOutcome, error) {
	outcome := entity.PrintOutcome{Printer: s.printer.Name()}

	detail, err := s.transactions.TransactionForPrint(ctx, token, id)
	if err != nil {
		return outcome, fmt.Errorf("load transaction %s: %w", id, err)
	}

	data := FormatReceipt(detail, s.settings)
	if err := s.printer.Print(ctx, data); err != nil {
		return outcome, err
	}
	return outcome, nil
}

func (s *ReceiptService) dispatchMobile(token, id string) (entity.PrintOutcome, error) {
	link, err := s.MobileLink(token, id)
	if err != nil {
		return entity.PrintOutcome{}, err
	}
	return entity.PrintOutcome{Printer: s.settings.MobileScheme, DeepLink: link}, nil
}

// MobileLink is the deep link that makes the mobile print app fetch the
// receipt rows of transaction id.
func (s *ReceiptService) MobileLink(token, id string) (string, error) {
	if token == "" {
		return "", ErrTokenMissing
	}
	return fmt.Sprintf("%s://%s/api/print/%s?token=%s",
		s.settings.MobileScheme,
		strings.TrimRight(s.settings.PublicBaseURL, "/"),
		url.PathEscape(id),
		url.QueryEscape(token),
	), nil
}

// Rows renders transaction id as the row list the mobile print app consumes.
func (s *ReceiptService) Rows(ctx context.Context, token, id string) (entity.ReceiptRows, error) {
	detail, err := s.transactions.TransactionForPrint(ctx, token, id)
	if err != nil {
		return nil, err
	}
	return BuildReceiptRows(detail, s.settings), nil
}

// History returns the journal entries of one transaction.
func (s *ReceiptService) History(ctx context.Context, id string) ([]entity.PrintJob, error) {
	return s.journal.ListByTransaction(ctx, id)
}

// Journal lists every recorded dispatch, newest first.
func (s *ReceiptService) Journal(ctx context.Context, params *pagination.PaginationParams) ([]entity.PrintJob, *pagination.Pagination, error) {
	params.Validate()
	jobs, total, err := s.journal.List(ctx, params)
	if err != nil {
		return nil, nil, err
	}
	return jobs, pagination.NewPagination(params.Page, params.PerPage, total), nil
}

func (s *ReceiptService) record(ctx context.Context, id string, channel enum.PrintChannel, printerName string, status enum.PrintJobStatus, errMsg, requestedBy string) string {
	attempt, err := s.journal.CountByTransaction(ctx, id)
	if err != nil {
		s.log.WithError(err).Warn("Failed to count print attempts")
	}
	job := &entity.PrintJob{
		TransactionID: id,
		Channel:       channel,
		Printer:       printerName,
		Status:        status,
		Error:         errMsg,
		Attempt:       attempt + 1,
		RequestedBy:   requestedBy,
		CreatedAt:     time.Now(),
	}
	if err := s.journal.Create(ctx, job); err != nil {
		s.log.WithError(err).WithField("transaction_id", id).Warn("Failed to journal print job")
		return ""
	}
	return job.ID.String()
}

// FormatReceipt converts a transaction into the ESC/POS stream sent to the
// desktop printer.
func FormatReceipt(t *entity.TransactionDetail, settings ReceiptSettings) []byte {
	doc := printer.NewDocument(settings.Width)

	// Header
	doc.LineSpacing(0).
		PrintMode(printer.ModeHeadline).
		Text(settings.Header.ShopName).
		LineFeed().
		PrintMode(printer.ModeNormal)
	for _, line := range settings.Header.AddressLines {
		doc.Text(line)
	}
	doc.LineFeed().
		DefaultLineSpacing()

	doc.TextF("No. Nota   : %d", t.ID).
		TextF("Tanggal    : %s", receiptTime(t.Date, settings.Location)).
		Separator('-')

	// Items
	for i, line := range t.Lines {
		doc.TextF("%s (%s)", line.Name, line.Brand)
		doc.TextF("%s - %s   %d x %s           %s",
			line.Size, line.Category, line.Quantity,
			utils.FormatNumber(line.Price), utils.FormatNumber(line.Subtotal()))
		if i < len(t.Lines)-1 {
			doc.LineFeed()
		}
	}

	// Totals
	doc.Separator('-').
		TextF("%d Items", len(t.Lines)).
		TextF("Total Diskon: %s", utils.FormatNumber(t.Discount)).
		TextF("Total                  %s", utils.FormatNumber(t.Total)).
		Separator('-').
		TextF("Pembayaran : %s", t.PaymentMethod).
		Separator('-')

	// Footer
	doc.LineFeed().
		Text(settings.Header.Footer).
		FeedLines(2).
		FeedCut(0)

	return doc.Bytes()
}

// BuildReceiptRows converts a transaction into mobile print rows.
func BuildReceiptRows(t *entity.TransactionDetail, settings ReceiptSettings) entity.ReceiptRows {
	separator := strings.Repeat("-", rowSeparatorWidth)
	rows := entity.ReceiptRows{
		{Align: entity.RowAlignCenter, Content: settings.Header.ShopName, Format: entity.RowFormatLarge},
		{Align: entity.RowAlignCenter, Content: strings.Join(settings.Header.AddressLines, "\n"), Format: entity.RowFormatSmall},
		{Align: entity.RowAlignLeft, Content: fmt.Sprintf("No. Nota    : %d", t.ID), Format: entity.RowFormatSmall},
		{Align: entity.RowAlignLeft, Content: "tanggal     : " + receiptTime(t.Date, settings.Location), Format: entity.RowFormatSmall},
		{Align: entity.RowAlignCenter, Content: separator, Format: entity.RowFormatNormal},
	}

	for _, line := range t.Lines {
		rows = append(rows,
			entity.ReceiptRow{Align: entity.RowAlignLeft, Content: line.Brand + " - " + line.Name, Format: entity.RowFormatNormal},
			entity.ReceiptRow{
				Align:   entity.RowAlignLeft,
				Content: fmt.Sprintf("%s | %d pcs | %s = %s", line.Size, line.Quantity, plainNumber(line.Price), plainNumber(line.Subtotal())),
				Format:  entity.RowFormatNormal,
			},
		)
	}

	rows = append(rows,
		entity.ReceiptRow{Align: entity.RowAlignCenter, Content: separator, Format: entity.RowFormatNormal},
		entity.ReceiptRow{Align: entity.RowAlignLeft, Content: fmt.Sprintf("%d item", len(t.Lines)), Format: entity.RowFormatSmall},
		entity.ReceiptRow{Align: entity.RowAlignLeft, Content: "Diskon: " + plainNumber(t.Discount), Format: entity.RowFormatSmall},
		entity.ReceiptRow{Align: entity.RowAlignLeft, Bold: 1, Content: "Total " + plainNumber(t.Total), Format: entity.RowFormatNormal},
		entity.ReceiptRow{Align: entity.RowAlignCenter, Content: settings.Header.Footer, Format: entity.RowFormatLarge},
	)
	return rows
}

func receiptTime(raw string, loc *time.Location) string {
	t, err := utils.ParseBackendTime(raw)
	if err != nil {
		return raw
	}
	return utils.FormatReceiptTime(t, loc)
}

func plainNumber(d decimal.Decimal) string {
	return d.String()
}
