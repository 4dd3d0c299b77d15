package printer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"
)

// Printer is the interface for sending raw ESC/POS data to a thermal printer.
type Printer interface {
	// Print sends raw ESC/POS bytes to the printer.
	Print(ctx context.Context, data []byte) error
	// Name identifies the printer in logs and the print journal.
	Name() string
	// IsConnected returns true if the printer (or its spooler) is reachable.
	IsConnected(ctx context.Context) bool
}

// Config selects and configures a Printer.
type Config struct {
	Type       string // "spooler", "network", "usb" or "none"
	SpoolerURL string // e.g. http://localhost:5000
	Printer    string // printer name registered in the spooler, e.g. POS-80
	USBPath    string
	Address    string
	Timeout    time.Duration
}

// --- Spooler Printer (HTTP job submission to a local print service) ---

// Job is the body accepted by the local print spooler.
type Job struct {
	Printer string `json:"printer"`
	Type    string `json:"type"`
	Data    string `json:"data"`
}

type spoolerPrinter struct {
	baseURL string
	printer string
	client  *http.Client
}

// NewSpoolerPrinter creates a printer that POSTs RAW jobs to {baseURL}/job.
func NewSpoolerPrinter(baseURL, printerName string, client *http.Client) Printer {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &spoolerPrinter{
		baseURL: strings.TrimRight(baseURL, "/"),
		printer: printerName,
		client:  client,
	}
}

func (p *spoolerPrinter) Print(ctx context.Context, data []byte) error {
	body, err := json.Marshal(Job{Printer: p.printer, Type: "RAW", Data: string(data)})
	if err != nil {
		return fmt.Errorf("printer: failed to encode job: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/job", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("printer: failed to build spooler request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("printer: spooler %s unreachable: %w", p.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("printer: spooler returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

func (p *spoolerPrinter) Name() string {
	return p.printer
}

func (p *spoolerPrinter) IsConnected(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

// --- USB Printer (writes to device file, e.g. /dev/usb/lp0) ---

type usbPrinter struct {
	path string
}

// NewUSBPrinter creates a printer that writes to a USB device file.
func NewUSBPrinter(devicePath string) Printer {
	return &usbPrinter{path: devicePath}
}

func (p *usbPrinter) Print(_ context.Context, data []byte) error {
	f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("printer: failed to open USB device %s: %w", p.path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("printer: failed to write to USB device %s: %w", p.path, err)
	}
	return nil
}

func (p *usbPrinter) Name() string {
	return p.path
}

func (p *usbPrinter) IsConnected(_ context.Context) bool {
	_, err := os.Stat(p.path)
	return err == nil
}

// --- Network Printer (dials TCP, e.g. 192.168.1.100:9100) ---

type networkPrinter struct {
	address string
	timeout time.Duration
}

// NewNetworkPrinter creates a printer that connects via TCP.
// Address should include port, e.g. "192.168.1.100:9100".
func NewNetworkPrinter(address string, timeout time.Duration) Printer {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &networkPrinter{
		address: address,
		timeout: timeout,
	}
}

func (p *networkPrinter) Print(ctx context.Context, data []byte) error {
	dialer := net.Dialer{Timeout: p.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return fmt.Errorf("printer: failed to connect to %s: %w", p.address, err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(2 * p.timeout))

	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("printer: failed to write to %s: %w", p.address, err)
	}
	return nil
}

func (p *networkPrinter) Name() string {
	return p.address
}

func (p *networkPrinter) IsConnected(ctx context.Context) bool {
	dialer := net.Dialer{Timeout: 2 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// --- Null Printer (no-op, used when no printer is configured) ---

type nullPrinter struct{}

// NewNullPrinter creates a no-op printer for environments without hardware.
func NewNullPrinter() Printer {
	return nullPrinter{}
}

func (nullPrinter) Print(context.Context, []byte) error { return nil }

func (nullPrinter) Name() string { return "none" }

func (nullPrinter) IsConnected(context.Context) bool { return false }

// NewPrinterFromConfig creates the appropriate Printer based on cfg.Type.
func NewPrinterFromConfig(cfg Config) (Printer, error) {
	switch cfg.Type {
	case "spooler", "":
		if cfg.SpoolerURL == "" {
			return nil, fmt.Errorf("printer: spooler URL is required for spooler printer type")
		}
		return NewSpoolerPrinter(cfg.SpoolerURL, cfg.Printer, &http.Client{Timeout: cfg.Timeout}), nil
	case "usb":
		if cfg.USBPath == "" {
			return nil, fmt.Errorf("printer: USB path is required for USB printer type")
		}
		return NewUSBPrinter(cfg.USBPath), nil
	case "network":
		if cfg.Address == "" {
			return nil, fmt.Errorf("printer: address is required for network printer type")
		}
		return NewNetworkPrinter(cfg.Address, cfg.Timeout), nil
	case "none":
		return NewNullPrinter(), nil
	default:
		return nil, fmt.Errorf("printer: unknown printer type %q (use spooler, network, usb, or none)", cfg.Type)
	}
}
