package output

import (
	"encoding/csv"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/ardakoroglu/synreach/internal/scan"
)

// sampleResult builds a representative scan.Result: one host with an
// open and a closed port, one host with no hostname and a filtered
// port, exercising every status this package renders.
func sampleResult() *scan.Result {
	return &scan.Result{
		Status:   scan.StatusDone,
		ScanTime: 1234 * time.Millisecond,
		Hosts: []scan.HostInfo{
			{
				IPAddr:   net.ParseIP("192.168.1.10"),
				HostName: "web.local",
				TTL:      64,
				Ports: []scan.PortInfo{
					{Port: 22, Status: scan.PortOpen},
					{Port: 80, Status: scan.PortOpen},
					{Port: 443, Status: scan.PortClosed},
				},
			},
			{
				IPAddr: net.ParseIP("192.168.1.20"),
				TTL:    0,
				Ports: []scan.PortInfo{
					{Port: 8080, Status: scan.PortFiltered},
				},
			},
		},
	}
}

// samplePingResult builds a host-scan-style result where hosts carry
// no ports, as produced by ICMP/UDP ping modes.
func samplePingResult() *scan.Result {
	return &scan.Result{
		Status:   scan.StatusDone,
		ScanTime: 500 * time.Millisecond,
		Hosts: []scan.HostInfo{
			{IPAddr: net.ParseIP("10.0.0.1"), HostName: "gw.local"},
		},
	}
}

func TestTextFormatter(t *testing.T) {
	config := Config{Colors: false}
	formatter := NewTextFormatter(config)

	data, err := formatter.Format(sampleResult())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := string(data)

	if !strings.Contains(output, "192.168.1.10") {
		t.Error("Output should contain host IP")
	}
	if !strings.Contains(output, "web.local") {
		t.Error("Output should contain hostname")
	}
	if !strings.Contains(output, "open") {
		t.Error("Output should contain open status")
	}
	if !strings.Contains(output, "closed") {
		t.Error("Output should contain closed status")
	}
	if !strings.Contains(output, "filtered") {
		t.Error("Output should contain filtered status")
	}
}

func TestTextFormatterPingMode(t *testing.T) {
	formatter := NewTextFormatter(Config{Colors: false})

	data, err := formatter.Format(samplePingResult())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	if !strings.Contains(string(data), "alive") {
		t.Error("Output should report alive hosts with no ports")
	}
}

func TestTableFormatter(t *testing.T) {
	formatter := NewTableFormatter(Config{Colors: false})

	data, err := formatter.Format(sampleResult())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := string(data)

	if !strings.Contains(output, "HOST") {
		t.Error("Output should contain HOST column")
	}
	if !strings.Contains(output, "PORT") {
		t.Error("Output should contain PORT column")
	}
	if !strings.Contains(output, "192.168.1.10") {
		t.Error("Output should contain host IP")
	}
	if !strings.Contains(output, "Open:") {
		t.Error("Output should contain open count in summary")
	}
}

func TestJSONFormatter(t *testing.T) {
	formatter := NewJSONFormatter(Config{})

	data, err := formatter.Format(sampleResult())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var parsed JSONOutput
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("JSON parsing error: %v", err)
	}

	if parsed.Status != "done" {
		t.Errorf("Status = %q, want %q", parsed.Status, "done")
	}

	if len(parsed.Hosts) != 2 {
		t.Fatalf("len(Hosts) = %d, want 2", len(parsed.Hosts))
	}

	if parsed.Hosts[0].IP != "192.168.1.10" {
		t.Errorf("Hosts[0].IP = %q, want %q", parsed.Hosts[0].IP, "192.168.1.10")
	}

	if len(parsed.Hosts[0].Ports) != 3 {
		t.Errorf("len(Hosts[0].Ports) = %d, want 3", len(parsed.Hosts[0].Ports))
	}

	if parsed.Hosts[0].Ports[0].Status != "open" {
		t.Errorf("Hosts[0].Ports[0].Status = %q, want %q", parsed.Hosts[0].Ports[0].Status, "open")
	}
}

func TestJSONFormatterCompact(t *testing.T) {
	formatter := NewJSONFormatterCompact(Config{})

	data, err := formatter.Format(sampleResult())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) > 1 {
		if len(lines) > 2 || lines[1] != "" {
			t.Error("Compact JSON should be on single line")
		}
	}
}

func TestCSVFormatter(t *testing.T) {
	formatter := NewCSVFormatter(Config{})

	data, err := formatter.Format(sampleResult())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("CSV parsing error: %v", err)
	}

	if records[0][0] != "ip" {
		t.Errorf("Header[0] = %q, want %q", records[0][0], "ip")
	}
	if records[0][3] != "port" {
		t.Errorf("Header[3] = %q, want %q", records[0][3], "port")
	}

	// header + 3 ports for host 1 + 1 port for host 2
	if len(records) != 5 {
		t.Errorf("len(records) = %d, want 5", len(records))
	}

	if records[1][0] != "192.168.1.10" {
		t.Errorf("Row 1 IP = %q, want %q", records[1][0], "192.168.1.10")
	}
	if records[1][3] != "22" {
		t.Errorf("Row 1 port = %q, want %q", records[1][3], "22")
	}
}

func TestCSVFormatterPingMode(t *testing.T) {
	formatter := NewCSVFormatter(Config{})

	data, err := formatter.Format(samplePingResult())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("CSV parsing error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[1][4] != "alive" {
		t.Errorf("status column = %q, want %q", records[1][4], "alive")
	}
}

func TestNewFormatter(t *testing.T) {
	config := DefaultConfig()

	tests := []struct {
		format   Format
		expected string
	}{
		{FormatText, "text/plain"},
		{FormatVerbose, "text/plain"},
		{FormatJSON, "application/json"},
		{FormatCSV, "text/csv"},
		{FormatHTML, "text/html"},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			formatter := NewFormatter(tt.format, config)
			if formatter.ContentType() != tt.expected {
				t.Errorf("ContentType() = %q, want %q", formatter.ContentType(), tt.expected)
			}
		})
	}
}

func TestHTMLFormatter(t *testing.T) {
	formatter := NewHTMLFormatter(Config{Colors: false})

	data, err := formatter.Format(sampleResult())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := string(data)

	if !strings.Contains(output, "<!DOCTYPE html>") {
		t.Error("Output should contain DOCTYPE")
	}
	if !strings.Contains(output, "192.168.1.10") {
		t.Error("Output should contain host IP")
	}
	if !strings.Contains(output, "<style>") {
		t.Error("Output should contain embedded CSS")
	}
	if !strings.Contains(output, "Open") {
		t.Error("Output should contain summary counts")
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is a long string", 10, "this is..."},
		{"", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := truncateString(tt.input, tt.maxLen)
			if result != tt.expected {
				t.Errorf("truncateString(%q, %d) = %q, want %q",
					tt.input, tt.maxLen, result, tt.expected)
			}
		})
	}
}

func TestRoundFloat(t *testing.T) {
	tests := []struct {
		input     float64
		precision int
		expected  float64
	}{
		{1.2345, 2, 1.23},
		{1.2355, 2, 1.24},
		{1.5, 0, 2},
		{1.4, 0, 1},
		{1.23456789, 3, 1.235},
	}

	for _, tt := range tests {
		result := roundFloat(tt.input, tt.precision)
		if result != tt.expected {
			t.Errorf("roundFloat(%v, %d) = %v, want %v",
				tt.input, tt.precision, result, tt.expected)
		}
	}
}
