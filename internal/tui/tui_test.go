package tui

import (
	"net"
	"testing"

	"github.com/ardakoroglu/synreach/internal/scan"
)

func TestDefaultStyles(t *testing.T) {
	styles := DefaultStyles()

	if styles.Title.String() == "" {
		// Style should be defined
	}

	low := styles.PortOpenStyle.Render("test")
	med := styles.PortFilteredStyle.Render("test")
	high := styles.PortClosedStyle.Render("test")

	if low == med || med == high {
		t.Log("port verdict styles should be visually different")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is a very long string", 10, "this is..."},
		{"ab", 2, "ab"},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := truncate(tt.input, tt.maxLen)
			if result != tt.expected {
				t.Errorf("truncate(%q, %d) = %q, want %q",
					tt.input, tt.maxLen, result, tt.expected)
			}
		})
	}
}

func TestDarkTheme(t *testing.T) {
	styles := DarkTheme()

	if styles.Title.String() == "" && styles.PortOpenStyle.String() == "" {
		// At least one style should be defined
	}
}

func TestLightTheme(t *testing.T) {
	styles := LightTheme()

	if styles.Title.String() == "" && styles.PortOpenStyle.String() == "" {
		// At least one style should be defined
	}
}

func TestMinimalTheme(t *testing.T) {
	styles := MinimalTheme()

	if styles.Title.String() == "" {
		// At least one style should be defined
	}
}

func testSetting() *scan.Setting {
	return &scan.Setting{
		ScanType: scan.TCPSynScan,
		Targets: []scan.HostTarget{
			{IPAddr: net.ParseIP("192.168.1.10"), Ports: []uint16{22, 80}},
		},
	}
}

func TestModelRenderHostRows(t *testing.T) {
	model := &Model{
		setting: testSetting(),
		styles:  DefaultStyles(),
	}

	host := scan.HostInfo{
		IPAddr:   net.ParseIP("192.168.1.10"),
		HostName: "web.local",
		TTL:      64,
		Ports: []scan.PortInfo{
			{Port: 22, Status: scan.PortOpen},
			{Port: 443, Status: scan.PortClosed},
		},
	}

	rows := model.renderHostRows(host)
	if len(rows) != 2 {
		t.Fatalf("renderHostRows() returned %d rows, want 2", len(rows))
	}
	for _, row := range rows {
		if row == "" {
			t.Error("renderHostRows should return non-empty rows")
		}
	}
}

func TestModelRenderHostRowsPingMode(t *testing.T) {
	model := &Model{
		setting: testSetting(),
		styles:  DefaultStyles(),
	}

	host := scan.HostInfo{IPAddr: net.ParseIP("10.0.0.1")}

	rows := model.renderHostRows(host)
	if len(rows) != 1 {
		t.Fatalf("renderHostRows() returned %d rows, want 1", len(rows))
	}
}

func TestColorizeStatus(t *testing.T) {
	model := &Model{
		styles: DefaultStyles(),
	}

	tests := []struct {
		name   string
		status scan.PortStatus
	}{
		{"open", scan.PortOpen},
		{"closed", scan.PortClosed},
		{"filtered", scan.PortFiltered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := model.colorizeStatus("22/"+tt.name, tt.status)
			if result == "" {
				t.Error("colorizeStatus should return non-empty string")
			}
		})
	}
}
