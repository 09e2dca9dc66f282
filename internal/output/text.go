package output

import (
	"bytes"
	"fmt"

	"github.com/fatih/color"

	"github.com/ardakoroglu/synreach/internal/scan"
)

// TextFormatter formats scan results in a compact scan-summary style.
type TextFormatter struct {
	config Config
	colors *ColorScheme
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(config Config) *TextFormatter {
	var colors *ColorScheme
	if config.Colors {
		colors = DefaultColorScheme()
	}

	return &TextFormatter{
		config: config,
		colors: colors,
	}
}

// Format formats the scan result as line-per-host text output.
func (f *TextFormatter) Format(result *scan.Result) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Scan status: %s | %d host(s) | %s\n\n",
		result.Status, len(result.Hosts), result.ScanTime.Round(0))

	for _, host := range result.Hosts {
		f.formatHost(&buf, &host)
	}

	return buf.Bytes(), nil
}

// formatHost formats a single host's verdicts.
func (f *TextFormatter) formatHost(buf *bytes.Buffer, host *scan.HostInfo) {
	ipStr := host.IPAddr.String()
	if f.colors != nil {
		ipStr = f.colors.IP.Sprint(ipStr)
	}

	if host.HostName != "" && !f.config.NoHostname {
		hostname := host.HostName
		if f.colors != nil {
			hostname = f.colors.Hostname.Sprint(hostname)
		}
		fmt.Fprintf(buf, "%s (%s)", hostname, ipStr)
	} else {
		fmt.Fprintf(buf, "%s", ipStr)
	}

	if host.TTL > 0 {
		fmt.Fprintf(buf, "  ttl=%d", host.TTL)
	}
	buf.WriteString("\n")

	if len(host.Ports) == 0 {
		alive := "alive"
		if f.colors != nil {
			alive = f.colors.PortOpenStyle.Sprint(alive)
		}
		fmt.Fprintf(buf, "  %s\n", alive)
		return
	}

	for _, port := range host.Ports {
		statusStr := port.Status.String()
		if f.colors != nil {
			statusStr = f.colorizeStatus(port.Status)
		}
		if port.Port > 0 {
			fmt.Fprintf(buf, "  %5d/tcp  %s\n", port.Port, statusStr)
		} else {
			fmt.Fprintf(buf, "  alive  %s\n", statusStr)
		}
	}
}

// colorizeStatus returns a colored status string based on port status.
func (f *TextFormatter) colorizeStatus(status scan.PortStatus) string {
	str := status.String()
	if f.colors == nil {
		return str
	}

	switch status {
	case scan.PortOpen:
		return f.colors.PortOpenStyle.Sprint(str)
	case scan.PortFiltered:
		return f.colors.PortFilteredStyle.Sprint(str)
	default:
		return f.colors.PortClosedStyle.Sprint(str)
	}
}

// ContentType returns the MIME type for text output.
func (f *TextFormatter) ContentType() string {
	return "text/plain"
}

// FileExtension returns the file extension for text output.
func (f *TextFormatter) FileExtension() string {
	return "txt"
}

// ColorScheme defines colors for different output elements.
type ColorScheme struct {
	IP                *color.Color
	Hostname          *color.Color
	PortOpenStyle     *color.Color // open
	PortFilteredStyle *color.Color // filtered
	PortClosedStyle   *color.Color // closed
	Timeout           *color.Color
	Header            *color.Color
}

// DefaultColorScheme returns the default color scheme.
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		IP:                color.New(color.FgWhite),
		Hostname:          color.New(color.FgGreen),
		PortOpenStyle:     color.New(color.FgGreen),
		PortFilteredStyle: color.New(color.FgYellow),
		PortClosedStyle:   color.New(color.FgRed),
		Timeout:           color.New(color.FgRed, color.Bold),
		Header:            color.New(color.FgWhite, color.Bold),
	}
}

// Helper functions

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
