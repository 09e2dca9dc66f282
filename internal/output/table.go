package output

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"

	"github.com/ardakoroglu/synreach/internal/scan"
)

// TableFormatter formats scan results as a detailed per-port table.
type TableFormatter struct {
	config Config
	colors *ColorScheme
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(config Config) *TableFormatter {
	var colors *ColorScheme
	if config.Colors {
		colors = DefaultColorScheme()
	}

	return &TableFormatter{
		config: config,
		colors: colors,
	}
}

// Format formats the scan result as a detailed table.
func (f *TableFormatter) Format(result *scan.Result) ([]byte, error) {
	var buf bytes.Buffer

	f.writeHeader(&buf, result)

	table := tablewriter.NewWriter(&buf)
	f.configureTable(table)

	table.SetHeader([]string{"Host", "Hostname", "TTL", "Port", "Status"})

	for _, host := range result.Hosts {
		rows := f.formatHostRows(&host)
		for _, row := range rows {
			table.Append(row)
		}
	}

	table.Render()

	f.writeSummary(&buf, result)

	return buf.Bytes(), nil
}

// writeHeader writes the scan header information.
func (f *TableFormatter) writeHeader(buf *bytes.Buffer, result *scan.Result) {
	header := fmt.Sprintf("Status: %s | Hosts: %d | Elapsed: %s\n\n",
		result.Status, len(result.Hosts), result.ScanTime.Round(0))

	if f.colors != nil {
		header = f.colors.Header.Sprint(header)
	}
	buf.WriteString(header)
}

// configureTable sets up the table appearance.
func (f *TableFormatter) configureTable(table *tablewriter.Table) {
	table.SetBorder(true)
	table.SetRowLine(false)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("│")
	table.SetColumnSeparator("│")
	table.SetRowSeparator("─")
	table.SetHeaderLine(true)
	table.SetTablePadding(" ")
}

// formatHostRows formats one table row per probed port (or a single
// "alive" row for ping modes, which carry no ports).
func (f *TableFormatter) formatHostRows(host *scan.HostInfo) [][]string {
	ip := host.IPAddr.String()
	hostname := truncateString(host.HostName, 25)
	ttl := "-"
	if host.TTL > 0 {
		ttl = fmt.Sprintf("%d", host.TTL)
	}

	if len(host.Ports) == 0 {
		return [][]string{{ip, hostname, ttl, "-", "alive"}}
	}

	rows := make([][]string, 0, len(host.Ports))
	for _, port := range host.Ports {
		portStr := "-"
		if port.Port > 0 {
			portStr = fmt.Sprintf("%d", port.Port)
		}
		rows = append(rows, []string{ip, hostname, ttl, portStr, f.colorizeStatusCell(port.Status)})
	}
	return rows
}

func (f *TableFormatter) colorizeStatusCell(status scan.PortStatus) string {
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

// writeSummary writes the scan summary.
func (f *TableFormatter) writeSummary(buf *bytes.Buffer, result *scan.Result) {
	buf.WriteString("\nSummary:\n")

	open, closed, filtered := 0, 0, 0
	for _, host := range result.Hosts {
		for _, port := range host.Ports {
			switch port.Status {
			case scan.PortOpen:
				open++
			case scan.PortClosed:
				closed++
			case scan.PortFiltered:
				filtered++
			}
		}
	}

	fmt.Fprintf(buf, "  Hosts:      %d\n", len(result.Hosts))
	fmt.Fprintf(buf, "  Open:       %d\n", open)
	fmt.Fprintf(buf, "  Closed:     %d\n", closed)
	fmt.Fprintf(buf, "  Filtered:   %d\n", filtered)
	fmt.Fprintf(buf, "  Elapsed:    %s\n", result.ScanTime.Round(0))
}

// ContentType returns the MIME type for table output.
func (f *TableFormatter) ContentType() string {
	return "text/plain"
}

// FileExtension returns the file extension for table output.
func (f *TableFormatter) FileExtension() string {
	return "txt"
}
