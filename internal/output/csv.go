package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/ardakoroglu/synreach/internal/scan"
)

// CSVFormatter formats scan results as CSV, one row per (host, port).
type CSVFormatter struct {
	config  Config
	columns []string
}

// Default CSV columns
var defaultCSVColumns = []string{"ip", "hostname", "ttl", "port", "status"}

// NewCSVFormatter creates a new CSV formatter.
func NewCSVFormatter(config Config) *CSVFormatter {
	return &CSVFormatter{
		config:  config,
		columns: defaultCSVColumns,
	}
}

// SetColumns allows customizing which columns to include.
func (f *CSVFormatter) SetColumns(columns []string) {
	f.columns = columns
}

// Format formats the scan result as CSV.
func (f *CSVFormatter) Format(result *scan.Result) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(f.columns); err != nil {
		return nil, err
	}

	for _, host := range result.Hosts {
		for _, row := range f.formatHostRows(&host) {
			if err := writer.Write(row); err != nil {
				return nil, err
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// formatHostRows formats one CSV row per (host, port), or a single row
// for a host with no probed ports (ping modes).
func (f *CSVFormatter) formatHostRows(host *scan.HostInfo) [][]string {
	if len(host.Ports) == 0 {
		return [][]string{f.formatRow(host, nil)}
	}
	rows := make([][]string, 0, len(host.Ports))
	for _, port := range host.Ports {
		p := port
		rows = append(rows, f.formatRow(host, &p))
	}
	return rows
}

// formatRow formats a single (host, port) pair as a CSV row.
func (f *CSVFormatter) formatRow(host *scan.HostInfo, port *scan.PortInfo) []string {
	row := make([]string, len(f.columns))

	for i, col := range f.columns {
		row[i] = f.getValue(host, port, col)
	}

	return row
}

// getValue returns the value for a specific column.
func (f *CSVFormatter) getValue(host *scan.HostInfo, port *scan.PortInfo, column string) string {
	switch column {
	case "ip":
		if host.IPAddr != nil {
			return host.IPAddr.String()
		}
		return ""

	case "hostname":
		return host.HostName

	case "ttl":
		if host.TTL > 0 {
			return strconv.Itoa(int(host.TTL))
		}
		return ""

	case "port":
		if port != nil {
			return strconv.Itoa(int(port.Port))
		}
		return ""

	case "status":
		if port != nil {
			return port.Status.String()
		}
		return "alive"

	default:
		return ""
	}
}

// ContentType returns the MIME type for CSV output.
func (f *CSVFormatter) ContentType() string {
	return "text/csv"
}

// FileExtension returns the file extension for CSV output.
func (f *CSVFormatter) FileExtension() string {
	return "csv"
}
