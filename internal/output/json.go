package output

import (
	"encoding/json"

	"github.com/ardakoroglu/synreach/internal/scan"
)

// JSONFormatter formats scan results as JSON.
type JSONFormatter struct {
	config Config
	pretty bool
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(config Config) *JSONFormatter {
	return &JSONFormatter{
		config: config,
		pretty: true, // Default to pretty-printed
	}
}

// NewJSONFormatterCompact creates a JSON formatter with compact output.
func NewJSONFormatterCompact(config Config) *JSONFormatter {
	return &JSONFormatter{
		config: config,
		pretty: false,
	}
}

// SetPretty enables or disables pretty-printing.
func (f *JSONFormatter) SetPretty(pretty bool) {
	f.pretty = pretty
}

// Format formats the scan result as JSON.
func (f *JSONFormatter) Format(result *scan.Result) ([]byte, error) {
	output := f.toJSONOutput(result)

	if f.pretty {
		return json.MarshalIndent(output, "", "  ")
	}
	return json.Marshal(output)
}

// JSONOutput is the JSON-serializable representation of a scan result.
type JSONOutput struct {
	Status     string      `json:"status"`
	ElapsedMs  float64     `json:"elapsed_ms"`
	Hosts      []JSONHost  `json:"hosts"`
}

// JSONHost represents a single host's verdicts in JSON format.
type JSONHost struct {
	IP       string     `json:"ip"`
	Hostname string     `json:"hostname,omitempty"`
	TTL      int        `json:"ttl,omitempty"`
	Ports    []JSONPort `json:"ports"`
}

// JSONPort represents a single port verdict in JSON format.
type JSONPort struct {
	Port   int    `json:"port"`
	Status string `json:"status"`
}

// toJSONOutput converts a scan.Result to JSONOutput.
func (f *JSONFormatter) toJSONOutput(result *scan.Result) *JSONOutput {
	output := &JSONOutput{
		Status:    result.Status.String(),
		ElapsedMs: roundFloat(float64(result.ScanTime.Microseconds())/1000.0, 3),
		Hosts:     make([]JSONHost, len(result.Hosts)),
	}

	for i, host := range result.Hosts {
		output.Hosts[i] = f.toJSONHost(&host)
	}

	return output
}

// toJSONHost converts a HostInfo to JSONHost.
func (f *JSONFormatter) toJSONHost(host *scan.HostInfo) JSONHost {
	jh := JSONHost{
		IP:    host.IPAddr.String(),
		TTL:   int(host.TTL),
		Ports: make([]JSONPort, len(host.Ports)),
	}

	if host.HostName != "" {
		jh.Hostname = host.HostName
	}

	for i, port := range host.Ports {
		jh.Ports[i] = JSONPort{Port: int(port.Port), Status: port.Status.String()}
	}

	return jh
}

// ContentType returns the MIME type for JSON output.
func (f *JSONFormatter) ContentType() string {
	return "application/json"
}

// FileExtension returns the file extension for JSON output.
func (f *JSONFormatter) FileExtension() string {
	return "json"
}

// Helper function to round floats
func roundFloat(val float64, precision int) float64 {
	if precision == 0 {
		return float64(int(val + 0.5))
	}
	p := float64(1)
	for i := 0; i < precision; i++ {
		p *= 10
	}
	return float64(int(val*p+0.5)) / p
}
