package output

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/ardakoroglu/synreach/internal/scan"
)

// HTMLFormatter formats scan results as an HTML report.
type HTMLFormatter struct {
	config   Config
	template *template.Template
}

// NewHTMLFormatter creates a new HTML formatter.
func NewHTMLFormatter(config Config) *HTMLFormatter {
	tmpl := template.Must(template.New("report").Funcs(template.FuncMap{
		"formatTime": func(t time.Time) string {
			return t.Format("2006-01-02 15:04:05 MST")
		},
	}).Parse(htmlTemplate))

	return &HTMLFormatter{
		config:   config,
		template: tmpl,
	}
}

// Format formats the scan result as an HTML report.
func (f *HTMLFormatter) Format(result *scan.Result) ([]byte, error) {
	data := f.prepareData(result)

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.Bytes(), nil
}

// htmlData holds the data for the HTML template.
type htmlData struct {
	Title       string
	Status      string
	StatusClass string
	ElapsedMs   string
	Hosts       []htmlHost
	Summary     htmlSummary
	GeneratedAt time.Time
}

// htmlHost represents a host for HTML rendering.
type htmlHost struct {
	IP       string
	Hostname string
	TTL      string
	Ports    []htmlPort
}

// htmlPort represents a single port verdict for HTML rendering.
type htmlPort struct {
	Port       string
	Status     string
	StatusClass string
}

// htmlSummary holds summary data for HTML.
type htmlSummary struct {
	TotalHosts int
	Open       int
	Closed     int
	Filtered   int
}

// prepareData converts a scan.Result to template data.
func (f *HTMLFormatter) prepareData(result *scan.Result) *htmlData {
	data := &htmlData{
		Title:       fmt.Sprintf("Scan Report — %d host(s)", len(result.Hosts)),
		Status:      result.Status.String(),
		StatusClass: statusClass(result.Status),
		ElapsedMs:   fmt.Sprintf("%.2f ms", float64(result.ScanTime.Microseconds())/1000.0),
		Hosts:       make([]htmlHost, len(result.Hosts)),
		GeneratedAt: time.Now(),
	}

	summary := htmlSummary{TotalHosts: len(result.Hosts)}

	for i, host := range result.Hosts {
		h := htmlHost{IP: host.IPAddr.String(), Hostname: host.HostName}
		if host.TTL > 0 {
			h.TTL = fmt.Sprintf("%d", host.TTL)
		}

		if len(host.Ports) == 0 {
			h.Ports = []htmlPort{{Port: "-", Status: "alive", StatusClass: "good"}}
		} else {
			h.Ports = make([]htmlPort, len(host.Ports))
			for j, port := range host.Ports {
				h.Ports[j] = htmlPort{
					Port:        fmt.Sprintf("%d", port.Port),
					Status:      port.Status.String(),
					StatusClass: portStatusClass(port.Status),
				}
				switch port.Status {
				case scan.PortOpen:
					summary.Open++
				case scan.PortClosed:
					summary.Closed++
				case scan.PortFiltered:
					summary.Filtered++
				}
			}
		}

		data.Hosts[i] = h
	}

	data.Summary = summary
	return data
}

func statusClass(status scan.Status) string {
	switch status {
	case scan.StatusDone:
		return "success"
	case scan.StatusTimeout:
		return "warning"
	case scan.StatusError:
		return "bad"
	default:
		return "neutral"
	}
}

func portStatusClass(status scan.PortStatus) string {
	switch status {
	case scan.PortOpen:
		return "good"
	case scan.PortFiltered:
		return "medium"
	default:
		return "bad"
	}
}

// ContentType returns the MIME type for HTML output.
func (f *HTMLFormatter) ContentType() string {
	return "text/html"
}

// FileExtension returns the file extension for HTML output.
func (f *HTMLFormatter) FileExtension() string {
	return "html"
}

// HTML template
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}} - synreach</title>
    <style>
        :root {
            --bg-primary: #1a1b26;
            --bg-secondary: #24283b;
            --bg-tertiary: #414868;
            --text-primary: #c0caf5;
            --text-secondary: #a9b1d6;
            --text-muted: #565f89;
            --accent: #7aa2f7;
            --success: #9ece6a;
            --warning: #e0af68;
            --error: #f7768e;
            --border: #3b4261;
        }

        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background: var(--bg-primary);
            color: var(--text-primary);
            line-height: 1.6;
            padding: 2rem;
        }

        .container {
            max-width: 1200px;
            margin: 0 auto;
        }

        header {
            text-align: center;
            margin-bottom: 2rem;
            padding-bottom: 1rem;
            border-bottom: 1px solid var(--border);
        }

        h1 {
            color: var(--accent);
            font-size: 2rem;
            margin-bottom: 0.5rem;
        }

        .subtitle {
            color: var(--text-muted);
            font-size: 0.9rem;
        }

        table {
            width: 100%;
            border-collapse: collapse;
            background: var(--bg-secondary);
            border-radius: 8px;
            overflow: hidden;
            margin-bottom: 2rem;
        }

        th, td {
            padding: 0.75rem 1rem;
            text-align: left;
            border-bottom: 1px solid var(--border);
        }

        th {
            background: var(--bg-tertiary);
            color: var(--text-secondary);
            font-weight: 600;
            font-size: 0.85rem;
            text-transform: uppercase;
            letter-spacing: 0.05em;
        }

        tr:last-child td {
            border-bottom: none;
        }

        tr:hover {
            background: var(--bg-tertiary);
        }

        .ip {
            font-family: 'Monaco', 'Menlo', monospace;
            color: var(--text-primary);
        }

        .hostname {
            color: var(--success);
        }

        .status {
            font-family: 'Monaco', 'Menlo', monospace;
        }

        .status.good { color: var(--success); }
        .status.medium { color: var(--warning); }
        .status.bad { color: var(--error); }
        .status.neutral { color: var(--text-muted); }

        .summary {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(150px, 1fr));
            gap: 1rem;
            background: var(--bg-secondary);
            padding: 1.5rem;
            border-radius: 8px;
            border: 1px solid var(--border);
        }

        .summary-item {
            text-align: center;
        }

        .summary-item .value {
            font-size: 1.5rem;
            font-weight: 600;
            color: var(--accent);
        }

        .summary-item .label {
            color: var(--text-muted);
            font-size: 0.8rem;
            text-transform: uppercase;
        }

        footer {
            text-align: center;
            margin-top: 2rem;
            padding-top: 1rem;
            border-top: 1px solid var(--border);
            color: var(--text-muted);
            font-size: 0.8rem;
        }

        @media (max-width: 768px) {
            body { padding: 1rem; }
            h1 { font-size: 1.5rem; }
            th, td { padding: 0.5rem; font-size: 0.85rem; }
        }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>{{.Title}}</h1>
            <p class="subtitle">status: <span class="status {{.StatusClass}}">{{.Status}}</span> · elapsed {{.ElapsedMs}}</p>
        </header>

        <table>
            <thead>
                <tr>
                    <th>Host</th>
                    <th>Hostname</th>
                    <th>TTL</th>
                    <th>Port</th>
                    <th>Status</th>
                </tr>
            </thead>
            <tbody>
                {{range $host := .Hosts}}
                {{range $port := $host.Ports}}
                <tr>
                    <td class="ip">{{$host.IP}}</td>
                    <td class="hostname">{{if $host.Hostname}}{{$host.Hostname}}{{else}}-{{end}}</td>
                    <td>{{if $host.TTL}}{{$host.TTL}}{{else}}-{{end}}</td>
                    <td>{{$port.Port}}</td>
                    <td class="status {{$port.StatusClass}}">{{$port.Status}}</td>
                </tr>
                {{end}}
                {{end}}
            </tbody>
        </table>

        <div class="summary">
            <div class="summary-item">
                <div class="value">{{.Summary.TotalHosts}}</div>
                <div class="label">Hosts</div>
            </div>
            <div class="summary-item">
                <div class="value">{{.Summary.Open}}</div>
                <div class="label">Open</div>
            </div>
            <div class="summary-item">
                <div class="value">{{.Summary.Closed}}</div>
                <div class="label">Closed</div>
            </div>
            <div class="summary-item">
                <div class="value">{{.Summary.Filtered}}</div>
                <div class="label">Filtered</div>
            </div>
        </div>

        <footer>
            <p>Generated by synreach on {{formatTime .GeneratedAt}}</p>
        </footer>
    </div>
</body>
</html>
`
