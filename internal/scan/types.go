// Package scan defines the data model shared by every stage of the
// reconnaissance engine: scan settings in, scan results out.
package scan

import (
	"net"
	"time"
)

// Type selects which of the five scan modes an invocation performs.
type Type int

const (
	// TCPSynScan sends a raw TCP SYN and classifies the reply without
	// completing the handshake.
	TCPSynScan Type = iota
	// TCPConnectScan uses the OS socket stack to fully connect.
	TCPConnectScan
	// ICMPPingScan sends ICMP (or ICMPv6) echo requests.
	ICMPPingScan
	// TCPPingScan uses a TCP SYN as a host liveness probe.
	TCPPingScan
	// UDPPingScan sends an empty UDP datagram to a fixed high port.
	UDPPingScan
)

// String returns the lower-case name of the scan type, used in logs and
// output formatters.
func (t Type) String() string {
	switch t {
	case TCPSynScan:
		return "tcp_syn"
	case TCPConnectScan:
		return "tcp_connect"
	case ICMPPingScan:
		return "icmp_ping"
	case TCPPingScan:
		return "tcp_ping"
	case UDPPingScan:
		return "udp_ping"
	default:
		return "unknown"
	}
}

// IsPortScan reports whether this scan type produces per-port verdicts
// (as opposed to host-liveness-only verdicts).
func (t Type) IsPortScan() bool {
	return t == TCPSynScan || t == TCPConnectScan
}

// Status is the lifecycle state of a ScanResult.
type Status int

const (
	StatusReady Status = iota
	StatusRunning
	StatusDone
	StatusTimeout
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusDone:
		return "done"
	case StatusTimeout:
		return "timeout"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// HostTarget is one scan target: an IP address and the ports to probe on
// it. Ping modes send one probe per listed port, or a single synthetic
// host probe when Ports is empty.
type HostTarget struct {
	IPAddr net.IP
	Ports  []uint16
}

// Setting is the immutable input to a single scan invocation. It is
// built by the configuration facade (cmd/synreach + internal/config),
// consumed by exactly one call to internal/orchestrate, and then
// discarded.
type Setting struct {
	IfIndex int
	IfName  string

	SrcMAC net.HardwareAddr
	// DstMAC is the next-hop gateway's hardware address for routed
	// targets. The zero address means "no datalink transmit" and is
	// only valid for TCPConnectScan.
	DstMAC net.HardwareAddr

	SrcIP   net.IP
	SrcPort uint16

	Targets []HostTarget

	// IPMap optionally supplies a hostname per target IP for result
	// enrichment. A missing or empty entry falls back to reverse DNS
	// (internal/enrich) when enrichment is enabled.
	IPMap map[string]string

	ScanType Type

	// Timeout bounds total scan wall-clock (capture duration and the
	// connect emitter's cutoff).
	Timeout time.Duration
	// WaitTime is post-transmit grace during which late replies are
	// still captured, and the listener's per-read timeout.
	WaitTime time.Duration
	// SendRate is the inter-packet delay in the emitter.
	SendRate time.Duration

	// MinimizePacket selects the reduced TCP options set (§4.1).
	MinimizePacket bool

	// Tunnel and Loopback are capture-layer hints: when either is set,
	// the composer skips Ethernet framing. The capture listener does not
	// read them; it picks its decoder from the link type pcap reports
	// for the interface.
	Tunnel   bool
	Loopback bool
}

// HostName returns the enrichment hostname configured for ip, or "" if
// none was supplied.
func (s *Setting) HostName(ip net.IP) string {
	if s.IPMap == nil {
		return ""
	}
	return s.IPMap[ip.String()]
}

// Clone returns a defensive copy of the setting, suitable for handing to
// the capture and emitter goroutines independently of the orchestrator's
// own copy.
func (s *Setting) Clone() *Setting {
	c := *s
	c.Targets = make([]HostTarget, len(s.Targets))
	for i, t := range s.Targets {
		ports := make([]uint16, len(t.Ports))
		copy(ports, t.Ports)
		c.Targets[i] = HostTarget{IPAddr: t.IPAddr, Ports: ports}
	}
	if s.IPMap != nil {
		c.IPMap = make(map[string]string, len(s.IPMap))
		for k, v := range s.IPMap {
			c.IPMap[k] = v
		}
	}
	return &c
}

// PortStatus is the verdict for a single probed port.
type PortStatus int

const (
	PortOpen PortStatus = iota
	PortClosed
	PortFiltered
)

func (s PortStatus) String() string {
	switch s {
	case PortOpen:
		return "open"
	case PortClosed:
		return "closed"
	case PortFiltered:
		return "filtered"
	default:
		return "unknown"
	}
}

// PortInfo is the verdict for one (host, port) pair.
type PortInfo struct {
	Port   uint16
	Status PortStatus
}

// HostInfo aggregates every verdict observed for one IP address.
type HostInfo struct {
	IPAddr   net.IP
	HostName string
	// TTL is the IPv4 TTL or IPv6 hop limit observed on the first frame
	// from this host.
	TTL   uint8
	Ports []PortInfo
}

// HasPort reports whether ports already contains an entry for port,
// regardless of status (§8: a (host, port) pair is listed at most once).
func (h *HostInfo) HasPort(port uint16) bool {
	for _, p := range h.Ports {
		if p.Port == port {
			return true
		}
	}
	return false
}

// Result is the output of one scan invocation.
type Result struct {
	Status       Status
	Hosts        []HostInfo
	Fingerprints []PacketFrame
	ScanTime     time.Duration
}

// HostByIP returns a pointer to the HostInfo for ip within r.Hosts,
// creating and appending one if absent. It preserves the invariant that
// r.Hosts contains no duplicate IPAddr.
func (r *Result) HostByIP(ip net.IP) *HostInfo {
	for i := range r.Hosts {
		if r.Hosts[i].IPAddr.Equal(ip) {
			return &r.Hosts[i]
		}
	}
	r.Hosts = append(r.Hosts, HostInfo{IPAddr: ip})
	return &r.Hosts[len(r.Hosts)-1]
}
