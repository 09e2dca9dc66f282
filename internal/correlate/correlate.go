// Package correlate implements the Correlator (§4.5): it classifies
// captured frames against the scan type's expected reply shape and
// aggregates per-host port and liveness verdicts, deduplicating by
// socket identity and keeping only the first verdict observed for any
// given (ip, port).
package correlate

import (
	"net"

	"github.com/google/gopacket/layers"

	"github.com/ardakoroglu/synreach/internal/scan"
)

// socket identifies one (ip, port) pair for the dedup set.
type socket struct {
	ip   string
	port uint16
}

// Run classifies frames against setting.ScanType and returns the
// aggregated result. Frames are processed in arrival order so that
// "first verdict wins" is deterministic for a fixed capture trace (§5).
func Run(setting *scan.Setting, frames []scan.PacketFrame) *scan.Result {
	result := &scan.Result{Status: scan.StatusDone}

	if setting.ScanType.IsPortScan() {
		correlatePortScan(setting, frames, result)
	} else {
		correlateHostScan(setting, frames, result)
	}

	result.Fingerprints = frames
	return result
}

func correlatePortScan(setting *scan.Setting, frames []scan.PacketFrame, result *scan.Result) {
	seen := make(map[socket]struct{})

	for _, frame := range frames {
		if !frame.HasNetworkLayer() || frame.TCP == nil {
			continue
		}

		ip := net.IP(frame.SrcIP())
		sock := socket{ip: ip.String(), port: uint16(frame.TCP.SrcPort)}
		if _, dup := seen[sock]; dup {
			continue
		}

		status, ok := classifyTCP(frame.TCP)
		if !ok {
			continue
		}

		host := result.HostByIP(ip)
		if host.HostName == "" {
			host.HostName = setting.HostName(ip)
		}
		if host.TTL == 0 {
			host.TTL = frame.TTL()
		}
		host.Ports = append(host.Ports, scan.PortInfo{
			Port:   uint16(frame.TCP.SrcPort),
			Status: status,
		})

		seen[sock] = struct{}{}
	}
}

// classifyTCP maps a reply's flag combination to a port verdict, per
// §4.5: exactly SYN+ACK is Open, exactly RST+ACK is Closed, any other
// combination is ignored. Filtered is never produced: neither this
// package nor the orchestrator records an entry for a probed port that
// got no classified reply, so such a port is absent from Ports.
func classifyTCP(tcp *layers.TCP) (scan.PortStatus, bool) {
	switch {
	case tcp.SYN && tcp.ACK && !tcp.RST && !tcp.FIN && !tcp.PSH && !tcp.URG:
		return scan.PortOpen, true
	case tcp.RST && tcp.ACK && !tcp.SYN && !tcp.FIN && !tcp.PSH && !tcp.URG:
		return scan.PortClosed, true
	default:
		return 0, false
	}
}

func correlateHostScan(setting *scan.Setting, frames []scan.PacketFrame, result *scan.Result) {
	for _, frame := range frames {
		if !frame.HasNetworkLayer() {
			continue
		}

		var accept bool
		var port uint16

		switch setting.ScanType {
		case scan.ICMPPingScan:
			accept = frame.ICMPv4 != nil || frame.ICMPv6 != nil

		case scan.TCPPingScan:
			if frame.TCP != nil {
				if status, ok := classifyTCP(frame.TCP); ok {
					accept = true
					port = uint16(frame.TCP.SrcPort)
					_ = status
				}
			}

		case scan.UDPPingScan:
			// A port-unreachable ICMP reply indicates the host is
			// alive; no source-port filter applies here (§4.5).
			accept = frame.ICMPv4 != nil || frame.ICMPv6 != nil
		}

		if !accept {
			continue
		}

		ip := net.IP(frame.SrcIP())
		host := result.HostByIP(ip)
		if host.HostName == "" {
			host.HostName = setting.HostName(ip)
		}
		if host.TTL == 0 {
			host.TTL = frame.TTL()
		}

		if setting.ScanType == scan.TCPPingScan && !host.HasPort(port) {
			status, _ := classifyTCP(frame.TCP)
			host.Ports = append(host.Ports, scan.PortInfo{Port: port, Status: status})
		}
	}
}
