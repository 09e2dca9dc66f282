// Package emit implements the Probe Emitter (§4.4): for each scan type
// it iterates targets × ports, composes and transmits the appropriate
// probe, publishes progress, and paces itself with send_rate.
package emit

import (
	"net"
	"time"

	"github.com/ardakoroglu/synreach/internal/composer"
	"github.com/ardakoroglu/synreach/internal/datalink"
	"github.com/ardakoroglu/synreach/internal/scan"
)

// Datalink emits raw frames for every datalink-path scan type: the
// TCP-SYN emitter (full or minimized) used by TCPSynScan and
// TCPPingScan, the ICMP/ICMPv6 echo emitter for ICMPPingScan, and the
// UDP emitter for UDPPingScan. Probes are sent serially, target-major
// port-minor, per §5's ordering rule; send failures are swallowed
// because the capture side is authoritative for "reply seen".
func Datalink(channel *datalink.Channel, setting *scan.Setting, progress chan<- scan.Progress) {
	seq := uint32(1)
	for _, target := range setting.Targets {
		ports := target.Ports
		if !setting.ScanType.IsPortScan() && len(ports) == 0 {
			ports = []uint16{0}
		}

		for _, port := range ports {
			frame, err := composeProbe(setting, target.IPAddr, port, seq)
			seq++
			if err != nil || frame == nil {
				// Cross-family pairing or a build error: skip this
				// probe, the capture side will simply see no reply.
				sleepSendRate(setting)
				continue
			}

			_ = channel.Send(frame) // probe loss is tolerated, §4.4

			publish(progress, target.IPAddr, reportedPort(setting, port))
			sleepSendRate(setting)
		}
	}
}

// reportedPort is the port value published on the progress channel: the
// probed port for port scans, 0 for ping modes (§4.4).
func reportedPort(setting *scan.Setting, port uint16) uint16 {
	if setting.ScanType.IsPortScan() {
		return port
	}
	return 0
}

func sleepSendRate(setting *scan.Setting) {
	if setting.SendRate > 0 {
		time.Sleep(setting.SendRate)
	}
}

func publish(progress chan<- scan.Progress, ip net.IP, port uint16) {
	if progress == nil {
		return
	}
	select {
	case progress <- scan.Progress{IPAddr: ip, Port: port}:
	default:
		// A full, unread progress channel must never stall the
		// emitter; progress reporting is best-effort.
	}
}

func composeProbe(setting *scan.Setting, dstIP net.IP, port uint16, seq uint32) ([]byte, error) {
	d := composer.Descriptor{
		SrcMAC:       setting.SrcMAC,
		DstMAC:       setting.DstMAC,
		SrcIP:        setting.SrcIP,
		DstIP:        dstIP,
		SrcPort:      setting.SrcPort,
		DstPort:      port,
		Minimize:     setting.MinimizePacket,
		SkipEthernet: setting.Tunnel || setting.Loopback,
		Seq:          seq,
		ICMPID:       uint16(seq),
		ICMPSeq:      uint16(seq),
	}

	switch setting.ScanType {
	case scan.TCPSynScan, scan.TCPPingScan:
		d.Transport = composer.TransportTCPSyn
	case scan.ICMPPingScan:
		d.Transport = composer.TransportICMPEcho
	case scan.UDPPingScan:
		d.Transport = composer.TransportUDP
	default:
		return nil, nil
	}

	return composer.Compose(d)
}
