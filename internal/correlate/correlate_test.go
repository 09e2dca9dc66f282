package correlate

import (
	"net"
	"testing"

	"github.com/google/gopacket/layers"

	"github.com/ardakoroglu/synreach/internal/scan"
)

func tcpFrame(srcIP string, srcPort uint16, syn, ack, rst bool, ttl uint8) scan.PacketFrame {
	return scan.PacketFrame{
		IPv4: &layers.IPv4{SrcIP: net.ParseIP(srcIP).To4(), TTL: ttl},
		TCP:  &layers.TCP{SrcPort: layers.TCPPort(srcPort), SYN: syn, ACK: ack, RST: rst},
	}
}

func TestCorrelatePortScanClassifiesOpenAndClosed(t *testing.T) {
	setting := &scan.Setting{ScanType: scan.TCPSynScan}
	frames := []scan.PacketFrame{
		tcpFrame("10.0.0.1", 80, true, true, false, 64),
		tcpFrame("10.0.0.1", 443, false, true, true, 64),
	}

	result := Run(setting, frames)
	if len(result.Hosts) != 1 {
		t.Fatalf("expected 1 host, got %d", len(result.Hosts))
	}
	host := result.Hosts[0]
	if len(host.Ports) != 2 {
		t.Fatalf("expected 2 ports, got %d", len(host.Ports))
	}

	byPort := map[uint16]scan.PortStatus{}
	for _, p := range host.Ports {
		byPort[p.Port] = p.Status
	}
	if byPort[80] != scan.PortOpen {
		t.Errorf("port 80 = %v, want Open", byPort[80])
	}
	if byPort[443] != scan.PortClosed {
		t.Errorf("port 443 = %v, want Closed", byPort[443])
	}
}

func TestCorrelatePortScanDedupesFirstVerdictWins(t *testing.T) {
	setting := &scan.Setting{ScanType: scan.TCPSynScan}
	frames := []scan.PacketFrame{
		tcpFrame("10.0.0.1", 80, true, true, false, 64),  // Open, first
		tcpFrame("10.0.0.1", 80, false, true, true, 64),  // Closed, duplicate socket — discarded
	}

	result := Run(setting, frames)
	host := result.Hosts[0]
	if len(host.Ports) != 1 {
		t.Fatalf("expected 1 port entry after dedup, got %d", len(host.Ports))
	}
	if host.Ports[0].Status != scan.PortOpen {
		t.Errorf("expected first verdict Open to win, got %v", host.Ports[0].Status)
	}
}

func TestCorrelatePortScanIgnoresOtherFlagCombinations(t *testing.T) {
	setting := &scan.Setting{ScanType: scan.TCPSynScan}
	frames := []scan.PacketFrame{
		tcpFrame("10.0.0.1", 80, true, false, false, 64), // SYN only, not a reply
	}

	result := Run(setting, frames)
	if len(result.Hosts) != 0 {
		t.Errorf("expected no hosts for unclassifiable flags, got %d", len(result.Hosts))
	}
}

func TestCorrelateHostScanICMPAcceptsAnyEchoReply(t *testing.T) {
	setting := &scan.Setting{ScanType: scan.ICMPPingScan}
	frames := []scan.PacketFrame{
		{IPv4: &layers.IPv4{SrcIP: net.ParseIP("10.0.0.5").To4(), TTL: 58}, ICMPv4: &layers.ICMPv4{}},
	}

	result := Run(setting, frames)
	if len(result.Hosts) != 1 {
		t.Fatalf("expected 1 host, got %d", len(result.Hosts))
	}
	if result.Hosts[0].TTL != 58 {
		t.Errorf("TTL = %d, want 58", result.Hosts[0].TTL)
	}
}

func TestCorrelateHostScanUDPAcceptsICMPWithoutPortFilter(t *testing.T) {
	setting := &scan.Setting{ScanType: scan.UDPPingScan}
	frames := []scan.PacketFrame{
		{IPv4: &layers.IPv4{SrcIP: net.ParseIP("10.0.0.9").To4(), TTL: 50}, ICMPv4: &layers.ICMPv4{}},
	}

	result := Run(setting, frames)
	if len(result.Hosts) != 1 {
		t.Fatalf("expected 1 host, got %d", len(result.Hosts))
	}
}

func TestCorrelateHostNameFilledFromSettingIPMap(t *testing.T) {
	setting := &scan.Setting{
		ScanType: scan.ICMPPingScan,
		IPMap:    map[string]string{"10.0.0.5": "router.lan"},
	}
	frames := []scan.PacketFrame{
		{IPv4: &layers.IPv4{SrcIP: net.ParseIP("10.0.0.5").To4(), TTL: 58}, ICMPv4: &layers.ICMPv4{}},
	}

	result := Run(setting, frames)
	if result.Hosts[0].HostName != "router.lan" {
		t.Errorf("HostName = %q, want %q", result.Hosts[0].HostName, "router.lan")
	}
}
