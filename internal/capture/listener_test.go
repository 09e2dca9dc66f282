package capture

import (
	"net"
	"testing"

	"github.com/google/gopacket/layers"

	"github.com/ardakoroglu/synreach/internal/scan"
)

func synAckFrame(srcIP string, srcPort uint16) scan.PacketFrame {
	ip := net.ParseIP(srcIP).To4()
	return scan.PacketFrame{
		IPv4: &layers.IPv4{SrcIP: ip, TTL: 58},
		TCP: &layers.TCP{
			SrcPort: layers.TCPPort(srcPort),
			SYN:     true,
			ACK:     true,
		},
	}
}

func TestListenerAcceptFiltersBySrcIPAndPort(t *testing.T) {
	l := &Listener{
		opts: scan.CaptureOptions{
			SrcIPs:      map[string]struct{}{"10.0.0.5": {}},
			SrcPorts:    map[uint16]struct{}{80: {}, 443: {}},
			IPProtocols: map[scan.IPProtocol]struct{}{scan.ProtoTCP: {}},
		},
	}

	tests := []struct {
		name  string
		frame scan.PacketFrame
		want  bool
	}{
		{"matching src ip and port", synAckFrame("10.0.0.5", 80), true},
		{"wrong src ip", synAckFrame("10.0.0.9", 80), false},
		{"wrong src port", synAckFrame("10.0.0.5", 22), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.accept(tt.frame); got != tt.want {
				t.Errorf("accept() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestListenerAcceptReceiveUndefinedBypassesFilter(t *testing.T) {
	l := &Listener{
		opts: scan.CaptureOptions{
			SrcIPs:           map[string]struct{}{"10.0.0.5": {}},
			ReceiveUndefined: true,
		},
	}

	if !l.accept(synAckFrame("203.0.113.1", 22)) {
		t.Error("accept() = false, want true with ReceiveUndefined set")
	}
}

func TestListenerAcceptRejectsFrameWithoutNetworkLayer(t *testing.T) {
	l := &Listener{}
	if l.accept(scan.PacketFrame{}) {
		t.Error("accept() = true for frame with no source IP, want false")
	}
}

func TestListenerAcceptRejectsWrongProtocol(t *testing.T) {
	l := &Listener{
		opts: scan.CaptureOptions{
			IPProtocols: map[scan.IPProtocol]struct{}{scan.ProtoICMP: {}, scan.ProtoICMPv6: {}},
		},
	}
	if l.accept(synAckFrame("10.0.0.5", 80)) {
		t.Error("accept() = true for TCP frame when only ICMP protocols configured")
	}
}

func TestNewFrameDecoderEthernetBuildsParser(t *testing.T) {
	// Only checks that an Ethernet decoder gets a parser; decode() itself
	// is not exercised here.
	dec := newFrameDecoder(layers.LinkTypeEthernet)
	if dec.parser == nil {
		t.Fatal("newFrameDecoder returned nil parser")
	}
}
