package composer

import (
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

func mustMAC(s string) net.HardwareAddr {
	mac, err := net.ParseMAC(s)
	if err != nil {
		panic(err)
	}
	return mac
}

func TestComposeTCPSynFullIPv4Length(t *testing.T) {
	frame, err := Compose(Descriptor{
		SrcMAC:    mustMAC("aa:bb:cc:dd:ee:01"),
		DstMAC:    mustMAC("aa:bb:cc:dd:ee:02"),
		SrcIP:     net.ParseIP("192.168.1.10"),
		DstIP:     net.ParseIP("192.168.1.20"),
		SrcPort:   41000,
		DstPort:   80,
		Transport: TransportTCPSyn,
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	pkt := gopacket.NewPacket(frame, layers.LayerTypeEthernet, gopacket.Default)
	ip4, ok := pkt.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
	if !ok {
		t.Fatalf("no IPv4 layer decoded")
	}
	if ip4.Length != 64 {
		t.Errorf("expected total_length=64, got %d", ip4.Length)
	}

	tcp, ok := pkt.Layer(layers.LayerTypeTCP).(*layers.TCP)
	if !ok {
		t.Fatalf("no TCP layer decoded")
	}
	if !tcp.SYN || tcp.ACK {
		t.Errorf("expected SYN-only flags, got %+v", tcp)
	}
	if tcp.Window != 65535 {
		t.Errorf("expected window=65535, got %d", tcp.Window)
	}
	// 7 full-variant options (22 bytes) plus the EndList that gopacket
	// decodes from the 2 zero bytes padding the block to 24.
	if len(tcp.Options) != 8 {
		t.Errorf("expected 7 full-variant options plus EndList, got %d", len(tcp.Options))
	}
}

func TestComposeTCPSynMinimizedOptionCount(t *testing.T) {
	frame, err := Compose(Descriptor{
		SrcMAC:    mustMAC("aa:bb:cc:dd:ee:01"),
		DstMAC:    mustMAC("aa:bb:cc:dd:ee:02"),
		SrcIP:     net.ParseIP("192.168.1.10"),
		DstIP:     net.ParseIP("192.168.1.20"),
		SrcPort:   41000,
		DstPort:   80,
		Transport: TransportTCPSyn,
		Minimize:  true,
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	pkt := gopacket.NewPacket(frame, layers.LayerTypeEthernet, gopacket.Default)
	tcp, ok := pkt.Layer(layers.LayerTypeTCP).(*layers.TCP)
	if !ok {
		t.Fatalf("no TCP layer decoded")
	}
	// 5 minimized-variant options (11 bytes) plus the EndList that
	// gopacket decodes from the zero byte padding the block to 12.
	if len(tcp.Options) != 6 {
		t.Errorf("expected 5 minimized-variant options plus EndList, got %d", len(tcp.Options))
	}
}

func TestComposeIPv6SynPayloadLength(t *testing.T) {
	frame, err := Compose(Descriptor{
		SrcMAC:    mustMAC("aa:bb:cc:dd:ee:01"),
		DstMAC:    mustMAC("aa:bb:cc:dd:ee:02"),
		SrcIP:     net.ParseIP("2001:db8::1"),
		DstIP:     net.ParseIP("2001:db8::2"),
		SrcPort:   41000,
		DstPort:   443,
		Transport: TransportTCPSyn,
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	pkt := gopacket.NewPacket(frame, layers.LayerTypeEthernet, gopacket.Default)
	ip6, ok := pkt.Layer(layers.LayerTypeIPv6).(*layers.IPv6)
	if !ok {
		t.Fatalf("no IPv6 layer decoded")
	}
	if ip6.Length != 44 {
		t.Errorf("expected payload_length=44, got %d", ip6.Length)
	}
}

func TestComposeCrossFamilySkipped(t *testing.T) {
	frame, err := Compose(Descriptor{
		SrcMAC:    mustMAC("aa:bb:cc:dd:ee:01"),
		DstMAC:    mustMAC("aa:bb:cc:dd:ee:02"),
		SrcIP:     net.ParseIP("192.168.1.10"),
		DstIP:     net.ParseIP("2001:db8::2"),
		SrcPort:   41000,
		DstPort:   80,
		Transport: TransportTCPSyn,
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if frame != nil {
		t.Errorf("expected nil frame for cross-family target, got %d bytes", len(frame))
	}
}

func TestComposeUDPPingFixedPort(t *testing.T) {
	frame, err := Compose(Descriptor{
		SrcMAC:    mustMAC("aa:bb:cc:dd:ee:01"),
		DstMAC:    mustMAC("aa:bb:cc:dd:ee:02"),
		SrcIP:     net.ParseIP("192.168.1.10"),
		DstIP:     net.ParseIP("192.168.1.20"),
		SrcPort:   41000,
		Transport: TransportUDP,
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	pkt := gopacket.NewPacket(frame, layers.LayerTypeEthernet, gopacket.Default)
	udp, ok := pkt.Layer(layers.LayerTypeUDP).(*layers.UDP)
	if !ok {
		t.Fatalf("no UDP layer decoded")
	}
	if udp.DstPort != UDPPingPort {
		t.Errorf("expected dst port %d, got %d", UDPPingPort, udp.DstPort)
	}
	if len(udp.Payload) != 0 {
		t.Errorf("expected empty payload, got %d bytes", len(udp.Payload))
	}
}

func TestComposeICMPv4Echo(t *testing.T) {
	frame, err := Compose(Descriptor{
		SrcMAC:    mustMAC("aa:bb:cc:dd:ee:01"),
		DstMAC:    mustMAC("aa:bb:cc:dd:ee:02"),
		SrcIP:     net.ParseIP("192.168.1.10"),
		DstIP:     net.ParseIP("192.168.1.20"),
		Transport: TransportICMPEcho,
		ICMPID:    1234,
		ICMPSeq:   1,
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	pkt := gopacket.NewPacket(frame, layers.LayerTypeEthernet, gopacket.Default)
	icmp, ok := pkt.Layer(layers.LayerTypeICMPv4).(*layers.ICMPv4)
	if !ok {
		t.Fatalf("no ICMPv4 layer decoded")
	}
	if icmp.TypeCode.Type() != layers.ICMPv4TypeEchoRequest {
		t.Errorf("expected echo request, got type %v", icmp.TypeCode.Type())
	}
	if icmp.Id != 1234 || icmp.Seq != 1 {
		t.Errorf("expected id=1234 seq=1, got id=%d seq=%d", icmp.Id, icmp.Seq)
	}
}
