package capture

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/ardakoroglu/synreach/internal/scan"
)

// frameDecoder parses raw bytes off the wire into a scan.PacketFrame,
// reusing one gopacket.DecodingLayerParser per listener so a busy
// capture loop never allocates a fresh layer set per packet.
// The parser's root layer depends on the interface's link type: Ethernet
// for ordinary NICs, Linux "cooked" or BSD loopback framing, or bare IP
// for tunnel interfaces (§9 tunnel/loopback hints).
type frameDecoder struct {
	linkType layers.LinkType

	eth   layers.Ethernet
	sll   layers.LinuxSLL
	loop  layers.Loopback
	ip4   layers.IPv4
	ip6   layers.IPv6
	tcp   layers.TCP
	udp   layers.UDP
	icmp4 layers.ICMPv4
	icmp6 layers.ICMPv6
	pay   gopacket.Payload

	parser *gopacket.DecodingLayerParser
}

func newFrameDecoder(lt layers.LinkType) *frameDecoder {
	d := &frameDecoder{linkType: lt}

	switch lt {
	case layers.LinkTypeLinuxSLL:
		d.parser = gopacket.NewDecodingLayerParser(layers.LayerTypeLinuxSLL,
			&d.sll, &d.ip4, &d.ip6, &d.tcp, &d.udp, &d.icmp4, &d.icmp6, &d.pay)
	case layers.LinkTypeNull:
		d.parser = gopacket.NewDecodingLayerParser(layers.LayerTypeLoopback,
			&d.loop, &d.ip4, &d.ip6, &d.tcp, &d.udp, &d.icmp4, &d.icmp6, &d.pay)
	case layers.LinkTypeRaw:
		// Root layer picked per-packet (see decode()): LINKTYPE_RAW
		// carries no link header, so the IP version byte decides.
		d.parser = gopacket.NewDecodingLayerParser(layers.LayerTypeIPv4,
			&d.ip4, &d.ip6, &d.tcp, &d.udp, &d.icmp4, &d.icmp6, &d.pay)
	default: // layers.LinkTypeEthernet
		d.parser = gopacket.NewDecodingLayerParser(layers.LayerTypeEthernet,
			&d.eth, &d.ip4, &d.ip6, &d.tcp, &d.udp, &d.icmp4, &d.icmp6, &d.pay)
	}

	return d
}

// decode parses data into a PacketFrame. A malformed frame, or one with
// no network-layer header, is discarded silently (CaptureParseError,
// §7) and decode returns false.
func (d *frameDecoder) decode(data []byte) (scan.PacketFrame, bool) {
	root := layers.LayerTypeEthernet
	switch d.linkType {
	case layers.LinkTypeLinuxSLL:
		root = layers.LayerTypeLinuxSLL
	case layers.LinkTypeNull:
		root = layers.LayerTypeLoopback
	case layers.LinkTypeRaw:
		if len(data) == 0 {
			return scan.PacketFrame{}, false
		}
		if data[0]>>4 == 6 {
			root = layers.LayerTypeIPv6
		} else {
			root = layers.LayerTypeIPv4
		}
	}

	decoded := make([]gopacket.LayerType, 0, 8)
	// DecodingLayerParser fills in every layer it manages to decode
	// before returning an error on the first one it can't; we still
	// want those, so the error itself is not fatal to the frame.
	_ = d.parser.DecodeLayersWithRoot(root, data, &decoded)

	frame := scan.PacketFrame{Payload: []byte(d.pay)}
	for _, lt := range decoded {
		switch lt {
		case layers.LayerTypeEthernet:
			eth := d.eth
			frame.Ethernet = &eth
		case layers.LayerTypeIPv4:
			ip4 := d.ip4
			frame.IPv4 = &ip4
		case layers.LayerTypeIPv6:
			ip6 := d.ip6
			frame.IPv6 = &ip6
		case layers.LayerTypeTCP:
			tcp := d.tcp
			frame.TCP = &tcp
		case layers.LayerTypeUDP:
			udp := d.udp
			frame.UDP = &udp
		case layers.LayerTypeICMPv4:
			icmp4 := d.icmp4
			frame.ICMPv4 = &icmp4
		case layers.LayerTypeICMPv6:
			icmp6 := d.icmp6
			frame.ICMPv6 = &icmp6
		}
	}

	if !frame.HasNetworkLayer() {
		return scan.PacketFrame{}, false
	}
	return frame, true
}
