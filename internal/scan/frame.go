package scan

import "github.com/google/gopacket/layers"

// PacketFrame is the parsed form of one captured frame: every header
// layer is optional, and at least one network-layer header must be
// present for a frame to be eligible for correlation.
type PacketFrame struct {
	Ethernet *layers.Ethernet
	IPv4     *layers.IPv4
	IPv6     *layers.IPv6
	TCP      *layers.TCP
	UDP      *layers.UDP
	ICMPv4   *layers.ICMPv4
	ICMPv6   *layers.ICMPv6
	Payload  []byte
}

// HasNetworkLayer reports whether the frame carries IPv4 or IPv6, the
// precondition for correlation (§3 PacketFrame invariant).
func (f *PacketFrame) HasNetworkLayer() bool {
	return f.IPv4 != nil || f.IPv6 != nil
}

// SrcIP returns the frame's network-layer source address, or nil.
func (f *PacketFrame) SrcIP() []byte {
	switch {
	case f.IPv4 != nil:
		return f.IPv4.SrcIP
	case f.IPv6 != nil:
		return f.IPv6.SrcIP
	default:
		return nil
	}
}

// TTL returns the IPv4 TTL or IPv6 hop limit, or 0 if neither is present.
func (f *PacketFrame) TTL() uint8 {
	switch {
	case f.IPv4 != nil:
		return f.IPv4.TTL
	case f.IPv6 != nil:
		return f.IPv6.HopLimit
	default:
		return 0
	}
}
