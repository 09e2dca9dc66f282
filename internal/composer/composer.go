// Package composer builds complete link-layer probe frames: Ethernet +
// IPv4/IPv6 + TCP/UDP/ICMP/ICMPv6, serialized with
// github.com/google/gopacket the way a SYN-scan or ARP frame builder
// assembles and checksums each layer before a single serialize pass.
package composer

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Transport selects which upper-layer protocol a Descriptor composes.
type Transport int

const (
	// TransportTCPSyn composes a TCP SYN segment (used by both the SYN
	// port scan and the TCP ping sweep).
	TransportTCPSyn Transport = iota
	// TransportICMPEcho composes an ICMP/ICMPv6 echo request.
	TransportICMPEcho
	// TransportUDP composes an empty UDP datagram to the fixed ping
	// port.
	TransportUDP
)

// UDPPingPort is the fixed destination port for UDP ping probes (§6).
const UDPPingPort = 33435

// Descriptor is a single probe's parameters: src/dst MAC, src/dst IP,
// optional src/dst port, transport kind, and a minimize flag.
type Descriptor struct {
	SrcMAC, DstMAC net.HardwareAddr
	SrcIP, DstIP   net.IP
	SrcPort        uint16
	DstPort        uint16
	Transport      Transport
	// Minimize selects the reduced TCP options set (§4.1); only
	// meaningful for TransportTCPSyn.
	Minimize bool
	// SkipEthernet omits the Ethernet layer, for tunnel/loopback
	// interfaces where pcap hands back raw IP frames (§9, ScanSetting
	// tunnel/loopback hints).
	SkipEthernet bool
	// Seq is the TCP sequence number. Left at its zero value, a fixed
	// value is fine since no implementation detail depends on it.
	Seq uint32
	// ICMPID and ICMPSeq identify the echo request/reply pair.
	ICMPID, ICMPSeq uint16
}

// isIPv4 reports whether ip is an IPv4 address, including 4-in-6 mapped
// forms, the same check net/http and gopacket examples use.
func isIPv4(ip net.IP) bool {
	return ip.To4() != nil
}

// Compose builds the complete frame bytes for d. A cross-family pairing
// (IPv4 source with an IPv6 destination, or vice versa) is not an error:
// per §4.1 it produces no packet, and the caller must skip the target
// silently.
func Compose(d Descriptor) ([]byte, error) {
	srcV4, dstV4 := isIPv4(d.SrcIP), isIPv4(d.DstIP)
	if srcV4 != dstV4 {
		return nil, nil
	}

	var ethType layers.EthernetType
	if srcV4 {
		ethType = layers.EthernetTypeIPv4
	} else {
		ethType = layers.EthernetTypeIPv6
	}

	var layersToSerialize []gopacket.SerializableLayer
	if !d.SkipEthernet {
		layersToSerialize = append(layersToSerialize, &layers.Ethernet{
			SrcMAC:       d.SrcMAC,
			DstMAC:       d.DstMAC,
			EthernetType: ethType,
		})
	}

	var networkLayer gopacket.NetworkLayer
	if srcV4 {
		ip4 := &layers.IPv4{
			Version:  4,
			TTL:      64,
			SrcIP:    d.SrcIP,
			DstIP:    d.DstIP,
			Protocol: protocolFor(d.Transport, true),
		}
		networkLayer = ip4
		layersToSerialize = append(layersToSerialize, ip4)
	} else {
		ip6 := &layers.IPv6{
			Version:    6,
			HopLimit:   64,
			SrcIP:      d.SrcIP,
			DstIP:      d.DstIP,
			NextHeader: protocolFor(d.Transport, false),
		}
		networkLayer = ip6
		layersToSerialize = append(layersToSerialize, ip6)
	}

	switch d.Transport {
	case TransportTCPSyn:
		tcp := &layers.TCP{
			SrcPort: layers.TCPPort(d.SrcPort),
			DstPort: layers.TCPPort(d.DstPort),
			Seq:     d.Seq,
			SYN:     true,
			Window:  65535,
			Options: tcpSynOptions(d.Minimize),
		}
		if err := tcp.SetNetworkLayerForChecksum(networkLayer); err != nil {
			return nil, fmt.Errorf("composer: set checksum network layer: %w", err)
		}
		layersToSerialize = append(layersToSerialize, tcp)

	case TransportUDP:
		udp := &layers.UDP{
			SrcPort: layers.UDPPort(d.SrcPort),
			DstPort: layers.UDPPort(UDPPingPort),
		}
		if err := udp.SetNetworkLayerForChecksum(networkLayer); err != nil {
			return nil, fmt.Errorf("composer: set checksum network layer: %w", err)
		}
		layersToSerialize = append(layersToSerialize, udp)

	case TransportICMPEcho:
		if srcV4 {
			icmp := &layers.ICMPv4{
				TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoRequest, 0),
				Id:       d.ICMPID,
				Seq:      d.ICMPSeq,
			}
			layersToSerialize = append(layersToSerialize, icmp)
		} else {
			icmp := &layers.ICMPv6{
				TypeCode: layers.CreateICMPv6TypeCode(layers.ICMPv6TypeEchoRequest, 0),
			}
			if err := icmp.SetNetworkLayerForChecksum(networkLayer); err != nil {
				return nil, fmt.Errorf("composer: set checksum network layer: %w", err)
			}
			layersToSerialize = append(layersToSerialize, icmp)
			// ICMPv6 echo identifier/sequence live in the echo body,
			// which gopacket models as a separate layer; defaults
			// (zero) match §4.1 ("identifier and sequence unset").
			layersToSerialize = append(layersToSerialize, &layers.ICMPv6Echo{
				Identifier: d.ICMPID,
				SeqNumber:  d.ICMPSeq,
			})
		}

	default:
		return nil, fmt.Errorf("composer: unknown transport %d", d.Transport)
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, layersToSerialize...); err != nil {
		return nil, fmt.Errorf("composer: serialize: %w", err)
	}
	return buf.Bytes(), nil
}

func protocolFor(t Transport, v4 bool) layers.IPProtocol {
	switch t {
	case TransportTCPSyn:
		return layers.IPProtocolTCP
	case TransportUDP:
		return layers.IPProtocolUDP
	case TransportICMPEcho:
		if v4 {
			return layers.IPProtocolICMPv4
		}
		return layers.IPProtocolICMPv6
	default:
		return 0
	}
}

// tcpSynOptions builds the TCP options block, byte-for-byte per §4.1.
// The ordering and values are part of the wire-format contract (they
// affect target fingerprinting), so each variant is its own literal
// option list rather than a parameterized builder.
func tcpSynOptions(minimize bool) []layers.TCPOption {
	mss := layers.TCPOption{
		OptionType:   layers.TCPOptionKindMSS,
		OptionLength: 4,
		OptionData:   []byte{0x05, 0xb4}, // 1460
	}
	nop := layers.TCPOption{OptionType: layers.TCPOptionKindNop, OptionLength: 1}
	sackPermitted := layers.TCPOption{
		OptionType:   layers.TCPOptionKindSACKPermitted,
		OptionLength: 2,
	}

	if minimize {
		// [MSS(1460), SACK_PERMITTED, NOP, NOP, WSCALE(7)]
		return []layers.TCPOption{
			mss,
			sackPermitted,
			nop,
			nop,
			{
				OptionType:   layers.TCPOptionKindWindowScale,
				OptionLength: 3,
				OptionData:   []byte{7},
			},
		}
	}

	// [MSS(1460), NOP, WSCALE(6), NOP, NOP, TIMESTAMP(u32::MAX, 0), SACK_PERMITTED]
	timestamp := make([]byte, 8)
	binary.BigEndian.PutUint32(timestamp[0:4], 0xFFFFFFFF)
	binary.BigEndian.PutUint32(timestamp[4:8], 0)

	return []layers.TCPOption{
		mss,
		nop,
		{
			OptionType:   layers.TCPOptionKindWindowScale,
			OptionLength: 3,
			OptionData:   []byte{6},
		},
		nop,
		nop,
		{
			OptionType:   layers.TCPOptionKindTimestamps,
			OptionLength: 10,
			OptionData:   timestamp,
		},
		sackPermitted,
	}
}
