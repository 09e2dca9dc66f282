// Package iface resolves interface identity and next-hop gateway MAC
// addresses, the "interface enumeration and gateway MAC resolution"
// collaborator the scan orchestrator depends on but does not itself
// implement (§1).
package iface

import (
	"fmt"
	"net"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/ardakoroglu/synreach/internal/scan"
)

// Info is the resolved identity of one interface.
type Info struct {
	Index        int
	Name         string
	HardwareAddr net.HardwareAddr
}

// ByIndex resolves if_index to its live interface, or
// scan.ErrUnknownInterface if no such interface exists (§4.6 step 1).
func ByIndex(index int) (*Info, error) {
	ifc, err := net.InterfaceByIndex(index)
	if err != nil {
		return nil, fmt.Errorf("%w: index %d: %v", scan.ErrUnknownInterface, index, err)
	}
	return &Info{Index: ifc.Index, Name: ifc.Name, HardwareAddr: ifc.HardwareAddr}, nil
}

// ResolveGatewayMAC discovers the hardware address of arpDst by sending
// an ARP request for it and blocking for the reply, the way a SYN-scan
// tool resolves a Synscan destination's link-layer address before
// crafting TCP frames. It does not consult the routing table: arpDst is
// ARPed as given, whether it is an on-link target or a gateway.
func ResolveGatewayMAC(ifaceName string, srcIP net.IP, srcMAC net.HardwareAddr, arpDst net.IP, timeout time.Duration) (net.HardwareAddr, error) {
	handle, err := pcap.OpenLive(ifaceName, 65536, true, timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s for arp: %v", scan.ErrGatewayUnresolved, ifaceName, err)
	}
	defer handle.Close()

	eth := layers.Ethernet{
		SrcMAC:       srcMAC,
		DstMAC:       net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		EthernetType: layers.EthernetTypeARP,
	}
	arp := layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   []byte(srcMAC),
		SourceProtAddress: []byte(srcIP4(srcIP)),
		DstHwAddress:      []byte{0, 0, 0, 0, 0, 0},
		DstProtAddress:    []byte(srcIP4(arpDst)),
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, &eth, &arp); err != nil {
		return nil, fmt.Errorf("%w: serialize arp request: %v", scan.ErrGatewayUnresolved, err)
	}
	if err := handle.WritePacketData(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("%w: send arp request: %v", scan.ErrGatewayUnresolved, err)
	}

	deadline := time.Now().Add(timeout)
	var replyEth layers.Ethernet
	var replyARP layers.ARP
	parser := gopacket.NewDecodingLayerParser(layers.LayerTypeEthernet, &replyEth, &replyARP)
	decoded := make([]gopacket.LayerType, 0, 2)

	for time.Now().Before(deadline) {
		data, _, err := handle.ReadPacketData()
		if err == pcap.NextErrorTimeoutExpired {
			continue
		}
		if err != nil {
			continue
		}
		if err := parser.DecodeLayers(data, &decoded); err != nil {
			continue
		}
		for _, lt := range decoded {
			if lt == layers.LayerTypeARP && net.IP(replyARP.SourceProtAddress).Equal(arpDst.To4()) {
				return net.HardwareAddr(replyARP.SourceHwAddress), nil
			}
		}
	}

	return nil, fmt.Errorf("%w: no arp reply from %s", scan.ErrGatewayUnresolved, arpDst)
}

// srcIP4 normalizes an address to its 4-byte form for the ARP source
// protocol address field; callers only ever resolve IPv4 next hops.
func srcIP4(ip net.IP) net.IP {
	if v4 := ip.To4(); v4 != nil {
		return v4
	}
	return ip
}
