package scan

import "time"

// CaptureOptions configures internal/capture's listener (§4.3).
type CaptureOptions struct {
	// SrcIPs are the peer IPs expected as a reply's *source* address.
	SrcIPs map[string]struct{}
	// SrcPorts are the peer ports expected as a reply's source port
	// (for port scans, the target-port set).
	SrcPorts map[uint16]struct{}
	// IPProtocols are the acceptable IP next-level protocols.
	IPProtocols map[IPProtocol]struct{}

	Duration    time.Duration
	ReadTimeout time.Duration

	Store      bool
	StoreLimit int

	// ReceiveUndefined keeps frames matching none of the filters above.
	ReceiveUndefined bool

	Tunnel   bool
	Loopback bool
}

// IPProtocol names the IP next-header values the capture listener can
// filter on.
type IPProtocol int

const (
	ProtoTCP IPProtocol = iota
	ProtoUDP
	ProtoICMP
	ProtoICMPv6
)

// NewSrcIPSet builds the SrcIPs set from a target list.
func NewSrcIPSet(targets []HostTarget) map[string]struct{} {
	set := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		set[t.IPAddr.String()] = struct{}{}
	}
	return set
}

// NewSrcPortSet builds the SrcPorts set from every port across every
// target (used for port scans only, per §4.6's protocol filter table).
func NewSrcPortSet(targets []HostTarget) map[uint16]struct{} {
	set := make(map[uint16]struct{})
	for _, t := range targets {
		for _, p := range t.Ports {
			set[p] = struct{}{}
		}
	}
	return set
}

// ProtocolsFor returns the ip_protocols set for a scan type, per §4.6's
// protocol filter table.
func ProtocolsFor(t Type) map[IPProtocol]struct{} {
	set := make(map[IPProtocol]struct{})
	switch t {
	case ICMPPingScan:
		set[ProtoICMP] = struct{}{}
		set[ProtoICMPv6] = struct{}{}
	case TCPPingScan, TCPSynScan, TCPConnectScan:
		set[ProtoTCP] = struct{}{}
	case UDPPingScan:
		set[ProtoUDP] = struct{}{}
		set[ProtoICMP] = struct{}{}
		set[ProtoICMPv6] = struct{}{}
	}
	return set
}
