// Package datalink opens a layer-2 send/receive channel bound to a
// network interface, the Datalink I/O of §4.2. It wraps
// github.com/google/gopacket/pcap, staging an inactive handle (snap
// length, promiscuous mode, timeout, buffer size) before activating it,
// and shares one handle for both the send and receive paths.
package datalink

import (
	"fmt"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/ardakoroglu/synreach/internal/scan"
)

// minBufferBytes is the smallest send/receive buffer §4.2 allows.
const minBufferBytes = 4096

// snapLen is the maximum bytes captured per frame; large enough for any
// Ethernet frame this engine crafts or expects to see in reply.
const snapLen = 65536

// Channel is a bound, activated datalink handle: both the transmit path
// (Send) and the receive path (ReadPacketData) share the same pcap.Handle.
type Channel struct {
	handle *pcap.Handle
}

// Open activates a non-promiscuous datalink channel on ifaceName with
// the given per-read timeout. It fails with scan.ErrChannel if pcap
// returns a link type this engine cannot frame (anything other than
// Ethernet, Linux "cooked" capture, BSD loopback null framing, or raw
// IP — the link types tunnel/loopback interfaces actually produce).
func Open(ifaceName string, readTimeout time.Duration) (*Channel, error) {
	inactive, err := pcap.NewInactiveHandle(ifaceName)
	if err != nil {
		return nil, fmt.Errorf("%w: inactive handle for %s: %v", scan.ErrChannel, ifaceName, err)
	}
	defer inactive.CleanUp()

	if err := inactive.SetSnapLen(snapLen); err != nil {
		return nil, fmt.Errorf("%w: set snaplen: %v", scan.ErrChannel, err)
	}
	if err := inactive.SetPromisc(false); err != nil {
		return nil, fmt.Errorf("%w: set promiscuous: %v", scan.ErrChannel, err)
	}
	if err := inactive.SetTimeout(readTimeout); err != nil {
		return nil, fmt.Errorf("%w: set timeout: %v", scan.ErrChannel, err)
	}
	if err := inactive.SetBufferSize(minBufferBytes * 64); err != nil {
		return nil, fmt.Errorf("%w: set buffer size: %v", scan.ErrChannel, err)
	}

	handle, err := inactive.Activate()
	if err != nil {
		return nil, fmt.Errorf("%w: activate %s: %v", scan.ErrChannel, ifaceName, err)
	}

	if !isSupportedLinkType(handle.LinkType()) {
		handle.Close()
		return nil, fmt.Errorf("%w: unsupported link type %v on %s", scan.ErrChannel, handle.LinkType(), ifaceName)
	}

	return &Channel{handle: handle}, nil
}

func isSupportedLinkType(lt layers.LinkType) bool {
	switch lt {
	case layers.LinkTypeEthernet, layers.LinkTypeLinuxSLL, layers.LinkTypeNull, layers.LinkTypeRaw:
		return true
	default:
		return false
	}
}

// Send transmits a complete frame as-is (no further framing applied).
func (c *Channel) Send(frame []byte) error {
	return c.handle.WritePacketData(frame)
}

// SetBPFFilter installs a kernel-level BPF filter, the coarse first
// pass before the capture listener's own per-frame re-check (§4.3).
func (c *Channel) SetBPFFilter(expr string) error {
	if expr == "" {
		return nil
	}
	return c.handle.SetBPFFilter(expr)
}

// LinkType reports the interface's link type, used by the capture
// listener to pick its decoding parser root layer.
func (c *Channel) LinkType() layers.LinkType {
	return c.handle.LinkType()
}

// ReadPacketData reads a single frame off the handle, honoring the
// per-read timeout configured in Open. Callers distinguish
// pcap.NextErrorTimeoutExpired from other errors to decide whether to
// keep polling.
func (c *Channel) ReadPacketData() ([]byte, gopacket.CaptureInfo, error) {
	return c.handle.ReadPacketData()
}

// Close releases the underlying handle.
func (c *Channel) Close() error {
	c.handle.Close()
	return nil
}
