// Package capture runs the Capture Listener (§4.3): a background read
// loop over a datalink channel that filters frames against the active
// scan's expected reply shape and appends matches to a shared buffer.
package capture

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/gopacket/pcap"

	"github.com/ardakoroglu/synreach/internal/datalink"
	"github.com/ardakoroglu/synreach/internal/scan"
)

// Listener owns a datalink channel's receive side for the duration of
// one scan invocation. The orchestrator starts it before emitting any
// probes (pre-roll, §4.6) and signals Stop after the post-roll sleep.
type Listener struct {
	channel *datalink.Channel
	opts    scan.CaptureOptions
	dec     *frameDecoder

	stopped atomic.Bool

	mu     sync.Mutex
	frames []scan.PacketFrame
}

// New builds a Listener bound to channel, ready for Run.
func New(channel *datalink.Channel, opts scan.CaptureOptions) *Listener {
	return &Listener{
		channel: channel,
		opts:    opts,
		dec:     newFrameDecoder(channel.LinkType()),
		frames:  make([]scan.PacketFrame, 0, capFor(opts)),
	}
}

func capFor(opts scan.CaptureOptions) int {
	if opts.Store && opts.StoreLimit > 0 {
		return opts.StoreLimit
	}
	return 64
}

// Stop signals the read loop to exit at its next poll. Idempotent.
func (l *Listener) Stop() {
	l.stopped.Store(true)
}

// Run polls the channel until Stop is called or opts.Duration elapses,
// whichever comes first. It never returns an error for ordinary read
// timeouts; those are the mechanism by which the loop notices Stop.
func (l *Listener) Run() {
	deadline := time.Time{}
	if l.opts.Duration > 0 {
		deadline = time.Now().Add(l.opts.Duration)
	}

	for {
		if l.stopped.Load() {
			return
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return
		}

		data, _, err := l.channel.ReadPacketData()
		if err != nil {
			if err == pcap.NextErrorTimeoutExpired {
				continue
			}
			// Any other read error (e.g. NoMorePackets on a pcap file
			// source) is treated as a transient miss; the loop keeps
			// polling until Stop or the deadline fires.
			continue
		}

		frame, ok := l.dec.decode(data)
		if !ok {
			continue
		}
		if !l.accept(frame) {
			continue
		}

		l.mu.Lock()
		if !l.opts.Store || len(l.frames) < l.opts.StoreLimit || l.opts.StoreLimit <= 0 {
			l.frames = append(l.frames, frame)
		}
		l.mu.Unlock()
	}
}

// Frames returns the frames accepted so far. Safe to call while Run is
// still in progress; the orchestrator calls it only after Stop+join.
func (l *Listener) Frames() []scan.PacketFrame {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]scan.PacketFrame, len(l.frames))
	copy(out, l.frames)
	return out
}

// accept applies §4.3's reply-shape filter: source IP must be one of
// the scan's targets, the IP protocol must be one this scan type
// expects, and — for TCP port scans — the reply's source port must be
// one of the target's probed ports. ReceiveUndefined disables all of
// this and keeps every frame with a network layer, used by diagnostic
// or permissive captures.
func (l *Listener) accept(frame scan.PacketFrame) bool {
	if l.opts.ReceiveUndefined {
		return true
	}

	srcIP := frame.SrcIP()
	if srcIP == nil {
		return false
	}
	if len(l.opts.SrcIPs) > 0 {
		if _, ok := l.opts.SrcIPs[net.IP(srcIP).String()]; !ok {
			return false
		}
	}

	proto, ok := protocolOf(frame)
	if !ok {
		return false
	}
	if len(l.opts.IPProtocols) > 0 {
		if _, ok := l.opts.IPProtocols[proto]; !ok {
			return false
		}
	}

	if proto == scan.ProtoTCP && len(l.opts.SrcPorts) > 0 {
		if frame.TCP == nil {
			return false
		}
		if _, ok := l.opts.SrcPorts[uint16(frame.TCP.SrcPort)]; !ok {
			return false
		}
	}

	return true
}

func protocolOf(frame scan.PacketFrame) (scan.IPProtocol, bool) {
	switch {
	case frame.TCP != nil:
		return scan.ProtoTCP, true
	case frame.UDP != nil:
		return scan.ProtoUDP, true
	case frame.ICMPv4 != nil:
		return scan.ProtoICMP, true
	case frame.ICMPv6 != nil:
		return scan.ProtoICMPv6, true
	default:
		return 0, false
	}
}
