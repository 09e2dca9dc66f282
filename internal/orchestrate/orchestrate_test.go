package orchestrate

import (
	"net"
	"testing"
	"time"

	"github.com/ardakoroglu/synreach/internal/scan"
)

func TestCaptureOptionsForPortScanIncludesSrcPorts(t *testing.T) {
	setting := &scan.Setting{
		ScanType: scan.TCPSynScan,
		Targets: []scan.HostTarget{
			{IPAddr: net.ParseIP("10.0.0.1"), Ports: []uint16{22, 80}},
		},
		WaitTime: 2 * time.Second,
	}

	opts := captureOptionsFor(setting)
	if len(opts.SrcPorts) != 2 {
		t.Errorf("expected 2 src ports, got %d", len(opts.SrcPorts))
	}
	if _, ok := opts.IPProtocols[scan.ProtoTCP]; !ok {
		t.Error("expected ProtoTCP in ip_protocols for TCPSynScan")
	}
}

func TestCaptureOptionsForPingScanOmitsSrcPorts(t *testing.T) {
	setting := &scan.Setting{
		ScanType: scan.ICMPPingScan,
		Targets: []scan.HostTarget{
			{IPAddr: net.ParseIP("10.0.0.1")},
		},
	}

	opts := captureOptionsFor(setting)
	if len(opts.SrcPorts) != 0 {
		t.Errorf("expected no src ports for a ping scan, got %d", len(opts.SrcPorts))
	}
	if _, ok := opts.IPProtocols[scan.ProtoICMP]; !ok {
		t.Error("expected ProtoICMP in ip_protocols for ICMPPingScan")
	}
}

func TestStoreLimitForScalesWithTargetPortCount(t *testing.T) {
	setting := &scan.Setting{
		Targets: []scan.HostTarget{
			{IPAddr: net.ParseIP("10.0.0.1"), Ports: make([]uint16, 100)},
			{IPAddr: net.ParseIP("10.0.0.2"), Ports: make([]uint16, 100)},
		},
	}
	if limit := storeLimitFor(setting); limit < 200 {
		t.Errorf("storeLimitFor() = %d, want at least 200", limit)
	}
}
