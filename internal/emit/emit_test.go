package emit

import (
	"net"
	"testing"

	"github.com/ardakoroglu/synreach/internal/scan"
)

func TestReportedPortZeroForPingModes(t *testing.T) {
	tests := []struct {
		name     string
		scanType scan.Type
		port     uint16
		want     uint16
	}{
		{"syn scan keeps port", scan.TCPSynScan, 443, 443},
		{"connect scan keeps port", scan.TCPConnectScan, 22, 22},
		{"icmp ping zeroes port", scan.ICMPPingScan, 0, 0},
		{"tcp ping zeroes port", scan.TCPPingScan, 80, 0},
		{"udp ping zeroes port", scan.UDPPingScan, 33435, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setting := &scan.Setting{ScanType: tt.scanType}
			if got := reportedPort(setting, tt.port); got != tt.want {
				t.Errorf("reportedPort() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestComposeProbeBuildsFrameForTCPSynScan(t *testing.T) {
	setting := &scan.Setting{
		SrcMAC:  mustMAC("aa:bb:cc:dd:ee:01"),
		DstMAC:  mustMAC("aa:bb:cc:dd:ee:02"),
		SrcIP:   net.ParseIP("192.168.1.10"),
		SrcPort: 41000,
		ScanType: scan.TCPSynScan,
	}

	frame, err := composeProbe(setting, net.ParseIP("192.168.1.20"), 80, 1)
	if err != nil {
		t.Fatalf("composeProbe: %v", err)
	}
	if len(frame) == 0 {
		t.Fatal("expected non-empty frame for TCPSynScan")
	}
}

func TestComposeProbeUnknownScanTypeYieldsNilFrame(t *testing.T) {
	setting := &scan.Setting{
		SrcMAC:   mustMAC("aa:bb:cc:dd:ee:01"),
		DstMAC:   mustMAC("aa:bb:cc:dd:ee:02"),
		SrcIP:    net.ParseIP("192.168.1.10"),
		ScanType: scan.Type(99),
	}
	frame, err := composeProbe(setting, net.ParseIP("192.168.1.20"), 0, 1)
	if err != nil {
		t.Fatalf("composeProbe: %v", err)
	}
	if frame != nil {
		t.Errorf("expected nil frame for unknown scan type, got %d bytes", len(frame))
	}
}

func mustMAC(s string) net.HardwareAddr {
	mac, err := net.ParseMAC(s)
	if err != nil {
		panic(err)
	}
	return mac
}
