// Package orchestrate runs the Scan Orchestrator (§4.6): for one scan
// invocation it builds the capture filter, opens the datalink channel,
// spawns the listener, runs the emitter, and joins the listener before
// handing captured frames to the correlator.
package orchestrate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ardakoroglu/synreach/internal/capture"
	"github.com/ardakoroglu/synreach/internal/correlate"
	"github.com/ardakoroglu/synreach/internal/datalink"
	"github.com/ardakoroglu/synreach/internal/emit"
	"github.com/ardakoroglu/synreach/internal/scan"
)

// listenerWaitTime is the fixed pre-roll delay (§4.6 step 5) that arms
// the listener before any probe departs.
const listenerWaitTime = 50 * time.Millisecond

// Run executes one scan invocation to completion and returns its
// result. progress, if non-nil, receives a scan.Progress for each
// probe emitted (or dial attempted, for TCPConnectScan) on a
// best-effort basis: a send that would block on a full channel is
// dropped. Callers that don't need live updates may pass nil.
func Run(setting *scan.Setting, progress chan<- scan.Progress) *scan.Result {
	started := time.Now()
	setting = setting.Clone()

	ifc, err := resolveInterface(setting)
	if err != nil {
		return &scan.Result{Status: scan.StatusError}
	}
	_ = ifc

	opts := captureOptionsFor(setting)

	if setting.ScanType == scan.TCPConnectScan {
		return runConnectScan(setting, opts, progress, started)
	}
	return runDatalinkScan(setting, opts, progress, started)
}

func runDatalinkScan(setting *scan.Setting, opts scan.CaptureOptions, progress chan<- scan.Progress, started time.Time) *scan.Result {
	channel, err := datalink.Open(setting.IfName, setting.WaitTime)
	if err != nil {
		return &scan.Result{Status: scan.StatusError, ScanTime: time.Since(started)}
	}
	defer channel.Close()

	if filter := bpfFilter(setting, opts); filter != "" {
		if err := channel.SetBPFFilter(filter); err != nil {
			return &scan.Result{Status: scan.StatusError, ScanTime: time.Since(started)}
		}
	}

	listener := capture.New(channel, opts)
	done := make(chan struct{})
	go func() {
		listener.Run()
		close(done)
	}()

	time.Sleep(listenerWaitTime) // pre-roll, §4.6 step 5

	emit.Datalink(channel, setting, progress)

	time.Sleep(setting.WaitTime) // post-roll, §4.6 step 7

	listener.Stop()
	<-done

	result := correlate.Run(setting, listener.Frames())
	result.ScanTime = time.Since(started)
	return result
}

func runConnectScan(setting *scan.Setting, opts scan.CaptureOptions, progress chan<- scan.Progress, started time.Time) *scan.Result {
	channel, err := datalink.Open(setting.IfName, setting.WaitTime)
	if err != nil {
		return &scan.Result{Status: scan.StatusError, ScanTime: time.Since(started)}
	}
	defer channel.Close()

	if filter := bpfFilter(setting, opts); filter != "" {
		if err := channel.SetBPFFilter(filter); err != nil {
			return &scan.Result{Status: scan.StatusError, ScanTime: time.Since(started)}
		}
	}

	listener := capture.New(channel, opts)
	done := make(chan struct{})
	go func() {
		listener.Run()
		close(done)
	}()

	time.Sleep(listenerWaitTime)

	timedOut := emit.Connect(setting, progress)

	time.Sleep(setting.WaitTime)

	listener.Stop()
	<-done

	result := correlate.Run(setting, listener.Frames())
	result.ScanTime = time.Since(started)
	if timedOut {
		result.Status = scan.StatusTimeout
	}
	return result
}

// bpfFilter builds the kernel-level pre-filter installed on the
// datalink channel: a coarse protocol + destination-host expression,
// cheap for the kernel to evaluate per packet. It is deliberately
// loose — the listener's own accept() re-check (§4.3) still applies
// the exact source-IP/port match, since BPF can't express the
// per-target port sets a multi-host scan needs.
func bpfFilter(setting *scan.Setting, opts scan.CaptureOptions) string {
	protoNames := map[scan.IPProtocol]string{
		scan.ProtoTCP:    "tcp",
		scan.ProtoUDP:    "udp",
		scan.ProtoICMP:   "icmp",
		scan.ProtoICMPv6: "icmp6",
	}

	var protos []string
	for proto := range opts.IPProtocols {
		if name, ok := protoNames[proto]; ok {
			protos = append(protos, name)
		}
	}
	if len(protos) == 0 {
		return ""
	}
	sort.Strings(protos)

	expr := "(" + strings.Join(protos, " or ") + ")"
	if setting.SrcIP != nil {
		expr += fmt.Sprintf(" and dst host %s", setting.SrcIP.String())
	}
	return expr
}

func captureOptionsFor(setting *scan.Setting) scan.CaptureOptions {
	opts := scan.CaptureOptions{
		SrcIPs:      scan.NewSrcIPSet(setting.Targets),
		IPProtocols: scan.ProtocolsFor(setting.ScanType),
		Duration:    setting.Timeout,
		ReadTimeout: setting.WaitTime,
		Store:       true,
		StoreLimit:  storeLimitFor(setting),
		Tunnel:      setting.Tunnel,
		Loopback:    setting.Loopback,
	}
	if setting.ScanType.IsPortScan() {
		opts.SrcPorts = scan.NewSrcPortSet(setting.Targets)
	}
	return opts
}

// storeLimitFor bounds the capture buffer generously above the largest
// plausible reply count (at most one reply per probed port, per host).
func storeLimitFor(setting *scan.Setting) int {
	total := 0
	for _, t := range setting.Targets {
		if len(t.Ports) == 0 {
			total++
		} else {
			total += len(t.Ports)
		}
	}
	if total < 256 {
		total = 256
	}
	return total * 4
}
