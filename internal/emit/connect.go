package emit

import (
	"fmt"
	"net"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ardakoroglu/synreach/internal/scan"
)

// connectTimeout is the fixed per-attempt connect timeout (§4.4.1),
// independent of send_rate.
const connectTimeout = 200 * time.Millisecond

// connectJob is one (target, port) pair awaiting a dial attempt.
type connectJob struct {
	ip   net.IP
	port uint16
}

// Connect runs the TCP-connect emitter (§4.4.1): one OS-socket connect
// per (target, port), parallel across the ports of a single target, via
// a bounded worker pool of goroutines reading from a shared jobs
// channel. It never touches the datalink path — the capture listener
// alone produces verdicts from the SYN+ACK/RST+ACK it observes on the
// return path.
//
// Connect reports whether its own timeout budget was exhausted with
// jobs still pending; the orchestrator derives the StatusTimeout
// verdict from that signal rather than from overall wall-clock, since
// the pre-roll, post-roll and correlation steps fall outside this
// budget.
func Connect(setting *scan.Setting, progress chan<- scan.Progress) bool {
	deadline := time.Now().Add(setting.Timeout)

	concurrency := runtime.NumCPU()
	if concurrency < 1 {
		concurrency = 1
	}

	timedOut := false
	for _, target := range setting.Targets {
		if time.Now().After(deadline) {
			timedOut = true
			break
		}
		if runTarget(target, deadline, concurrency, progress) {
			timedOut = true
		}
	}
	return timedOut
}

func runTarget(target scan.HostTarget, deadline time.Time, concurrency int, progress chan<- scan.Progress) bool {
	jobs := make(chan connectJob, len(target.Ports))
	for _, port := range target.Ports {
		jobs <- connectJob{ip: target.IPAddr, port: port}
	}
	close(jobs)

	if concurrency > len(target.Ports) && len(target.Ports) > 0 {
		concurrency = len(target.Ports)
	}
	if concurrency < 1 {
		concurrency = 1
	}

	var skipped atomic.Bool
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			connectWorker(jobs, deadline, progress, &skipped)
		}()
	}
	wg.Wait()
	return skipped.Load()
}

// connectWorker dials every job it reads until jobs closes. A job seen
// after deadline has passed is left undialed and recorded as skipped,
// rather than attempted anyway.
func connectWorker(jobs <-chan connectJob, deadline time.Time, progress chan<- scan.Progress, skipped *atomic.Bool) {
	for job := range jobs {
		if time.Now().After(deadline) {
			skipped.Store(true)
			continue
		}
		dial(job, progress)
	}
}

func dial(job connectJob, progress chan<- scan.Progress) {
	addr := net.JoinHostPort(job.ip.String(), fmt.Sprintf("%d", job.port))
	conn, err := net.DialTimeout("tcp", addr, connectTimeout)
	if err == nil {
		conn.Close()
	}
	// A refused or timed-out dial is not a failure worth reporting: the
	// capture listener's own classification of the RST+ACK/SYN+ACK it
	// observed is authoritative.
	publish(progress, job.ip, job.port)
}
