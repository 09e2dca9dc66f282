package scan

import "net"

// Progress is one emitter notification: a single (target, port) probe
// has just been sent (or, for the connect emitter, a socket address just
// dialed). Ping modes publish Port 0.
type Progress struct {
	IPAddr net.IP
	Port   uint16
}
