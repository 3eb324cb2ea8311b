// Package connectivity decides whether the app is online. "Online"
// means the device has a usable network interface AND the backend is
// actually reachable; being on a LAN without internet counts as
// offline.
package connectivity

import (
	"context"
	"net"
	"time"
)

// Status is a point-in-time connectivity report.
type Status struct {
	Connected         bool // a non-loopback interface is up
	InternetReachable bool // the backend answered a probe
}

// Online reports whether the app should take the online code path.
func (s Status) Online() bool {
	return s.Connected && s.InternetReachable
}

// Checker produces a Status on demand.
type Checker interface {
	Check(ctx context.Context) Status
}

// Pinger is the probe the checker uses, satisfied by the backend
// client's Ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker combines an interface scan with a backend probe.
type PingChecker struct {
	pinger  Pinger
	timeout time.Duration
}

func NewPingChecker(pinger Pinger, timeout time.Duration) *PingChecker {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &PingChecker{pinger: pinger, timeout: timeout}
}

func (c *PingChecker) Check(ctx context.Context) Status {
	status := Status{Connected: hasActiveInterface()}
	if !status.Connected {
		return status
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	status.InternetReachable = c.pinger.Ping(ctx) == nil
	return status
}

func hasActiveInterface() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp != 0 && iface.Flags&net.FlagLoopback == 0 {
			return true
		}
	}
	return false
}
