package detect

import (
	"sync"
	"time"

	"netsentinel/internal/model"
)

// Alert reasons emitted by the detector.
const (
	ReasonSuspiciousPort = "Suspicious port access"
	ReasonFlood          = "Port scan or flooding detected"
)

const (
	// burstWindow is the length of the per-source measurement window.
	// Counts reset fully on rollover; they are never decayed.
	burstWindow = 10 * time.Second

	// burstThreshold is the hit count above which a source is flagged.
	burstThreshold = 50
)

// suspiciousPorts lists well-known telnet, SMB, database and backdoor ports.
var suspiciousPorts = map[uint16]struct{}{
	23:    {},
	445:   {},
	1433:  {},
	3389:  {},
	31337: {},
}

// ipHits tracks one source address within the current window.
type ipHits struct {
	count       uint32
	windowStart time.Time
}

// Detector flags packets aimed at suspicious destination ports and detects
// per-source scan/flood bursts inside a rolling time window. It is safe for
// use from a single capture worker; the hit map is guarded for callers that
// observe from more than one goroutine.
type Detector struct {
	mu   sync.Mutex
	hits map[string]*ipHits

	// now is the clock used for window arithmetic, replaceable in tests.
	now func() time.Time
}

// New creates a Detector with an empty hit map.
func New() *Detector {
	return &Detector{
		hits: make(map[string]*ipHits),
		now:  time.Now,
	}
}

// Observe runs both detection rules against one classified packet and returns
// the alerts it fired, if any. The suspicious-port rule is independent of the
// burst rule; both can fire for the same packet.
func (d *Detector) Observe(info *model.PacketInfo) []model.Alert {
	now := d.now()

	var alerts []model.Alert
	if _, ok := suspiciousPorts[info.FiveTuple.DstPort]; ok {
		alerts = append(alerts, model.NewAlert(info, ReasonSuspiciousPort, now))
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	key := info.FiveTuple.SrcIP.String()
	rec, ok := d.hits[key]
	if !ok {
		rec = &ipHits{windowStart: now}
		d.hits[key] = rec
	}
	rec.count++

	switch {
	case now.Sub(rec.windowStart) > burstWindow:
		// Window rollover takes precedence over the threshold: the packet
		// that crosses the boundary restarts the count and is never flagged.
		rec.count = 1
		rec.windowStart = now
	case rec.count > burstThreshold:
		alerts = append(alerts, model.NewAlert(info, ReasonFlood, now))
		rec.count = 0
		rec.windowStart = now
	}

	return alerts
}

// TrackedSources returns the number of source addresses currently held in the
// hit map. Entries are never evicted, so this grows without bound under
// wide-address scans; see the known limitations in DESIGN.md.
func (d *Detector) TrackedSources() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.hits)
}
