package stats

import (
	"sync"

	"netsentinel/internal/model"
)

// Store holds the aggregate counters shared between the capture worker and
// the presentation worker. One mutex guards all counters and the alert list;
// it is held only for the duration of a single increment or snapshot.
type Store struct {
	mu     sync.Mutex
	total  uint64
	tcp    uint64
	udp    uint64
	alerts []model.Alert
}

// Snapshot is a consistent copy of the store taken at one instant.
type Snapshot struct {
	TotalPackets uint64        `json:"total_packets"`
	TCPPackets   uint64        `json:"tcp_packets"`
	UDPPackets   uint64        `json:"udp_packets"`
	Alerts       []model.Alert `json:"alerts"`
}

// New creates an empty Store.
func New() *Store {
	return &Store{}
}

// Record counts one classified packet under the given protocol label.
func (s *Store) Record(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	switch label {
	case "TCP":
		s.tcp++
	case "UDP":
		s.udp++
	}
}

// AddAlert appends an alert to the store's ordered alert list.
func (s *Store) AddAlert(a model.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, a)
}

// Snapshot returns a copy of all counters and the alert list. The returned
// alert slice is owned by the caller; mutating it does not affect the store.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	alerts := make([]model.Alert, len(s.alerts))
	copy(alerts, s.alerts)
	return Snapshot{
		TotalPackets: s.total,
		TCPPackets:   s.tcp,
		UDPPackets:   s.udp,
		Alerts:       alerts,
	}
}
