package stats

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"netsentinel/internal/model"
)

func TestRecordCounters(t *testing.T) {
	s := New()
	for i := 0; i < 3; i++ {
		s.Record("TCP")
	}
	for i := 0; i < 2; i++ {
		s.Record("UDP")
	}
	s.Record("Other")

	snap := s.Snapshot()
	assert.Equal(t, uint64(6), snap.TotalPackets)
	assert.Equal(t, uint64(3), snap.TCPPackets)
	assert.Equal(t, uint64(2), snap.UDPPackets)
	assert.LessOrEqual(t, snap.TCPPackets+snap.UDPPackets, snap.TotalPackets)
}

func TestSnapshotIsolation(t *testing.T) {
	s := New()
	s.AddAlert(model.Alert{SourceIP: "192.168.1.1", Reason: "Suspicious port access"})

	snap := s.Snapshot()
	assert.Len(t, snap.Alerts, 1)

	// Mutating the returned slice must not leak back into the store.
	snap.Alerts[0].SourceIP = "mutated"
	snap.Alerts = append(snap.Alerts, model.Alert{})

	again := s.Snapshot()
	assert.Len(t, again.Alerts, 1)
	assert.Equal(t, "192.168.1.1", again.Alerts[0].SourceIP)
}

func TestAlertOrderPreserved(t *testing.T) {
	s := New()
	s.AddAlert(model.Alert{Reason: "first"})
	s.AddAlert(model.Alert{Reason: "second"})
	s.AddAlert(model.Alert{Reason: "third"})

	snap := s.Snapshot()
	assert.Equal(t, []string{"first", "second", "third"},
		[]string{snap.Alerts[0].Reason, snap.Alerts[1].Reason, snap.Alerts[2].Reason})
}

func TestConcurrentRecord(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				switch g % 3 {
				case 0:
					s.Record("TCP")
				case 1:
					s.Record("UDP")
				default:
					s.Record("Other")
				}
			}
		}(g)
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.Equal(t, uint64(1000), snap.TotalPackets)
	assert.Equal(t, uint64(400), snap.TCPPackets)
	assert.Equal(t, uint64(300), snap.UDPPackets)
}
