package monitor

import (
	"errors"
	"fmt"
	"io"
	"log"

	"netsentinel/internal/classify"
	"netsentinel/internal/detect"
	"netsentinel/internal/model"
	"netsentinel/internal/stats"
)

// Monitor is the capture worker: a tight loop that drains a frame source,
// classifies each frame, updates the shared stats store, feeds the detector
// and fans any alerts out to the configured sinks. Each frame is fully
// processed before the next is read.
type Monitor struct {
	source   model.FrameSource
	detector *detect.Detector
	store    *stats.Store
	sinks    []model.AlertSink

	// trace prints one line per classified packet. Disabled while the
	// dashboard owns the terminal.
	trace bool
}

// New wires a capture worker together.
func New(source model.FrameSource, detector *detect.Detector, store *stats.Store, sinks []model.AlertSink, trace bool) *Monitor {
	return &Monitor{
		source:   source,
		detector: detector,
		store:    store,
		sinks:    sinks,
		trace:    trace,
	}
}

// Run processes frames until the source reports end of stream (nil) or fails
// (the wrapped capture error). Malformed and non-IPv4 frames are dropped
// silently; persistence failures are logged and do not stop the loop.
func (m *Monitor) Run() error {
	for {
		frame, err := m.source.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("capture read failed: %w", err)
		}

		info, err := classify.Classify(frame)
		if err != nil {
			continue
		}

		label := info.ProtocolLabel()
		m.store.Record(label)

		if m.trace {
			log.Printf("%s %s:%d -> %s:%d (%d bytes)",
				label,
				info.FiveTuple.SrcIP, info.FiveTuple.SrcPort,
				info.FiveTuple.DstIP, info.FiveTuple.DstPort,
				info.Length)
		}

		for _, alert := range m.detector.Observe(info) {
			m.store.AddAlert(alert)
			for _, sink := range m.sinks {
				if err := sink.Write(alert); err != nil {
					log.Printf("Failed to persist alert: %v", err)
				}
			}
		}
	}
}
