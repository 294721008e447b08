package model

import (
	"net"
	"time"
)

// RawFrame is a single captured link-layer frame. The data slice is owned by
// the frame source and is only valid until the next call to Next.
type RawFrame struct {
	Data      []byte
	Timestamp time.Time
}

// FiveTuple represents the 5-tuple of a network packet.
type FiveTuple struct {
	SrcIP    net.IP
	DstIP    net.IP
	SrcPort  uint16
	DstPort  uint16
	Protocol uint8
}

// PacketInfo holds the metadata extracted from a single classified packet.
type PacketInfo struct {
	Timestamp time.Time
	FiveTuple FiveTuple
	Length    int
}

// ProtocolLabel maps the IPv4 protocol number to the label used in counters
// and alert records.
func (p *PacketInfo) ProtocolLabel() string {
	switch p.FiveTuple.Protocol {
	case 6:
		return "TCP"
	case 17:
		return "UDP"
	default:
		return "Other"
	}
}

// FrameSource delivers raw link-layer frames in capture order.
// Next returns io.EOF when the stream is exhausted.
type FrameSource interface {
	Next() (RawFrame, error)
	Close()
}

// AlertSink persists alert records.
type AlertSink interface {
	Write(alert Alert) error
	Close() error
}
