package model

import "time"

// Alert is a single detection event. Field names and types follow the
// line-delimited JSON record format written to the alert log.
type Alert struct {
	Timestamp  string `json:"timestamp"`
	SourceIP   string `json:"source_ip"`
	DestIP     string `json:"dest_ip"`
	SourcePort uint16 `json:"source_port"`
	DestPort   uint16 `json:"dest_port"`
	Protocol   string `json:"protocol"`
	Reason     string `json:"alert"`
}

// NewAlert builds an alert record for the given packet.
func NewAlert(info *PacketInfo, reason string, at time.Time) Alert {
	return Alert{
		Timestamp:  at.UTC().Format(time.RFC3339),
		SourceIP:   info.FiveTuple.SrcIP.String(),
		DestIP:     info.FiveTuple.DstIP.String(),
		SourcePort: info.FiveTuple.SrcPort,
		DestPort:   info.FiveTuple.DstPort,
		Protocol:   info.ProtocolLabel(),
		Reason:     reason,
	}
}
