package capture

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/gopacket/pcap"

	"netsentinel/internal/model"
)

const (
	snapshotLen int32 = 65535
	promiscuous       = true

	// A finite read timeout keeps Close from waiting on a quiet interface
	// for the next packet; Next loops past the timeout itself.
	timeout = 500 * time.Millisecond
)

// Live captures frames from a network device. It implements model.FrameSource.
type Live struct {
	handle *pcap.Handle
	device string
}

// NewLive opens the named device for promiscuous capture. An empty name
// selects the first device reported by the system.
func NewLive(device string) (*Live, error) {
	if device == "" {
		devices, err := pcap.FindAllDevs()
		if err != nil {
			return nil, fmt.Errorf("failed to enumerate capture devices: %w", err)
		}
		if len(devices) == 0 {
			return nil, errors.New("no capture devices found")
		}
		device = devices[0].Name
	}

	handle, err := pcap.OpenLive(device, snapshotLen, promiscuous, timeout)
	if err != nil {
		return nil, fmt.Errorf("error opening device %s: %w", device, err)
	}
	return &Live{handle: handle, device: device}, nil
}

// Device returns the name of the device being captured.
func (l *Live) Device() string {
	return l.device
}

// Next blocks until a frame arrives and returns it with its capture timestamp.
func (l *Live) Next() (model.RawFrame, error) {
	for {
		data, ci, err := l.handle.ReadPacketData()
		if err == pcap.NextErrorTimeoutExpired {
			continue
		}
		if err != nil {
			return model.RawFrame{}, err
		}
		return model.RawFrame{Data: data, Timestamp: ci.Timestamp}, nil
	}
}

// Close closes the pcap handle. A blocked Next returns an error afterwards.
func (l *Live) Close() {
	l.handle.Close()
}
