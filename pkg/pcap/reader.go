package pcap

import (
	"github.com/google/gopacket/pcap"

	"netsentinel/internal/model"
)

// Reader replays frames from a pcap file through the same pipeline as live
// capture. It implements model.FrameSource.
type Reader struct {
	handle *pcap.Handle
}

// NewReader opens the pcap file at the given path.
func NewReader(filePath string) (*Reader, error) {
	handle, err := pcap.OpenOffline(filePath)
	if err != nil {
		return nil, err
	}
	return &Reader{handle: handle}, nil
}

// Next returns the next frame with its recorded capture timestamp, or io.EOF
// once the file is exhausted.
func (r *Reader) Next() (model.RawFrame, error) {
	data, ci, err := r.handle.ReadPacketData()
	if err != nil {
		return model.RawFrame{}, err
	}
	return model.RawFrame{Data: data, Timestamp: ci.Timestamp}, nil
}

// Close closes the pcap handle.
func (r *Reader) Close() {
	r.handle.Close()
}
