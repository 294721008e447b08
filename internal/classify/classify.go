package classify

import (
	"encoding/binary"
	"errors"
	"net"

	"netsentinel/internal/model"
)

// Byte offsets of the fields we extract from an Ethernet/IPv4 frame.
const (
	etherTypeOffset = 12
	ipHeaderOffset  = 14
	protocolOffset  = 23
	srcIPOffset     = 26
	dstIPOffset     = 30

	// minFrameLen covers the Ethernet header plus a minimal IPv4 header,
	// up to and including the destination IP.
	minFrameLen = 34

	etherTypeIPv4 = 0x0800
)

var (
	// ErrTruncated is returned for frames too short to hold the fields
	// being read, including transport ports past a long IPv4 header.
	ErrTruncated = errors.New("frame too short")

	// ErrNotIPv4 is returned for frames whose EtherType is not IPv4.
	ErrNotIPv4 = errors.New("not an IPv4 frame")
)

// Classify extracts the flow descriptor from a raw Ethernet frame.
// Malformed and non-IPv4 frames are rejected with an error and produce no
// descriptor. Classify is a pure function of its input.
func Classify(frame model.RawFrame) (*model.PacketInfo, error) {
	data := frame.Data
	if len(data) < minFrameLen {
		return nil, ErrTruncated
	}
	if etherType(data) != etherTypeIPv4 {
		return nil, ErrNotIPv4
	}

	srcPort, dstPort, err := transportPorts(data, ipHeaderLen(data))
	if err != nil {
		return nil, err
	}

	return &model.PacketInfo{
		Timestamp: frame.Timestamp,
		Length:    len(data),
		FiveTuple: model.FiveTuple{
			SrcIP:    srcIP(data),
			DstIP:    dstIP(data),
			SrcPort:  srcPort,
			DstPort:  dstPort,
			Protocol: protocol(data),
		},
	}, nil
}

// etherType reads the big-endian EtherType field of the Ethernet header.
func etherType(data []byte) uint16 {
	return binary.BigEndian.Uint16(data[etherTypeOffset:])
}

// ipHeaderLen returns the IPv4 header length in bytes, decoded from the IHL
// field in the first header byte.
func ipHeaderLen(data []byte) int {
	return int(data[ipHeaderOffset]&0x0f) * 4
}

func protocol(data []byte) uint8 {
	return data[protocolOffset]
}

func srcIP(data []byte) net.IP {
	return net.IP(data[srcIPOffset : srcIPOffset+4])
}

func dstIP(data []byte) net.IP {
	return net.IP(data[dstIPOffset : dstIPOffset+4])
}

// transportPorts reads the source and destination ports immediately after the
// IPv4 header. The frame must cover both 16-bit fields; a frame cut short
// inside the transport header is rejected rather than read out of bounds.
func transportPorts(data []byte, headerLen int) (uint16, uint16, error) {
	off := ipHeaderOffset + headerLen
	if len(data) < off+4 {
		return 0, 0, ErrTruncated
	}
	return binary.BigEndian.Uint16(data[off:]), binary.BigEndian.Uint16(data[off+2:]), nil
}
