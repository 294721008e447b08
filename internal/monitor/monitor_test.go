package monitor

import (
	"encoding/json"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netsentinel/internal/detect"
	"netsentinel/internal/model"
	"netsentinel/internal/sink"
	"netsentinel/internal/stats"
)

// sliceSource replays a fixed set of frames, then reports end of stream.
type sliceSource struct {
	frames []model.RawFrame
	next   int
}

func (s *sliceSource) Next() (model.RawFrame, error) {
	if s.next >= len(s.frames) {
		return model.RawFrame{}, io.EOF
	}
	f := s.frames[s.next]
	s.next++
	return f, nil
}

func (s *sliceSource) Close() {}

// memorySink records every alert it is handed.
type memorySink struct {
	alerts []model.Alert
}

func (m *memorySink) Write(a model.Alert) error {
	m.alerts = append(m.alerts, a)
	return nil
}

func (m *memorySink) Close() error { return nil }

func tcpFrame(t *testing.T, srcIP string, dstPort uint16) model.RawFrame {
	t.Helper()

	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		DstMAC:       net.HardwareAddr{0x00, 0x66, 0x77, 0x88, 0x99, 0xAA},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    net.ParseIP(srcIP),
		DstIP:    net.ParseIP("10.0.0.5"),
	}
	tcp := &layers.TCP{SrcPort: 40000, DstPort: layers.TCPPort(dstPort), SYN: true}
	tcp.SetNetworkLayerForChecksum(ip)

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, eth, ip, tcp))
	return model.RawFrame{Data: buf.Bytes(), Timestamp: time.Now()}
}

func udpFrame(t *testing.T, srcIP string, dstPort uint16) model.RawFrame {
	t.Helper()

	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		DstMAC:       net.HardwareAddr{0x00, 0x66, 0x77, 0x88, 0x99, 0xAA},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.ParseIP(srcIP),
		DstIP:    net.ParseIP("10.0.0.5"),
	}
	udp := &layers.UDP{SrcPort: 53000, DstPort: layers.UDPPort(dstPort)}
	udp.SetNetworkLayerForChecksum(ip)

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, eth, ip, udp, gopacket.Payload([]byte("query"))))
	return model.RawFrame{Data: buf.Bytes(), Timestamp: time.Now()}
}

func TestRunClassifiesCountsAndAlerts(t *testing.T) {
	source := &sliceSource{frames: []model.RawFrame{
		tcpFrame(t, "192.168.1.10", 80),
		tcpFrame(t, "192.168.1.11", 443),
		udpFrame(t, "192.168.1.12", 53),
		tcpFrame(t, "192.168.1.13", 23), // suspicious destination port
		{Data: []byte{0x00, 0x01, 0x02}, Timestamp: time.Now()}, // malformed, dropped
	}}

	store := stats.New()
	sink := &memorySink{}
	mon := New(source, detect.New(), store, []model.AlertSink{sink}, false)

	require.NoError(t, mon.Run())

	snap := store.Snapshot()
	assert.Equal(t, uint64(4), snap.TotalPackets)
	assert.Equal(t, uint64(3), snap.TCPPackets)
	assert.Equal(t, uint64(1), snap.UDPPackets)

	require.Len(t, sink.alerts, 1)
	assert.Equal(t, detect.ReasonSuspiciousPort, sink.alerts[0].Reason)
	assert.Equal(t, "192.168.1.13", sink.alerts[0].SourceIP)

	// Alerts are mirrored into the shared store for the presentation path.
	require.Len(t, snap.Alerts, 1)
	assert.Equal(t, sink.alerts[0], snap.Alerts[0])
}

// blockingSource behaves like a live capture handle: it hands out buffered
// frames, then blocks until Close unblocks the read with end of stream.
type blockingSource struct {
	frames chan model.RawFrame
	closed chan struct{}
}

func newBlockingSource(frames ...model.RawFrame) *blockingSource {
	s := &blockingSource{
		frames: make(chan model.RawFrame, len(frames)),
		closed: make(chan struct{}),
	}
	for _, f := range frames {
		s.frames <- f
	}
	return s
}

func (s *blockingSource) Next() (model.RawFrame, error) {
	// Drain delivered frames before reporting end of stream.
	select {
	case f := <-s.frames:
		return f, nil
	default:
	}
	select {
	case f := <-s.frames:
		return f, nil
	case <-s.closed:
		return model.RawFrame{}, io.EOF
	}
}

func (s *blockingSource) Close() {
	close(s.closed)
}

// slowSink delays every write, keeping alerts in flight across a shutdown.
type slowSink struct {
	inner model.AlertSink
}

func (s *slowSink) Write(a model.Alert) error {
	time.Sleep(20 * time.Millisecond)
	return s.inner.Write(a)
}

func (s *slowSink) Close() error { return s.inner.Close() }

func TestShutdownCommitsInFlightAlertsBeforeFinalize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.json")
	fileSink, err := sink.NewFileSink(path)
	require.NoError(t, err)

	source := newBlockingSource(
		tcpFrame(t, "192.168.1.10", 23),
		tcpFrame(t, "192.168.1.11", 445),
		tcpFrame(t, "192.168.1.12", 3389),
	)
	store := stats.New()
	mon := New(source, detect.New(), store, []model.AlertSink{&slowSink{inner: fileSink}}, false)

	done := make(chan error, 1)
	go func() {
		done <- mon.Run()
	}()

	// Shutdown ordering: unblock the read, join the worker, close the sink,
	// then finalize. Alerts for frames already pulled must land in the log
	// before the rewrite touches it.
	source.Close()
	require.NoError(t, <-done)
	require.NoError(t, fileSink.Close())
	require.NoError(t, sink.Finalize(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var alerts []model.Alert
	require.NoError(t, json.Unmarshal(data, &alerts), "finalized log must be one valid JSON array")
	require.Len(t, alerts, 3)
	assert.Equal(t, "192.168.1.10", alerts[0].SourceIP)
	assert.Equal(t, "192.168.1.12", alerts[2].SourceIP)
}

func TestRunPropagatesSourceErrors(t *testing.T) {
	source := &errorSource{}
	mon := New(source, detect.New(), stats.New(), nil, false)

	err := mon.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capture read failed")
}

type errorSource struct{}

func (e *errorSource) Next() (model.RawFrame, error) {
	return model.RawFrame{}, assert.AnError
}

func (e *errorSource) Close() {}
