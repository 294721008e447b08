package sink

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"netsentinel/internal/config"
	"netsentinel/internal/model"
)

const createAlertsTable = `
CREATE TABLE IF NOT EXISTS alerts (
    Timestamp  DateTime,
    SourceIP   String,
    DestIP     String,
    SourcePort UInt16,
    DestPort   UInt16,
    Protocol   String,
    Reason     String
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (SourceIP, Timestamp);
`

// flushThreshold is the number of buffered alerts that triggers a batch insert.
const flushThreshold = 64

// ClickHouseSink buffers alerts and inserts them into ClickHouse in batches.
type ClickHouseSink struct {
	conn    driver.Conn
	mu      sync.Mutex
	pending []model.Alert
}

// NewClickHouseSink connects to ClickHouse and ensures the alerts table exists.
func NewClickHouseSink(cfg config.ClickHouseConfig) (*ClickHouseSink, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	if err := conn.Exec(context.Background(), createAlertsTable); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	log.Println("Successfully connected to ClickHouse and ensured table exists.")

	return &ClickHouseSink{conn: conn}, nil
}

func connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

// Write buffers one alert, flushing a full batch when the buffer is large
// enough. Buffering keeps the capture path off the network for most packets.
func (s *ClickHouseSink) Write(alert model.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, alert)
	if len(s.pending) >= flushThreshold {
		return s.flushLocked()
	}
	return nil
}

// Flush inserts all buffered alerts immediately.
func (s *ClickHouseSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *ClickHouseSink) flushLocked() error {
	if len(s.pending) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(context.Background(), "INSERT INTO alerts")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, alert := range s.pending {
		ts, err := time.Parse(time.RFC3339, alert.Timestamp)
		if err != nil {
			ts = time.Now().UTC()
		}
		if err := batch.Append(
			ts,
			alert.SourceIP,
			alert.DestIP,
			alert.SourcePort,
			alert.DestPort,
			alert.Protocol,
			alert.Reason,
		); err != nil {
			return fmt.Errorf("failed to append alert to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	s.pending = s.pending[:0]
	return nil
}

// Close flushes any buffered alerts and closes the connection.
func (s *ClickHouseSink) Close() error {
	if err := s.Flush(); err != nil {
		log.Printf("Error flushing alerts on close: %v", err)
	}
	return s.conn.Close()
}
