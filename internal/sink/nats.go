package sink

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"

	"netsentinel/internal/config"
	"netsentinel/internal/model"
)

// NATSSink publishes each alert as a JSON message on a NATS subject, for
// consumers that want alerts off-host without tailing the log file.
type NATSSink struct {
	nc      *nats.Conn
	subject string
}

// NewNATSSink connects to the configured NATS server.
func NewNATSSink(cfg config.NATSConfig) (*NATSSink, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Printf("Connected to NATS server at %s", cfg.URL)
	return &NATSSink{nc: nc, subject: cfg.Subject}, nil
}

// Write serializes the alert and publishes it to the configured subject.
func (s *NATSSink) Write(alert model.Alert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	return s.nc.Publish(s.subject, data)
}

// Close drains and closes the NATS connection.
func (s *NATSSink) Close() error {
	if s.nc != nil {
		s.nc.Drain()
		log.Println("NATS connection drained and closed.")
	}
	return nil
}
