package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"netsentinel/internal/api"
	"netsentinel/internal/capture"
	"netsentinel/internal/config"
	"netsentinel/internal/dashboard"
	"netsentinel/internal/detect"
	"netsentinel/internal/model"
	"netsentinel/internal/monitor"
	"netsentinel/internal/sink"
	"netsentinel/internal/stats"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to the YAML config file.")
	iface := flag.String("iface", "", "Capture device (overrides config; empty picks the first device).")
	scan := flag.Duration("scan", 0, "Run headless capture for this duration, finalize the alert log, then exit.")
	flag.Parse()

	cfg := loadConfig(*configPath)
	if *iface != "" {
		cfg.Capture.Interface = *iface
	}

	store := stats.New()
	detector := detect.New()
	fileSink, sinks := buildSinks(cfg)

	source, err := capture.NewLive(cfg.Capture.Interface)
	if err != nil {
		log.Fatalf("Failed to open capture source: %v", err)
	}
	log.Printf("Capturing on device: %s", source.Device())

	if cfg.API.Enabled {
		api.NewServer(cfg.API.ListenAddr, store).Start()
	}

	headless := *scan > 0
	mon := monitor.New(source, detector, store, sinks, headless)

	captureErr := make(chan error, 1)
	go func() {
		captureErr <- mon.Run()
	}()

	if headless {
		runScan(*scan, source, captureErr)
	} else {
		// The capture worker has no cancellation path; a failure there is
		// reported without tearing down the dashboard.
		captureDone := make(chan struct{})
		go func() {
			if err := <-captureErr; err != nil {
				log.Printf("Capture worker stopped: %v", err)
			}
			close(captureDone)
		}()
		if err := dashboard.Run(store); err != nil {
			log.Printf("Dashboard error: %v", err)
		}
		// Unblock the capture read and wait for the worker to drain the
		// frame in flight. Sinks must not be closed or finalized under it.
		source.Close()
		<-captureDone
	}

	closeSinks(sinks)
	if err := sink.Finalize(fileSink.Path()); err != nil {
		log.Printf("Failed to finalize alert log: %v", err)
	}

	snap := store.Snapshot()
	log.Printf("Done. %d packets (%d TCP, %d UDP), %d alerts. Alert log: %s",
		snap.TotalPackets, snap.TCPPackets, snap.UDPPackets, len(snap.Alerts), fileSink.Path())
}

// runScan lets the capture worker run for the given duration, then closes the
// source so the blocked read returns and the worker exits.
func runScan(d time.Duration, source *capture.Live, captureErr <-chan error) {
	log.Printf("Scanning for %s...", d)
	select {
	case <-time.After(d):
		source.Close()
		<-captureErr
	case err := <-captureErr:
		if err != nil {
			log.Printf("Capture stopped early: %v", err)
		}
		source.Close()
	}
}

// loadConfig falls back to defaults when the default config file is absent;
// an explicitly passed path must load.
func loadConfig(path string) *config.Config {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		if path == defaultConfigPath && errors.Is(err, os.ErrNotExist) {
			log.Printf("No config file at %s, using defaults.", path)
			return config.Default()
		}
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func buildSinks(cfg *config.Config) (*sink.FileSink, []model.AlertSink) {
	fileSink, err := sink.NewFileSink(cfg.Sink.Path)
	if err != nil {
		log.Fatalf("Failed to open alert log: %v", err)
	}
	sinks := []model.AlertSink{fileSink}

	if cfg.NATS.Enabled {
		natsSink, err := sink.NewNATSSink(cfg.NATS)
		if err != nil {
			log.Fatalf("Failed to create NATS sink: %v", err)
		}
		sinks = append(sinks, natsSink)
	}

	if cfg.ClickHouse.Enabled {
		chSink, err := sink.NewClickHouseSink(cfg.ClickHouse)
		if err != nil {
			log.Fatalf("Failed to create ClickHouse sink: %v", err)
		}
		sinks = append(sinks, chSink)
	}

	return fileSink, sinks
}

func closeSinks(sinks []model.AlertSink) {
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			log.Printf("Error closing sink: %v", err)
		}
	}
}
