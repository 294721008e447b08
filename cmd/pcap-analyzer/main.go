package main

import (
	"fmt"
	"log"
	"os"

	"netsentinel/internal/detect"
	"netsentinel/internal/model"
	"netsentinel/internal/monitor"
	"netsentinel/internal/sink"
	"netsentinel/internal/stats"
	"netsentinel/pkg/pcap"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: pcap-analyzer <path_to_pcap_file> [alert_log_path]")
		os.Exit(1)
	}
	pcapFilePath := os.Args[1]

	alertLogPath := "alerts.json"
	if len(os.Args) > 2 {
		alertLogPath = os.Args[2]
	}

	reader, err := pcap.NewReader(pcapFilePath)
	if err != nil {
		log.Fatalf("Failed to open pcap file: %v", err)
	}
	defer reader.Close()

	fileSink, err := sink.NewFileSink(alertLogPath)
	if err != nil {
		log.Fatalf("Failed to open alert log: %v", err)
	}

	store := stats.New()
	mon := monitor.New(reader, detect.New(), store, []model.AlertSink{fileSink}, true)

	log.Printf("Replaying packets from '%s'...", pcapFilePath)
	if err := mon.Run(); err != nil {
		log.Fatalf("Replay failed: %v", err)
	}

	if err := fileSink.Close(); err != nil {
		log.Printf("Error closing alert log: %v", err)
	}
	if err := sink.Finalize(alertLogPath); err != nil {
		log.Fatalf("Failed to finalize alert log: %v", err)
	}

	snap := store.Snapshot()
	log.Printf("Finished. %d packets (%d TCP, %d UDP), %d alerts. Alert log: %s",
		snap.TotalPackets, snap.TCPPackets, snap.UDPPackets, len(snap.Alerts), alertLogPath)
}
