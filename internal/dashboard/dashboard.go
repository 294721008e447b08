package dashboard

import (
	"fmt"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"netsentinel/internal/stats"
)

// refreshInterval bounds how long the presentation worker waits for input
// before taking a fresh snapshot and re-rendering.
const refreshInterval = 500 * time.Millisecond

// maxVisibleAlerts caps the alert tail shown in the alert panel.
const maxVisibleAlerts = 50

// Run owns the terminal until the user quits with 'q' (or Ctrl-C). It is the
// presentation worker: a read-only consumer of store snapshots, decoupled
// from the capture worker except for the store itself.
func Run(store *stats.Store) error {
	if err := ui.Init(); err != nil {
		return fmt.Errorf("failed to init termui: %w", err)
	}
	defer ui.Close()

	header := widgets.NewParagraph()
	header.Text = "netsentinel (press 'q' to quit)"
	header.Border = true
	header.BorderStyle.Fg = ui.ColorGreen

	counters := widgets.NewParagraph()
	counters.Title = " Traffic "
	counters.BorderStyle.Fg = ui.ColorYellow

	alertList := widgets.NewList()
	alertList.Title = " Alerts "
	alertList.TextStyle = ui.NewStyle(ui.ColorRed)
	alertList.BorderStyle.Fg = ui.ColorRed

	grid := ui.NewGrid()
	termWidth, termHeight := ui.TerminalDimensions()
	grid.SetRect(0, 0, termWidth, termHeight)
	grid.Set(
		ui.NewRow(0.15, ui.NewCol(1.0, header)),
		ui.NewRow(0.15, ui.NewCol(1.0, counters)),
		ui.NewRow(0.70, ui.NewCol(1.0, alertList)),
	)

	start := time.Now()

	render := func() {
		// Snapshot first; no rendering happens while the store is locked.
		snap := store.Snapshot()

		counters.Text = fmt.Sprintf("Uptime: %s | Total: %d | TCP: %d | UDP: %d | Alerts: %d",
			time.Since(start).Truncate(time.Second),
			snap.TotalPackets, snap.TCPPackets, snap.UDPPackets, len(snap.Alerts))

		rows := make([]string, 0, maxVisibleAlerts)
		alerts := snap.Alerts
		if len(alerts) > maxVisibleAlerts {
			alerts = alerts[len(alerts)-maxVisibleAlerts:]
		}
		// Newest first.
		for i := len(alerts) - 1; i >= 0; i-- {
			a := alerts[i]
			rows = append(rows, fmt.Sprintf("%s  %s  %s:%d -> %s:%d  %s",
				a.Timestamp, a.Protocol, a.SourceIP, a.SourcePort, a.DestIP, a.DestPort, a.Reason))
		}
		if len(rows) == 0 {
			rows = append(rows, "No alerts yet.")
		}
		alertList.Rows = rows

		ui.Render(grid)
	}
	render()

	uiEvents := ui.PollEvents()
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case e := <-uiEvents:
			switch e.ID {
			case "q", "<C-c>":
				return nil
			}
			if e.Type == ui.ResizeEvent {
				payload := e.Payload.(ui.Resize)
				grid.SetRect(0, 0, payload.Width, payload.Height)
				ui.Clear()
				render()
			}
		case <-ticker.C:
			render()
		}
	}
}
