package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"strata/internal/driver"
	"strata/internal/pipeline"
	"strata/internal/ui"
)

// runBuildWithUI drives the build on a background goroutine while the
// Bubble Tea program consumes its progress events.
func runBuildWithUI(ctx context.Context, cfg driver.Config, d *driver.Driver) error {
	units, err := driver.ListUnits(cfg.SourceRoot)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	events := make(chan pipeline.Event, 256)
	outcome := make(chan error, 1)

	go func() {
		d.Sink = pipeline.ChannelSink{Ch: events}
		outcome <- d.Run(ctx)
		close(events)
	}()

	model := ui.NewProgressModel("strata build", units, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	runErr := <-outcome
	if uiErr != nil {
		return uiErr
	}
	return runErr
}
