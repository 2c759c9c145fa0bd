package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"dgen/internal/pipeline"
	"dgen/internal/ui"
)

type genOutcome struct {
	results []pipeline.Result
	err     error
}

// runAllWithUI runs reqs while a progress view consumes their events.
func runAllWithUI(ctx context.Context, title string, reqs []*pipeline.Request, jobs int) ([]pipeline.Result, error) {
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan genOutcome, 1)

	files := make([]string, 0, len(reqs))
	copies := make([]*pipeline.Request, 0, len(reqs))
	for _, req := range reqs {
		reqCopy := *req
		reqCopy.Progress = pipeline.ChannelSink{Ch: events}
		copies = append(copies, &reqCopy)
		files = append(files, req.DisplayName())
	}

	last := pipeline.StageWrite
	if len(reqs) > 0 && reqs[0].DryRun {
		last = pipeline.StageEmit
	}

	go func() {
		results, err := pipeline.RunAll(ctx, copies, jobs)
		outcomeCh <- genOutcome{results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, last, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
