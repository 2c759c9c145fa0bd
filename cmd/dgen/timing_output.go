package main

import (
	"fmt"
	"io"
	"time"

	"dgen/internal/observ"
	"dgen/internal/pipeline"
)

var stageVerbs = map[pipeline.Stage]string{
	pipeline.StageLoad:    "loaded",
	pipeline.StageAugment: "augmented",
	pipeline.StageEmit:    "emitted",
	pipeline.StageWrite:   "wrote",
}

func printStageTimings(out io.Writer, file string, timings pipeline.Timings) {
	if out == nil {
		return
	}
	for _, stage := range pipeline.Stages {
		if !timings.Has(stage) {
			continue
		}
		if _, err := fmt.Fprintf(out, "%s: %s %.1f ms\n", file, stageVerbs[stage], toMillis(timings.Duration(stage))); err != nil {
			panic(err)
		}
	}
}

func printRunSummary(out io.Writer, stats *observ.Stats, timer *observ.Timer) {
	if out == nil {
		return
	}
	if s := stats.Summary(); s != "" {
		fmt.Fprint(out, s)
	}
	if s := timer.Summary(); s != "" {
		fmt.Fprint(out, s)
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
