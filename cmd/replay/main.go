package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/viewspace/internal/ingest"
	"github.com/danielpatrickdp/viewspace/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	bundlePath := flag.String("bundle", "", "path to an ingestion bundle (trace mode)")
	steps := flag.String("steps", "cluster", "comma-separated actions for trace mode, e.g. cluster,next,like,goto:3")
	flag.Parse()

	if (*bundlePath == "" && *fixturePath == "") || (*bundlePath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json")
		fmt.Fprintln(os.Stderr, "       replay --bundle path/to/bundle.json [--steps cluster,next,like]")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runTraceMode(*bundlePath, *steps)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region fixture-mode

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}
	bundle, err := f.ToBundle()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}

	results, err := replay.Replay(context.Background(), bundle, f.ToSteps(), f.Config.ToReplayConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 1
	}

	printTrace(results)
	mismatches := f.Check(results)
	for _, m := range mismatches {
		fmt.Printf("DIFF %s\n", m)
	}
	fmt.Printf("\nSummary: %d steps, %d diverge\n", len(results), len(mismatches))
	if len(mismatches) > 0 {
		return 1
	}
	return 0
}

// #endregion fixture-mode

// #region trace-mode

func runTraceMode(path, raw string) int {
	bundle, err := ingest.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load bundle: %v\n", err)
		return 2
	}
	steps, err := parseSteps(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}

	results, err := replay.Replay(context.Background(), bundle, steps, replay.DefaultReplayConfig())
	printTrace(results)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 1
	}

	s := replay.Summarize(results)
	fmt.Printf("\nSummary: %d steps, %d clusterings, %d navigations, %d likes, %d rejected, final page %d/%d\n",
		s.TotalSteps, s.Clusterings, s.Navigations, s.Likes, s.Rejected, s.FinalPage+1, s.FinalPages)
	return 0
}

// parseSteps reads "action" or "action:arg" items.
func parseSteps(raw string) ([]replay.Step, error) {
	var steps []replay.Step
	for i, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		step := replay.Step{StepID: fmt.Sprintf("step-%d", i+1), Action: item}
		if action, arg, ok := strings.Cut(item, ":"); ok {
			n, err := strconv.Atoi(arg)
			if err != nil {
				return nil, fmt.Errorf("step %q: invalid argument: %w", item, err)
			}
			step.Action = action
			step.Arg = n
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// #endregion trace-mode

// #region output

func printTrace(results []replay.ReplayResult) {
	fmt.Printf("%-10s| %-20s| %-6s| %-6s| %-14s| %s\n", "Step", "Action", "Page", "Liked", "Associations", "Note")
	fmt.Printf("%-10s+%-21s+%-7s+%-7s+%-15s+%s\n",
		"----------", "---------------------", "-------", "-------", "---------------", "------")
	for _, r := range results {
		note := r.Reason
		if r.Report != nil {
			note = fmt.Sprintf("mode=%s groups=%d", r.Report.Mode, r.Report.Groups)
			if r.Report.Eval != nil {
				note += " " + r.Report.Eval.Reason
			}
		}
		fmt.Printf("%-10s| %-20s| %-6s| %-6v| %-14s| %s\n",
			r.StepID, r.Action, fmt.Sprintf("%d/%d", r.Page+1, r.Pages), r.Liked, fmt.Sprint(r.Associations), note)
	}
}

// #endregion output
