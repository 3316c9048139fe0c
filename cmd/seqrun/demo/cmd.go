// Package demo provides the cobra command tree for cmd/seqrun: a built-in
// sample graph and function registry, run through runner.Runner so the
// scheduler can be exercised end to end without a real graph loader.
package demo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/seqengine-go/emit"
	"github.com/dshills/seqengine-go/metrics"
	"github.com/dshills/seqengine-go/runner"
)

var (
	workerPoolSize int
	timeoutMs      int
	jsonLog        bool
)

// Execute runs the demo CLI and returns a process exit code.
func Execute() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	return exitCode
}

// exitCode is set by runCmd's RunE from the scheduler Outcome, since
// cobra's Execute itself only reports wiring errors.
var exitCode int

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "seqrun",
		Short:         "Run a built-in sample sequence graph",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().IntVar(&workerPoolSize, "workers", 4, "worker pool size")
	root.PersistentFlags().IntVar(&timeoutMs, "timeout-ms", 2000, "default function node timeout in milliseconds")
	root.PersistentFlags().BoolVar(&jsonLog, "json", false, "emit events as JSON lines")
	root.AddCommand(newRunCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the demo CLI version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("seqrun demo 0.1.0")
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute the sample graph once",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, functions, constants, err := sampleGraph()
			if err != nil {
				return err
			}

			emitter := emit.NewLogEmitter(os.Stdout, jsonLog)
			m := metrics.New(nil)

			r, err := runner.New(g, functions, constants,
				runner.WithWorkerPoolSize(workerPoolSize),
				runner.WithDefaultTimeout(time.Duration(timeoutMs)*time.Millisecond),
				runner.WithEmitter(emitter),
				runner.WithMetrics(m),
			)
			if err != nil {
				return err
			}

			outcome := r.Run(context.Background(), "demo-run")
			exitCode = outcome.ExitCode()

			if len(outcome.FailedTests) > 0 {
				b, _ := json.MarshalIndent(outcome.FailedTests, "", "  ")
				fmt.Fprintf(os.Stderr, "failed tests:\n%s\n", b)
			}
			if outcome.Fatal != nil {
				fmt.Fprintf(os.Stderr, "fatal: %v\n", outcome.Fatal)
			}
			return nil
		},
	}
}
