package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"coopsched/internal/job"
	"coopsched/internal/sched"
	"coopsched/internal/trace"
)

func newRunCmd() *cobra.Command {
	var (
		duration    time.Duration
		tasks       int
		seed        uint64
		cpus        int
		onlyCPU     int
		traceFormat string
		tracePath   string
		console     bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a synthetic workload",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("cpus") {
				cfg.CPUs = cpus
			}
			if cmd.Flags().Changed("trace-format") {
				cfg.Trace.Format = traceFormat
			}
			if cmd.Flags().Changed("trace-path") {
				cfg.Trace.Path = tracePath
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, duration)
			defer cancel()

			return runWorkload(ctx, cmd.OutOrStdout(), job.Mix{Tasks: tasks, Seed: seed, OnlyCPU: onlyCPU}, console)
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", 2*time.Second, "How long to run")
	cmd.Flags().IntVar(&tasks, "tasks", 1000, "Number of tasks to spawn")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Workload seed")
	cmd.Flags().IntVar(&cpus, "cpus", 4, "Override the configured CPU count")
	cmd.Flags().IntVar(&onlyCPU, "only-cpu", -1, "Spawn every task on this CPU (-1 spreads them)")
	cmd.Flags().StringVar(&traceFormat, "trace-format", "none", "Trace sink: none, csv, jsonl, sqlite")
	cmd.Flags().StringVar(&tracePath, "trace-path", "trace.out", "Trace sink path")
	cmd.Flags().BoolVar(&console, "console", false, "Print every event to stdout")

	return cmd
}

func runWorkload(ctx context.Context, out io.Writer, mix job.Mix, console bool) error {
	runID := trace.NewRunID()
	log := logger.With("run_id", runID)

	if (cfg.Trace.Format != "none" || console) && cfg.EventBuffer == 0 {
		cfg.EventBuffer = 4096
	}
	sys := sched.NewSystem(cfg, sched.WithLogger(log))

	rec, err := trace.Open(cfg.Trace.Format, cfg.Trace.Path, runID, log)
	if err != nil {
		return err
	}
	var recs trace.Multi
	if rec != nil {
		recs = append(recs, rec)
	}
	if console {
		recs = append(recs, trace.NewConsole(out))
	}

	consumed := make(chan error, 1)
	if ch := sys.StatusChannel(); ch != nil {
		go func() {
			var r trace.Recorder
			if len(recs) > 0 {
				r = recs
			}
			n, err := trace.Consume(ch, r, log)
			log.Debug("trace drained", "records", n)
			consumed <- err
		}()
	} else {
		consumed <- nil
	}

	tally, err := mix.Spawn(sys)
	if err != nil {
		return err
	}
	log.Info("workload spawned", "tasks", mix.Tasks, "cpus", sys.NumCPU())

	start := time.Now()
	if err := sys.Run(ctx); err != nil {
		return err
	}
	traceErr := <-consumed
	if cerr := recs.Close(); cerr != nil && traceErr == nil {
		traceErr = cerr
	}

	printSummary(out, sys, tally, mix.Tasks, time.Since(start))
	if traceErr != nil {
		return fmt.Errorf("trace: %w", traceErr)
	}
	return nil
}

func printSummary(out io.Writer, sys *sched.System, tally *job.Tally, spawned int, elapsed time.Duration) {
	fmt.Fprintf(out, "finished %s of %s tasks in %s (%s ticks, %s events dropped)\n",
		humanize.Comma(tally.Done()), humanize.Comma(int64(spawned)),
		elapsed.Round(time.Millisecond), humanize.Comma(int64(sys.Now())),
		humanize.Comma(int64(sys.DroppedEvents())))

	// IPI counts are only known for the channel-backed platform
	cp, _ := sys.Platform().(*sched.ChannelPlatform)
	ipis := func(cpu int) string {
		if cp == nil {
			return "-"
		}
		return humanize.Comma(int64(cp.Signals(cpu)))
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "cpu\tpolls\tdone\tsteals\tstolen\tbudget\thalts\tipis\tmisses\tdup wakes\tlive\t")
	for _, st := range sys.Stats() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\t\n",
			st.CPU,
			humanize.Comma(int64(st.Polls)),
			humanize.Comma(int64(st.Completed)),
			humanize.Comma(int64(st.Steals)),
			humanize.Comma(int64(st.Stolen)),
			humanize.Comma(int64(st.BudgetBreaks)),
			humanize.Comma(int64(st.Halts)),
			ipis(st.CPU),
			humanize.Comma(int64(st.Misses)),
			humanize.Comma(int64(st.Duplicates)),
			st.Live,
		)
	}
	tw.Flush()
}
