package cli

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/fsrfilter/internal/domain/veto"
	"github.com/okian/fsrfilter/internal/testevents"
)

// Default load test settings.
const (
	defaultNumEvents = 10000
	defaultVetoLimit = 50
	defaultTimeout   = 30 * time.Second
	defaultSettle    = 2 * time.Minute
)

// LoadtestOptions holds flags for the loadtest command.
type LoadtestOptions struct {
	*RootOptions
	URL        string
	Events     int
	Vetoes     int
	Workers    int
	Timeout    time.Duration
	Settle     time.Duration
	Policy     string
	Seed       uint64
	OutputFile string
}

type loadtestSummary testevents.Report

func (s loadtestSummary) String() string {
	st := s.Stats
	return fmt.Sprintf("submitted=%d accepted=%d duplicate=%d failed=%d checked=%d missing=%d mismatches=%d vetoes=%d duration=%s",
		st.EventsSubmitted, st.EventsAccepted, st.EventsDuplicate, st.EventsFailed,
		st.DecisionsChecked, st.DecisionsMissing, st.Mismatches, st.VetoesListed, st.Duration.Round(time.Millisecond))
}

// NewLoadtestCommand creates the loadtest command.
func NewLoadtestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadtestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Submit generated events to a running service and verify its verdicts",
		Long: `Generates events whose verdicts are known for the given policy, posts them
to /events, then checks every stored decision and the /vetoes ordering.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLoadtest(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.URL, "url", "http://localhost:9080", "base URL of the service")
	cmd.Flags().IntVar(&opts.Events, "events", defaultNumEvents, "number of events to generate and submit")
	cmd.Flags().IntVar(&opts.Vetoes, "vetoes", defaultVetoLimit, "number of vetoes to fetch and check (0 skips)")
	cmd.Flags().IntVar(&opts.Workers, "workers", runtime.NumCPU()*2, "number of concurrent submitters")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	cmd.Flags().DurationVar(&opts.Settle, "settle", defaultSettle, "how long to wait for verdicts to appear")
	cmd.Flags().StringVar(&opts.Policy, "policy", veto.PolicyRadiated.String(), "policy the service runs")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "generator seed (0 picks one)")
	cmd.Flags().StringVar(&opts.OutputFile, "output", "", "write generated events to this JSON file")

	return cmd
}

func runLoadtest(cmd *cobra.Command, opts *LoadtestOptions) error {
	formatter := newFormatter(cmd, opts.RootOptions)
	if err := setupLogging(cmd, opts.RootOptions); err != nil {
		return formatter.fail(ExitCommandError, ErrCodeInvalidInput, "logging setup failed", err)
	}

	policy, err := veto.ParsePolicy(opts.Policy)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeInvalidInput, "unknown policy", err)
	}
	if opts.Events < 1 {
		return formatter.fail(ExitCommandError, ErrCodeInvalidInput, "--events must be at least 1", nil)
	}

	report, err := testevents.Run(cmd.Context(), &testevents.Config{
		BaseURL:    opts.URL,
		NumEvents:  opts.Events,
		VetoLimit:  opts.Vetoes,
		Workers:    opts.Workers,
		Timeout:    opts.Timeout,
		Settle:     opts.Settle,
		Policy:     policy,
		Seed:       opts.Seed,
		OutputFile: opts.OutputFile,
		Verbose:    opts.Verbose,
	})
	switch {
	case err == nil:
		return formatter.Success(loadtestSummary(*report))
	case errors.Is(err, testevents.ErrVerification) && report != nil:
		const msg = "service verdicts did not match"
		if formatter.Format == "json" {
			_ = formatter.Error(ErrCodeVerification, msg, report)
			return WrapExitError(ExitFailure, msg, err)
		}
		_ = formatter.Success(loadtestSummary(*report))
		return formatter.fail(ExitFailure, ErrCodeVerification, msg, err)
	case report == nil:
		return formatter.fail(ExitCommandError, ErrCodeUnavailable, "load test could not run", err)
	default:
		return formatter.fail(ExitCommandError, ErrCodeUnavailable, "load test aborted", err)
	}
}
