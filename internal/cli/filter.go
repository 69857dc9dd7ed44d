package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	service "github.com/okian/fsrfilter/internal/app"
	"github.com/okian/fsrfilter/internal/domain/types"
	"github.com/okian/fsrfilter/internal/domain/veto"
	"github.com/okian/fsrfilter/pkg/logger"
)

// FilterOptions holds flags for the filter command.
type FilterOptions struct {
	*RootOptions
	GenTag     string
	Policy     string
	FailOnVeto bool
}

// FilterSummary counts the outcome of a filter run.
type FilterSummary struct {
	Events int `json:"events"`
	Kept   int `json:"kept"`
	Vetoed int `json:"vetoed"`
}

// FilterReport is the result of filtering one input file.
type FilterReport struct {
	Decisions []types.Decision `json:"decisions"`
	Summary   FilterSummary    `json:"summary"`
}

// String renders the report one event per line followed by the totals.
func (r FilterReport) String() string {
	var b strings.Builder
	for _, d := range r.Decisions {
		if d.Keep {
			fmt.Fprintf(&b, "event %s: keep\n", d.EventID)
			continue
		}
		fmt.Fprintf(&b, "event %s: veto (photon pt=%.3f dr=%.3f origin=%s)\n",
			d.EventID, d.Veto.Pt, d.Veto.DeltaR, d.Veto.Origin)
	}
	fmt.Fprintf(&b, "events=%d kept=%d vetoed=%d", r.Summary.Events, r.Summary.Kept, r.Summary.Vetoed)
	return b.String()
}

// NewFilterCommand creates the filter command.
func NewFilterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FilterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "filter <file>",
		Short: "Decide keep or veto for every event in a JSON or YAML file",
		Long: `Runs the radiated-photon veto over every event in the file and prints
one verdict per event. Use "-" to read JSON from stdin.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.GenTag, "gen-tag", types.DefaultGenTag, "generator particle collection to read")
	cmd.Flags().StringVar(&opts.Policy, "policy", veto.PolicyRadiated.String(), "veto rules: v1|v2|v3 or direct-lepton|lepton-parentage|radiated")
	cmd.Flags().BoolVar(&opts.FailOnVeto, "fail-on-veto", false, "exit with status 1 when any event is vetoed")

	return cmd
}

func runFilter(cmd *cobra.Command, opts *FilterOptions, path string) error {
	formatter := newFormatter(cmd, opts.RootOptions)
	if err := setupLogging(cmd, opts.RootOptions); err != nil {
		return formatter.fail(ExitCommandError, ErrCodeInvalidInput, "logging setup failed", err)
	}

	policy, err := veto.ParsePolicy(opts.Policy)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeInvalidInput, "unknown policy", err)
	}

	events, err := LoadEvents(path, cmd.InOrStdin())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("input %s not found", path), err)
		}
		return formatter.fail(ExitCommandError, ErrCodeInvalidInput, fmt.Sprintf("cannot read %s", path), err)
	}
	formatter.VerboseLog("loaded %d events from %s", len(events), path)

	svc := service.New(
		service.WithGenTag(opts.GenTag),
		service.WithPolicy(policy),
		service.WithLogger(logger.Named("cli")),
	)

	ctx := cmd.Context()
	report := FilterReport{Decisions: make([]types.Decision, 0, len(events))}
	for i := range events {
		d, err := svc.Filter(ctx, events[i])
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeInvalidEvent, fmt.Sprintf("event %d is invalid", i), err)
		}
		d.DecidedAt = ""
		report.Decisions = append(report.Decisions, d)
		if d.Keep {
			report.Summary.Kept++
		} else {
			report.Summary.Vetoed++
		}
	}
	report.Summary.Events = len(report.Decisions)

	if err := formatter.Success(report); err != nil {
		return err
	}
	if opts.FailOnVeto && report.Summary.Vetoed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d events vetoed", report.Summary.Vetoed, report.Summary.Events))
	}
	return nil
}
