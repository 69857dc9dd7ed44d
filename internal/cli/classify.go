package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/okian/fsrfilter/internal/domain/veto"
)

// ClassifyOptions holds flags for the classify command.
type ClassifyOptions struct {
	*RootOptions
	Policy string
}

// ClassifyResult is the origin assigned to a photon with the given ancestry.
type ClassifyResult struct {
	Mother      int    `json:"mother"`
	Grandmother int    `json:"grandmother"`
	Origin      string `json:"origin"`
	Policy      string `json:"policy"`
}

func (r ClassifyResult) String() string {
	return fmt.Sprintf("mother=%d grandmother=%d origin=%s policy=%s", r.Mother, r.Grandmother, r.Origin, r.Policy)
}

// NewClassifyCommand creates the classify command.
func NewClassifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClassifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "classify <mother> [grandmother]",
		Short: "Classify a photon by its mother and grandmother particle codes",
		Long: `Prints fsr, isr or none for a photon with the given ancestry. Without a
grandmother, a charged-lepton mother counts as its own grandmother.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Policy, "policy", veto.PolicyRadiated.String(), "veto rules: v1|v2|v3 or direct-lepton|lepton-parentage|radiated")

	return cmd
}

func runClassify(cmd *cobra.Command, opts *ClassifyOptions, args []string) error {
	formatter := newFormatter(cmd, opts.RootOptions)

	policy, err := veto.ParsePolicy(opts.Policy)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeInvalidInput, "unknown policy", err)
	}

	mother, err := strconv.Atoi(args[0])
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeInvalidInput, fmt.Sprintf("invalid mother code %q", args[0]), err)
	}

	var grandmother int
	known := len(args) == 2
	if known {
		grandmother, err = strconv.Atoi(args[1])
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeInvalidInput, fmt.Sprintf("invalid grandmother code %q", args[1]), err)
		}
	}
	grandmother = veto.EffectiveGrandmother(mother, grandmother, known)

	return formatter.Success(ClassifyResult{
		Mother:      mother,
		Grandmother: grandmother,
		Origin:      policy.Origin(mother, grandmother).String(),
		Policy:      policy.String(),
	})
}
