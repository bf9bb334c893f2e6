package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/cybozu-go/bucket-sampler/dataset"
	"github.com/cybozu-go/bucket-sampler/pkg/constants"
	"github.com/spf13/cobra"
)

var sampleArgs struct {
	seed     int64
	download bool
	dest     string
}

var sampleCmd = &cobra.Command{
	Use:   constants.SampleSubcommand + " FRACTION [PREFIX]",
	Short: "sample a fraction of the datasets bucket",
	Long: `Select a reproducible fraction of the keys in the datasets bucket.

FRACTION: A number in [0, 1].  floor(FRACTION * N) keys are selected.
PREFIX:   Only keys starting with PREFIX are candidates.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fraction, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("%w: invalid fraction %s: %w", dataset.ErrInvalidArgument, args[0], err)
		}

		opts := dataset.FracOptions{
			Seed:     sampleArgs.seed,
			Download: sampleArgs.download,
			DestRoot: sampleArgs.dest,
		}
		if len(args) == 2 {
			opts.Prefix = args[1]
		}

		res, err := helper.GetFrac(cmd.Context(), fraction, opts)
		if res != nil {
			for _, k := range res.Keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
		}
		return reportPartial(cmd, err)
	},
}

// reportPartial prints the keys that failed to be fetched.
func reportPartial(cmd *cobra.Command, err error) error {
	var pfe *dataset.PartialFetchError
	if errors.As(err, &pfe) {
		for _, k := range pfe.FailedKeys() {
			fmt.Fprintf(cmd.ErrOrStderr(), "failed: %s\n", k)
		}
	}
	return err
}

func init() {
	fs := sampleCmd.Flags()
	fs.Int64Var(&sampleArgs.seed, "seed", constants.DefaultSeed, "The seed of the sampling")
	fs.BoolVar(&sampleArgs.download, "download", false, "Download the sampled objects")
	fs.StringVar(&sampleArgs.dest, "dest", ".", "The directory to download into")

	rootCmd.AddCommand(sampleCmd)
}
