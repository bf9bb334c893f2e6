package cmd

import (
	"fmt"

	"github.com/cybozu-go/bucket-sampler/pkg/constants"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   constants.ListSubcommand + " BUCKET [PREFIX]",
	Short: "list object keys in a bucket",
	Long: `List object keys in a bucket, one per line.

BUCKET: The bucket name.
PREFIX: Only keys starting with PREFIX are listed.  Defaults to all keys.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var prefix string
		if len(args) == 2 {
			prefix = args[1]
		}

		keys, err := helper.List(cmd.Context(), args[0], prefix)
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
