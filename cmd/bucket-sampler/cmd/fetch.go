package cmd

import (
	"fmt"

	"github.com/cybozu-go/bucket-sampler/pkg/constants"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   constants.FetchSubcommand + " BUCKET DEST KEY...",
	Short: "download objects to a local directory",
	Long: `Download objects to DEST/<key>, creating directories as needed.

BUCKET: The bucket name.
DEST:   The local destination directory.
KEY:    The object keys to download.`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := helper.Fetch(cmd.Context(), args[0], args[2:], args[1])
		fmt.Fprintf(cmd.OutOrStdout(), "fetched %d of %d objects\n", n, len(args)-2)
		return reportPartial(cmd, err)
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
