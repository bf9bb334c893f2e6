package cmd

import (
	"github.com/cybozu-go/bucket-sampler/pkg/constants"
	"github.com/spf13/cobra"
)

var uploadArgs struct {
	bucket string
}

var uploadCmd = &cobra.Command{
	Use:   constants.UploadSubcommand + " FILE [KEY]",
	Short: "upload a local file",
	Long: `Upload a local file to the outputs bucket.

FILE: The local file.
KEY:  The object key.  Defaults to the base name of FILE.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var key string
		if len(args) == 2 {
			key = args[1]
		}
		return helper.Upload(cmd.Context(), args[0], key, uploadArgs.bucket)
	},
}

func init() {
	uploadCmd.Flags().StringVar(&uploadArgs.bucket, "bucket", "", "The destination bucket.  Defaults to the outputs bucket")
	rootCmd.AddCommand(uploadCmd)
}
