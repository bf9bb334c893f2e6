package cmd

import (
	"fmt"

	"github.com/cybozu-go/bucket-sampler/pkg/constants"
	"github.com/spf13/cobra"
)

var imageArgs struct {
	greyscale bool
}

var imageCmd = &cobra.Command{
	Use:   constants.ImageSubcommand + " KEY",
	Short: "decode an image in the datasets bucket",
	Long: `Decode an image in the datasets bucket and print its format and bounds.

KEY: The object key of the image.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, format, err := helper.GetImage(cmd.Context(), args[0], imageArgs.greyscale)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%dx%d\n", args[0], format, img.Bounds().Dx(), img.Bounds().Dy())
		return nil
	},
}

func init() {
	imageCmd.Flags().BoolVar(&imageArgs.greyscale, "greyscale", false, "Convert the image to greyscale")
	rootCmd.AddCommand(imageCmd)
}
