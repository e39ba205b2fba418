package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	uploadCmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image or .mp4 and print its public URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openClient(ctx)
			if err != nil {
				return err
			}
			defer c.Close(ctx)

			url, err := c.Media.Upload(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
	rootCmd.AddCommand(uploadCmd)
}
