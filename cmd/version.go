package cmd

import (
	"fmt"

	"github.com/dejay09121/Noteapp/internal/app"

	"github.com/spf13/cobra"
)

func init() {
	var remote bool

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print out version info and exit. // 打印版本信息并退出。",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "v%s ( Git:%s ) BuildTime:%s\n", app.Version, app.GitTag, app.BuildTime)
			if !remote {
				return nil
			}

			ctx := cmd.Context()
			c, err := openClient(ctx)
			if err != nil {
				return err
			}
			defer c.Close(ctx)
			if c.HTTP == nil {
				fmt.Fprintln(out, "server: embedded")
				return nil
			}

			v, err := c.HTTP.Version(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "server v%s ( Git:%s ) BuildTime:%s\n", v.Version, v.GitTag, v.BuildTime)
			switch {
			case !app.SameMajor(app.Version, v.Version):
				fmt.Fprintln(out, errorStyle.Render("client and server major versions differ"))
			case app.CompareVersion(app.Version, v.Version) < 0:
				fmt.Fprintln(out, mutedStyle.Render("a newer client is available"))
			}
			return nil
		},
	}
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&remote, "remote", false, "also query the server version")
}
