package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func init() {
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Interactive note list that follows remote changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openClient(ctx)
			if err != nil {
				return err
			}
			defer c.Close(ctx)

			if _, err := requireUser(ctx, c); err != nil {
				return err
			}

			m := newWatchModel(ctx, c.Sync)
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(ctx))
			m.bind(p.Send)
			// 后台刷新失败显示在状态栏
			c.SetErrorHandler(func(err error) { go p.Send(errMsg{err}) })

			tasks := startClientTasks(ctx, c)
			defer tasks.Stop()

			_, err = p.Run()
			return err
		},
	}
	rootCmd.AddCommand(watchCmd)
}
